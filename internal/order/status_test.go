package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		// --- Success Cases ---
		{"Pending -> Processing", StatusPending, StatusProcessing, true},
		{"Pending -> Cancelled", StatusPending, StatusCancelled, true},
		{"Processing -> Shipped", StatusProcessing, StatusShipped, true},
		{"Processing -> Cancelled", StatusProcessing, StatusCancelled, true},
		{"Shipped -> Delivered", StatusShipped, StatusDelivered, true},
		{"Delivered -> Refunded", StatusDelivered, StatusRefunded, true},

		// --- Invalid Transitions (Jumps) ---
		{"Pending -> Shipped", StatusPending, StatusShipped, false},
		{"Pending -> Delivered", StatusPending, StatusDelivered, false},
		{"Pending -> Refunded", StatusPending, StatusRefunded, false},
		{"Processing -> Delivered", StatusProcessing, StatusDelivered, false},
		{"Processing -> Refunded", StatusProcessing, StatusRefunded, false},

		// --- Invalid Transitions (Backward) ---
		{"Processing -> Pending", StatusProcessing, StatusPending, false},
		{"Shipped -> Processing", StatusShipped, StatusProcessing, false},
		{"Delivered -> Shipped", StatusDelivered, StatusShipped, false},

		// --- No cancellation after shipment ---
		{"Shipped -> Cancelled", StatusShipped, StatusCancelled, false},
		{"Delivered -> Cancelled", StatusDelivered, StatusCancelled, false},

		// --- Terminal Statuses ---
		{"Cancelled -> Pending", StatusCancelled, StatusPending, false},
		{"Cancelled -> Processing", StatusCancelled, StatusProcessing, false},
		{"Refunded -> Delivered", StatusRefunded, StatusDelivered, false},
		{"Refunded -> Pending", StatusRefunded, StatusPending, false},

		// --- Self Transitions ---
		{"Pending -> Pending", StatusPending, StatusPending, false},
		{"Shipped -> Shipped", StatusShipped, StatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, raw := range []string{"pending", "processing", "shipped", "delivered", "cancelled", "refunded"} {
			st, err := ParseStatus(raw)
			assert.NoError(t, err)
			assert.Equal(t, Status(raw), st)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseStatus("archived")
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		_, err := ParseStatus("Pending")
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})
}
