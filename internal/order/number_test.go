package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		n := GenerateOrderNumber()

		assert.Len(t, n, 11)
		assert.True(t, strings.HasPrefix(n, "ORD"))
		for _, r := range n[3:] {
			assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", string(r))
		}
		seen[n] = true
	}

	// 1000 draws from a 36^8 space should never collide.
	assert.Len(t, seen, 1000)
}
