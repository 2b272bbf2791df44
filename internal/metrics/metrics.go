package metrics

import "sync/atomic"

// Counter is a lock-free monotonically increasing counter.
type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Order workflow counters, exposed on the debug endpoint.
var (
	OrdersCreated     Counter
	OrdersRejected    Counter
	StatusTransitions Counter
	StockConflicts    Counter
	NumberRetries     Counter
)

// Snapshot returns the current counter values keyed by name.
func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"orders_created":     OrdersCreated.Load(),
		"orders_rejected":    OrdersRejected.Load(),
		"status_transitions": StatusTransitions.Load(),
		"stock_conflicts":    StockConflicts.Load(),
		"number_retries":     NumberRetries.Load(),
	}
}
