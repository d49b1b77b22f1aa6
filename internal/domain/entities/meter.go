package entities

import "go.uber.org/atomic"

// Meter is a non-negative cost accumulator safe for concurrent use.
type Meter struct {
	v atomic.Float64
}

// Add accumulates delta. Non-positive deltas are ignored.
func (m *Meter) Add(delta float64) {
	if m == nil || delta <= 0 {
		return
	}
	m.v.Add(delta)
}

// Value returns the accumulated cost.
func (m *Meter) Value() float64 {
	if m == nil {
		return 0
	}
	return m.v.Load()
}
