// Package clock provides the time source injected into the ledger and
// the billing scheduler. Business logic never calls time.Now directly;
// tests substitute a fixed clock, production wires either the system
// clock or one adjusted by a cached network-time offset.
package clock

import "time"

// Clock yields the current time.
type Clock interface {
	Now() time.Time
}

// System is the local wall clock.
type System struct{}

// Now returns the local time in UTC.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a clock frozen at a single instant, for tests.
type Fixed struct {
	T time.Time
}

// Now returns the frozen instant.
func (f Fixed) Now() time.Time { return f.T }
