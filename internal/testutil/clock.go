package testutil

import "time"

// FixedClock returns the same instant on every call. Golden tests pin
// exportedAtUtc with it so canonical documents are byte-identical across
// runs.
type FixedClock struct {
	Instant time.Time
}

// NewFixedClock creates a clock pinned to the given instant.
func NewFixedClock(instant time.Time) FixedClock {
	return FixedClock{Instant: instant}
}

// Now returns the pinned instant in UTC.
func (c FixedClock) Now() time.Time {
	return c.Instant.UTC()
}
