// Package clock provides monotonic millisecond time sources.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond time source.
type Clock interface {
	Millis() int64
}

// Func adapts a function to the Clock interface.
type Func func() int64

// Millis calls f.
func (f Func) Millis() int64 {
	return f()
}

// system counts milliseconds since it was created using the monotonic clock.
type system struct {
	start time.Time
}

// System returns a Clock counting milliseconds since the call.
func System() Clock {
	return &system{start: time.Now()}
}

func (s *system) Millis() int64 {
	return time.Since(s.start).Milliseconds()
}

// Manual is a Clock that only moves when told to.
// It is safe for concurrent use.
type Manual struct {
	now atomic.Int64
}

var _ Clock = (*Manual)(nil)

// NewManual creates a Manual clock starting at start.
func NewManual(start int64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// Millis returns the current time.
func (m *Manual) Millis() int64 {
	return m.now.Load()
}

// Set moves the clock to t.
func (m *Manual) Set(t int64) {
	m.now.Store(t)
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d int64) int64 {
	return m.now.Add(d)
}
