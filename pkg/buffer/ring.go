package buffer

import "iter"

// MinCapacity is the smallest capacity a Ring accepts. A rate needs two points.
const MinCapacity = 2

// Reading is a single (timestamp, weight) sample.
type Reading struct {
	Timestamp int64   // Caller time unit (ms on the host)
	Weight    float64 // Caller weight unit (g on the host)
}

// Ring is a fixed-capacity circular store of readings.
// Once full, every push overwrites the oldest slot.
//
// Slots are filled in order 0..N-1 after construction or Clear, so the filled
// slots are always [0, filled). This replaces a zero-timestamp marker and keeps
// a real timestamp of 0 valid.
type Ring struct {
	slots  []Reading
	index  int  // Next slot to write
	filled int  // Slots written since the last clear
	full   bool // Index wrapped at least once since the last clear
}

// New creates a Ring with the given capacity.
// Capacity below MinCapacity is a programming error and panics.
func New(capacity int) *Ring {
	if capacity < MinCapacity {
		panic("buffer: capacity must be at least 2")
	}
	return &Ring{
		slots: make([]Reading, capacity),
	}
}

// Push overwrites the slot at the write index and advances it.
func (r *Ring) Push(timestamp int64, weight float64) {
	r.slots[r.index] = Reading{Timestamp: timestamp, Weight: weight}
	r.index = (r.index + 1) % len(r.slots)
	if r.filled < len(r.slots) {
		r.filled++
	}
	if r.index == 0 {
		r.full = true
	}
}

// Latest returns the most recently written reading.
// ok is false if nothing was written since the last clear.
func (r *Ring) Latest() (Reading, bool) {
	if r.filled == 0 {
		return Reading{}, false
	}
	return r.slots[(r.index-1+len(r.slots))%len(r.slots)], true
}

// At returns the reading stored in physical slot i.
func (r *Ring) At(i int) Reading {
	return r.slots[i]
}

// All iterates over the filled slots in slot order.
// The sequence may be ranged over any number of times.
func (r *Ring) All() iter.Seq[Reading] {
	return func(yield func(Reading) bool) {
		for i := 0; i < r.filled; i++ {
			if !yield(r.slots[i]) {
				return
			}
		}
	}
}

// Clear zeroes all slots and resets the write index and full flag.
func (r *Ring) Clear() {
	clear(r.slots)
	r.index = 0
	r.filled = 0
	r.full = false
}

// IsFull reports whether capacity pushes happened since creation or the last clear.
func (r *Ring) IsFull() bool {
	return r.full
}

// Len returns the number of filled slots.
func (r *Ring) Len() int {
	return r.filled
}

// Cap returns the capacity.
func (r *Ring) Cap() int {
	return len(r.slots)
}
