package buffer

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New(4)

	assert.Equal(t, 4, r.Cap())
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.IsFull())

	_, ok := r.Latest()
	assert.False(t, ok)
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0, 1} {
		assert.Panics(t, func() { New(capacity) }, "capacity %d", capacity)
	}
	assert.NotPanics(t, func() { New(MinCapacity) })
}

func TestPush_FullAfterCapacity(t *testing.T) {
	for _, capacity := range []int{2, 3, 5, 16} {
		r := New(capacity)
		for i := 0; i < capacity-1; i++ {
			r.Push(int64(i+1), float64(i))
			assert.False(t, r.IsFull(), "capacity %d after %d pushes", capacity, i+1)
		}
		r.Push(int64(capacity), float64(capacity))
		assert.True(t, r.IsFull(), "capacity %d", capacity)
		assert.Equal(t, capacity, r.Len())
	}
}

func TestPush_OverwritesOldest(t *testing.T) {
	const capacity = 4
	r := New(capacity)
	for i := range capacity {
		r.Push(int64(i+1)*10, float64(i))
	}
	before := make([]Reading, capacity)
	for i := range capacity {
		before[i] = r.At(i)
	}

	r.Push(50, 99)

	assert.Equal(t, Reading{Timestamp: 50, Weight: 99}, r.At(0))
	assert.NotEqual(t, before[0], r.At(0))
	for i := 1; i < capacity; i++ {
		assert.Equal(t, before[i], r.At(i), "slot %d", i)
	}
	assert.True(t, r.IsFull())
	assert.Equal(t, capacity, r.Len())
}

func TestLatest(t *testing.T) {
	r := New(3)

	r.Push(1, 1.5)
	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, Reading{Timestamp: 1, Weight: 1.5}, latest)

	r.Push(2, 2.5)
	r.Push(3, 3.5) // index wraps to 0
	latest, ok = r.Latest()
	require.True(t, ok)
	assert.Equal(t, Reading{Timestamp: 3, Weight: 3.5}, latest)

	r.Push(4, 4.5)
	latest, ok = r.Latest()
	require.True(t, ok)
	assert.Equal(t, Reading{Timestamp: 4, Weight: 4.5}, latest)
}

func TestAll_OnlyFilledSlots(t *testing.T) {
	r := New(5)
	r.Push(10, 1)
	r.Push(20, 2)

	got := slices.Collect(r.All())
	assert.Equal(t, []Reading{{10, 1}, {20, 2}}, got)

	// Restartable
	again := slices.Collect(r.All())
	assert.Equal(t, got, again)
}

func TestAll_ZeroTimestampIsFilled(t *testing.T) {
	r := New(3)
	r.Push(0, 5)
	r.Push(0, 6)

	got := slices.Collect(r.All())
	assert.Len(t, got, 2)
	assert.Equal(t, 2, r.Len())
}

func TestAll_EarlyStop(t *testing.T) {
	r := New(4)
	for i := range 4 {
		r.Push(int64(i), float64(i))
	}

	count := 0
	for range r.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestClear(t *testing.T) {
	r := New(3)
	for i := range 4 {
		r.Push(int64(i+1), float64(i))
	}
	require.True(t, r.IsFull())

	r.Clear()

	assert.False(t, r.IsFull())
	assert.Equal(t, 0, r.Len())
	_, ok := r.Latest()
	assert.False(t, ok)
	for i := range r.Cap() {
		assert.Equal(t, Reading{}, r.At(i))
	}
	assert.Empty(t, slices.Collect(r.All()))

	// Index restarts at slot 0
	r.Push(7, 7)
	assert.Equal(t, Reading{Timestamp: 7, Weight: 7}, r.At(0))
}
