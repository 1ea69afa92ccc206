package debounce

import (
	"testing"

	"github.com/itohio/goscale/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rig drives a Button one clock unit per tick.
type rig struct {
	level  bool
	clock  *clock.Manual
	button *Button
}

func newRig(window int64) *rig {
	r := &rig{clock: clock.NewManual(0)}
	r.button = New("start", SignalFunc(func() bool { return r.level }), r.clock, window)
	return r
}

// hold keeps the raw level for n ticks, updating on each.
func (r *rig) hold(level bool, n int) {
	r.level = level
	for range n {
		r.button.Update()
		r.clock.Advance(1)
	}
}

func TestNew_DefaultWindow(t *testing.T) {
	b := New("x", SignalFunc(func() bool { return false }), clock.NewManual(0), 0)
	assert.Equal(t, DefaultWindow, b.Window())
	assert.Equal(t, "x", b.Name())
	assert.False(t, b.State())

	b = New("y", SignalFunc(func() bool { return false }), clock.NewManual(0), 25)
	assert.Equal(t, int64(25), b.Window())
}

func TestUpdate_ShortGlitchIgnored(t *testing.T) {
	r := newRig(60)
	r.hold(false, 100)
	r.hold(true, 30)
	r.hold(false, 200)

	assert.False(t, r.button.State())
	assert.False(t, r.button.HasStateChanged())
	assert.False(t, r.button.IsPressed())
}

func TestUpdate_SustainedPressCommitsOnce(t *testing.T) {
	r := newRig(60)
	r.hold(false, 100)
	r.hold(true, 62) // raw transition at t=100, last update at t=161

	assert.True(t, r.button.State())
	assert.True(t, r.button.IsPressed())
	assert.False(t, r.button.IsPressed())
	assert.False(t, r.button.HasStateChanged())

	// Holding longer produces no further edges.
	r.hold(true, 500)
	assert.False(t, r.button.HasStateChanged())
}

func TestUpdate_WindowIsStrict(t *testing.T) {
	r := newRig(60)
	r.hold(false, 10)
	r.hold(true, 61) // updates at t=10..70: elapsed never exceeds 60

	assert.False(t, r.button.State())

	r.hold(true, 1) // t=71
	assert.True(t, r.button.State())
}

func TestHasStateChanged_ReleaseEdge(t *testing.T) {
	r := newRig(60)
	r.hold(true, 70)
	require.True(t, r.button.HasStateChanged())

	r.hold(false, 70)
	assert.False(t, r.button.State())
	// A release is a change but not a press.
	assert.False(t, r.button.IsPressed())
	assert.True(t, r.button.HasStateChanged())
	assert.False(t, r.button.HasStateChanged())
}

func TestUpdate_BounceClearsPendingFlag(t *testing.T) {
	r := newRig(60)
	r.hold(true, 70)
	// Unread change is dropped once the signal starts bouncing again.
	r.hold(false, 1)
	assert.False(t, r.button.HasStateChanged())
	assert.True(t, r.button.State())
}

func TestOnChange(t *testing.T) {
	r := newRig(60)
	var changes []Change
	r.button.OnChange(func(c Change) { changes = append(changes, c) })

	r.hold(false, 5)
	r.hold(true, 30)
	r.hold(false, 100)
	assert.Empty(t, changes)

	r.hold(true, 100) // raw transition at t=135, commit at t=196
	r.hold(false, 100)

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Name: "start", Pressed: true, At: 196}, changes[0])
	assert.Equal(t, "start", changes[1].Name)
	assert.False(t, changes[1].Pressed)
}
