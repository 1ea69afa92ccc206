// Package debounce filters bouncing digital inputs into clean state changes.
package debounce

import "github.com/itohio/goscale/pkg/clock"

// DefaultWindow is the debounce window used when none is given, in clock units.
const DefaultWindow int64 = 60

// Signal is a raw boolean input such as an active-low pin already inverted.
type Signal interface {
	Level() bool
}

// SignalFunc adapts a function to the Signal interface.
type SignalFunc func() bool

// Level calls f.
func (f SignalFunc) Level() bool {
	return f()
}

// Change describes a committed state change.
type Change struct {
	Name    string
	Pressed bool  // Committed level after the change
	At      int64 // Clock time of the commit
}

// Button debounces a Signal. Update must be called on every loop tick.
type Button struct {
	name   string
	signal Signal
	clock  clock.Clock
	window int64

	lastLevel  bool  // Raw level seen on the previous Update
	state      bool  // Committed level
	lastChange int64 // Clock time of the last raw transition
	changed    bool  // One-shot flag

	callbacks []func(Change)
}

// New creates a Button reading sig, timed by clk.
// A window of zero or less uses DefaultWindow.
func New(name string, sig Signal, clk clock.Clock, window int64) *Button {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Button{
		name:   name,
		signal: sig,
		clock:  clk,
		window: window,
	}
}

// Update samples the signal and commits a new state once it has been stable
// for longer than the window.
func (b *Button) Update() {
	level := b.signal.Level()
	now := b.clock.Millis()
	if level != b.lastLevel {
		b.lastChange = now
	}

	if now-b.lastChange > b.window {
		if level != b.state {
			b.state = level
			b.changed = true
			b.notify(Change{Name: b.name, Pressed: level, At: now})
		}
	} else {
		b.changed = false
	}

	b.lastLevel = level
}

// HasStateChanged reports a committed change once, then clears the flag.
func (b *Button) HasStateChanged() bool {
	if b.changed {
		b.changed = false
		return true
	}
	return false
}

// IsPressed reports a press edge once. It consumes the change flag only
// while the committed state is pressed.
func (b *Button) IsPressed() bool {
	return b.state && b.HasStateChanged()
}

// State returns the committed level.
func (b *Button) State() bool {
	return b.state
}

// Name returns the button label.
func (b *Button) Name() string {
	return b.name
}

// Window returns the debounce window.
func (b *Button) Window() int64 {
	return b.window
}

// OnChange registers a callback for committed state changes.
func (b *Button) OnChange(callback func(Change)) {
	b.callbacks = append(b.callbacks, callback)
}

func (b *Button) notify(c Change) {
	for _, cb := range b.callbacks {
		if cb != nil {
			cb(c)
		}
	}
}
