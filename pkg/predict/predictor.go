// Package predict estimates the time left until a dispensed weight reaches its target.
//
// A Predictor keeps the most recent readings in a fixed-capacity ring, fits a
// least-squares rate through them and extrapolates from the latest weight.
// It is driven by a single control loop and does no locking.
package predict

import (
	"github.com/itohio/goscale/pkg/buffer"
	"github.com/itohio/goscale/pkg/regression"
)

// State is the readiness of the predictor.
type State int

const (
	NotReady State = iota
	Ready
)

// String returns the string representation of the state.
func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "not_ready"
}

// EventType identifies a state transition.
type EventType int

const (
	// EventReset is emitted by Reset.
	EventReset EventType = iota
	// EventStart is emitted when StartPredicting moves NotReady to Ready.
	EventStart
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	if e == EventStart {
		return "start"
	}
	return "reset"
}

// Event describes a predictor state transition.
type Event struct {
	Type  EventType
	State State // State after the transition
}

// Predictor implements the ready/not-ready estimator.
type Predictor struct {
	readings *buffer.Ring
	target   float64
	state    State

	callbacks []func(Event)
}

// New creates a Predictor holding capacity readings and projecting towards target.
// It starts Ready. Capacity below 2 is a programming error and panics.
func New(capacity int, target float64) *Predictor {
	return &Predictor{
		readings: buffer.New(capacity),
		target:   target,
		state:    Ready,
	}
}

// AddReading appends a reading. Valid in any state.
func (p *Predictor) AddReading(timestamp int64, weight float64) {
	p.readings.Push(timestamp, weight)
}

// PredictTime estimates the time until the target weight is reached.
//
// Checks run in a fixed order: a full buffer and Ready state first, then the
// latest weight against the target, then the sign of the fitted rate.
func (p *Predictor) PredictTime() Outcome {
	if !p.readings.IsFull() || p.state != Ready {
		return Outcome{Kind: InsufficientData}
	}

	latest, _ := p.readings.Latest()
	current := latest.Weight
	if current >= p.target {
		return Outcome{Kind: AlreadyAtTarget}
	}

	rate := regression.Slope(p.readings)
	if rate <= 0 {
		return Outcome{Kind: NonPositiveRate}
	}

	return Outcome{Kind: Estimate, Value: (p.target - current) / rate}
}

// Rate returns the current fitted rate over the filled readings.
func (p *Predictor) Rate() float64 {
	return regression.Slope(p.readings)
}

// Reset clears the readings and moves to NotReady.
func (p *Predictor) Reset() {
	p.readings.Clear()
	p.state = NotReady
	p.notify(Event{Type: EventReset, State: p.state})
}

// StartPredicting moves NotReady to Ready. It does nothing when already Ready.
func (p *Predictor) StartPredicting() {
	if p.state == Ready {
		return
	}
	p.state = Ready
	p.notify(Event{Type: EventStart, State: p.state})
}

// IsReady reports whether the predictor is Ready.
func (p *Predictor) IsReady() bool {
	return p.state == Ready
}

// State returns the current state.
func (p *Predictor) State() State {
	return p.state
}

// Target returns the target weight.
func (p *Predictor) Target() float64 {
	return p.target
}

// Capacity returns the number of readings the predictor fits over.
func (p *Predictor) Capacity() int {
	return p.readings.Cap()
}

// Filled returns the number of readings currently held.
func (p *Predictor) Filled() int {
	return p.readings.Len()
}

// OnEvent registers a callback for state transitions.
// Callbacks run synchronously on the caller of Reset or StartPredicting.
func (p *Predictor) OnEvent(callback func(Event)) {
	p.callbacks = append(p.callbacks, callback)
}

func (p *Predictor) notify(e Event) {
	for _, cb := range p.callbacks {
		if cb != nil {
			cb(e)
		}
	}
}
