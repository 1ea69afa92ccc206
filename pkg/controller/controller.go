// Package controller runs the dispensing control loop: one tick per sample.
package controller

import (
	"fmt"
	"sync"

	"github.com/itohio/goscale/pkg/clock"
	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/debounce"
	"github.com/itohio/goscale/pkg/predict"
	"github.com/itohio/goscale/pkg/sample"
)

// Update is what the control loop observed and decided on one tick.
type Update struct {
	Sample  sample.Sample
	State   predict.State
	Filled  int     // Readings in the regression window
	Rate    float64 // Fitted rate (g/ms); 0 if undefined
	Outcome predict.Outcome
}

// Controller ties samples, operator buttons and the predictor together.
//
// Step must be called from a single goroutine. The sample timestamps drive the
// button debounce clock, so replaying a recorded stream is deterministic.
type Controller struct {
	predictor *predict.Predictor
	start     *debounce.Button
	reset     *debounce.Button
	clock     *clock.Manual

	// Raw button levels of the sample being processed
	startLevel bool
	resetLevel bool

	callbacks []func(Update)
	cbMu      sync.RWMutex
}

// New creates a Controller from cfg. It fails if cfg does not validate.
func New(cfg *config.Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	c := &Controller{
		predictor: predict.New(cfg.Predictor.Capacity, cfg.Predictor.TargetWeight),
		clock:     clock.NewManual(0),
	}
	c.start = debounce.New(cfg.Buttons.StartName,
		debounce.SignalFunc(func() bool { return c.startLevel }), c.clock, cfg.Buttons.DebounceMillis)
	c.reset = debounce.New(cfg.Buttons.ResetName,
		debounce.SignalFunc(func() bool { return c.resetLevel }), c.clock, cfg.Buttons.DebounceMillis)

	return c, nil
}

// ProcessSamples runs Step for every sample until the input channel closes.
func (c *Controller) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		c.Step(s)
	}
}

// Step processes one sample: buttons first, then the reading, then a prediction.
func (c *Controller) Step(s sample.Sample) Update {
	c.clock.Set(s.Timestamp)
	c.startLevel = s.Start
	c.resetLevel = s.Reset

	c.reset.Update()
	c.start.Update()
	if c.reset.IsPressed() {
		c.predictor.Reset()
	}
	if c.start.IsPressed() {
		c.predictor.StartPredicting()
	}

	c.predictor.AddReading(s.Timestamp, s.Weight)

	u := Update{
		Sample:  s,
		State:   c.predictor.State(),
		Filled:  c.predictor.Filled(),
		Rate:    c.predictor.Rate(),
		Outcome: c.predictor.PredictTime(),
	}
	c.notifyCallbacks(u)

	return u
}

// Predictor returns the underlying predictor, e.g. to register event callbacks.
func (c *Controller) Predictor() *predict.Predictor {
	return c.predictor
}

// OnButton registers a callback for committed changes of either button.
func (c *Controller) OnButton(callback func(debounce.Change)) {
	c.start.OnChange(callback)
	c.reset.OnChange(callback)
}

// OnUpdate registers a callback invoked after every Step.
// Callbacks run on the loop goroutine and should return quickly.
func (c *Controller) OnUpdate(callback func(Update)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// notifyCallbacks invokes all registered callbacks without holding the lock.
func (c *Controller) notifyCallbacks(u Update) {
	c.cbMu.RLock()
	callbacks := make([]func(Update), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(u)
		}
	}
}
