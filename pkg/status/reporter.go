// Package status renders controller activity as log lines for the operator.
package status

import (
	"github.com/itohio/goscale/pkg/controller"
	"github.com/itohio/goscale/pkg/debounce"
	"github.com/itohio/goscale/pkg/predict"
	"github.com/sirupsen/logrus"
)

// Reporter logs predictor transitions, button edges and changes of the
// prediction outcome. Every update is also logged at debug level.
type Reporter struct {
	log      logrus.FieldLogger
	lastKind predict.Kind
	seen     bool
}

// NewReporter creates a Reporter writing to log.
func NewReporter(log logrus.FieldLogger) *Reporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reporter{log: log}
}

// Attach registers the reporter with every event source of c.
func (r *Reporter) Attach(c *controller.Controller) {
	c.Predictor().OnEvent(r.HandleEvent)
	c.OnButton(r.HandleButton)
	c.OnUpdate(r.HandleUpdate)
}

// HandleEvent logs a predictor state transition.
func (r *Reporter) HandleEvent(e predict.Event) {
	switch e.Type {
	case predict.EventReset:
		r.log.WithField("state", e.State).Info("Not ready to predict anymore")
	case predict.EventStart:
		r.log.WithField("state", e.State).Info("Ready to predict")
	}
}

// HandleButton logs a button press. Releases are logged at debug level.
func (r *Reporter) HandleButton(c debounce.Change) {
	entry := r.log.WithFields(logrus.Fields{
		"button": c.Name,
		"at_ms":  c.At,
	})
	if c.Pressed {
		entry.Info("Button pressed")
		return
	}
	entry.Debug("Button released")
}

// HandleUpdate logs a tick, and the outcome whenever its kind changes.
func (r *Reporter) HandleUpdate(u controller.Update) {
	fields := logrus.Fields{
		"t_ms":    u.Sample.Timestamp,
		"weight":  u.Sample.Weight,
		"state":   u.State,
		"filled":  u.Filled,
		"rate":    u.Rate,
		"outcome": u.Outcome.Kind,
	}
	if remaining, ok := u.Outcome.Remaining(); ok {
		fields["remaining_ms"] = remaining
	}
	entry := r.log.WithFields(fields)

	entry.Debug("Tick")

	if r.seen && u.Outcome.Kind == r.lastKind {
		return
	}
	r.seen = true
	r.lastKind = u.Outcome.Kind

	switch u.Outcome.Kind {
	case predict.InsufficientData:
		entry.Info("Collecting readings")
	case predict.AlreadyAtTarget:
		entry.Info("Target weight reached")
	case predict.NonPositiveRate:
		entry.Warn("Weight is not rising, cannot predict")
	case predict.Estimate:
		entry.Info("Predicting time to target")
	}
}
