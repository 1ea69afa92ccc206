// Package metrics exports control loop state as Prometheus metrics.
package metrics

import (
	"github.com/itohio/goscale/pkg/controller"
	"github.com/itohio/goscale/pkg/debounce"
	"github.com/itohio/goscale/pkg/predict"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goscale"

// Recorder holds the collectors fed by a controller.
type Recorder struct {
	weight      prometheus.Gauge
	rate        prometheus.Gauge
	remaining   prometheus.Gauge
	ready       prometheus.Gauge
	filled      prometheus.Gauge
	outcomes    *prometheus.CounterVec
	presses     *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		weight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weight_grams",
			Help:      "Latest calibrated weight.",
		}),
		rate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_grams_per_ms",
			Help:      "Fitted weight change rate over the regression window.",
		}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remaining_ms",
			Help:      "Predicted time to target; -1 when no prediction is possible.",
		}),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "predictor_ready",
			Help:      "1 when the predictor is ready, 0 otherwise.",
		}),
		filled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_filled",
			Help:      "Readings currently in the regression window.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions by outcome.",
		}, []string{"outcome"}),
		presses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_presses_total",
			Help:      "Debounced button presses.",
		}, []string{"button"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictor_transitions_total",
			Help:      "Predictor state transitions by event.",
		}, []string{"event"}),
	}

	for _, c := range []prometheus.Collector{
		r.weight, r.rate, r.remaining, r.ready, r.filled,
		r.outcomes, r.presses, r.transitions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Attach registers the recorder with every event source of c.
func (r *Recorder) Attach(c *controller.Controller) {
	c.Predictor().OnEvent(r.ObserveEvent)
	c.OnButton(r.ObserveButton)
	c.OnUpdate(r.ObserveUpdate)
}

// ObserveUpdate records one control loop tick.
func (r *Recorder) ObserveUpdate(u controller.Update) {
	r.weight.Set(u.Sample.Weight)
	r.rate.Set(u.Rate)
	r.remaining.Set(u.Outcome.Sentinel())
	r.filled.Set(float64(u.Filled))
	if u.State == predict.Ready {
		r.ready.Set(1)
	} else {
		r.ready.Set(0)
	}
	r.outcomes.WithLabelValues(u.Outcome.Kind.String()).Inc()
}

// ObserveButton counts presses.
func (r *Recorder) ObserveButton(c debounce.Change) {
	if c.Pressed {
		r.presses.WithLabelValues(c.Name).Inc()
	}
}

// ObserveEvent counts predictor transitions.
func (r *Recorder) ObserveEvent(e predict.Event) {
	r.transitions.WithLabelValues(e.Type.String()).Inc()
}
