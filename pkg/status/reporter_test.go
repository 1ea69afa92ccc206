package status

import (
	"testing"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/controller"
	"github.com/itohio/goscale/pkg/debounce"
	"github.com/itohio/goscale/pkg/predict"
	"github.com/itohio/goscale/pkg/sample"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(hook *test.Hook, level logrus.Level) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestHandleEvent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewReporter(logger)

	r.HandleEvent(predict.Event{Type: predict.EventReset, State: predict.NotReady})
	r.HandleEvent(predict.Event{Type: predict.EventStart, State: predict.Ready})

	assert.Equal(t, []string{"Not ready to predict anymore", "Ready to predict"}, messages(hook, logrus.InfoLevel))
}

func TestHandleButton(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := NewReporter(logger)

	r.HandleButton(debounce.Change{Name: "start", Pressed: true, At: 42})
	r.HandleButton(debounce.Change{Name: "start", Pressed: false, At: 99})

	require.Len(t, hook.AllEntries(), 2)
	first := hook.AllEntries()[0]
	assert.Equal(t, logrus.InfoLevel, first.Level)
	assert.Equal(t, "Button pressed", first.Message)
	assert.Equal(t, "start", first.Data["button"])
	assert.Equal(t, int64(42), first.Data["at_ms"])
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestHandleUpdate_LogsOnKindChange(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := NewReporter(logger)

	kinds := []predict.Kind{
		predict.InsufficientData,
		predict.InsufficientData,
		predict.Estimate,
		predict.Estimate,
		predict.NonPositiveRate,
		predict.AlreadyAtTarget,
	}
	for i, k := range kinds {
		r.HandleUpdate(controller.Update{
			Sample:  sample.Sample{Timestamp: int64(i)},
			Outcome: predict.Outcome{Kind: k, Value: 10},
		})
	}

	assert.Equal(t, []string{
		"Collecting readings",
		"Predicting time to target",
		"Target weight reached",
	}, messages(hook, logrus.InfoLevel))
	assert.Equal(t, []string{"Weight is not rising, cannot predict"}, messages(hook, logrus.WarnLevel))

	for _, e := range hook.AllEntries() {
		if e.Message == "Predicting time to target" {
			assert.Equal(t, 10.0, e.Data["remaining_ms"])
		}
	}
}

func TestAttach(t *testing.T) {
	logger, hook := test.NewNullLogger()
	cfg := config.Default()
	cfg.Predictor.Capacity = 2
	c, err := controller.New(cfg)
	require.NoError(t, err)

	NewReporter(logger).Attach(c)

	c.Step(sample.Sample{Timestamp: 0, Weight: 1, Reset: true})
	c.Step(sample.Sample{Timestamp: 100, Weight: 1, Reset: true})

	info := messages(hook, logrus.InfoLevel)
	assert.Contains(t, info, "Button pressed")
	assert.Contains(t, info, "Not ready to predict anymore")
	assert.Contains(t, info, "Collecting readings")
}
