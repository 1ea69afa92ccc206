package sample

import (
	"time"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/scale"
	"github.com/sirupsen/logrus"
)

// Sample is a calibrated reading with the raw button levels that came with it.
type Sample struct {
	Timestamp int64   // Monotonic milliseconds
	Weight    float64 // Grams
	Start     bool    // Raw start button level
	Reset     bool    // Raw reset button level
}

// Converter is a function type that converts a RawReading channel to a Sample channel.
type Converter func(in <-chan scale.RawReading) <-chan Sample

// NewConverter creates a converter function that calibrates RawReadings.
// The output channel is closed after the input channel closes.
func NewConverter(cfg *config.ScaleConfig, bufSize int, log logrus.FieldLogger) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return func(in <-chan scale.RawReading) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				select {
				case out <- convertReading(raw, cfg):
				case <-time.After(time.Second):
					log.Warn("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// convertReading applies the scale calibration to a RawReading.
func convertReading(raw scale.RawReading, cfg *config.ScaleConfig) Sample {
	return Sample{
		Timestamp: raw.Millis,
		Weight:    calibrate(raw.Weight, cfg.Offset, cfg.Factor),
		Start:     raw.Start,
		Reset:     raw.Reset,
	}
}

// calibrate converts a reported weight to grams: (raw - offset) * factor.
func calibrate(raw, offset, factor float64) float64 {
	return (raw - offset) * factor
}
