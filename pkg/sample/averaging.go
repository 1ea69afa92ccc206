package sample

// NewAveragingConverterForSamples creates a converter that replaces each
// sample's weight with the mean of the last windowSize weights.
// Timestamp and button levels are those of the newest sample, so the output
// has the same cadence as the input.
func NewAveragingConverterForSamples(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			window := newMovingAverage(windowSize)
			for s := range in {
				s.Weight = window.add(s.Weight)
				out <- s
			}
		}()

		return out
	}
}

// movingAverage keeps a running sum over a fixed ring of values.
type movingAverage struct {
	values []float64
	next   int
	count  int
	sum    float64
}

func newMovingAverage(size int) *movingAverage {
	return &movingAverage{values: make([]float64, size)}
}

// add inserts v, evicting the oldest value once full, and returns the mean.
func (m *movingAverage) add(v float64) float64 {
	if m.count == len(m.values) {
		m.sum -= m.values[m.next]
	} else {
		m.count++
	}
	m.values[m.next] = v
	m.sum += v
	m.next = (m.next + 1) % len(m.values)

	return m.sum / float64(m.count)
}
