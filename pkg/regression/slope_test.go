package regression

import (
	"math"
	"math/rand"
	"testing"

	"github.com/itohio/goscale/pkg/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func fill(capacity int, readings ...buffer.Reading) *buffer.Ring {
	r := buffer.New(capacity)
	for _, rd := range readings {
		r.Push(rd.Timestamp, rd.Weight)
	}
	return r
}

func TestSlope_Scenario(t *testing.T) {
	r := fill(5,
		buffer.Reading{Timestamp: 0, Weight: 10},
		buffer.Reading{Timestamp: 1000, Weight: 30},
		buffer.Reading{Timestamp: 2000, Weight: 50},
		buffer.Reading{Timestamp: 3000, Weight: 70},
		buffer.Reading{Timestamp: 4000, Weight: 90},
	)

	assert.InDelta(t, 0.02, Slope(r), 1e-12)

	line := Fit(r)
	require.True(t, line.OK)
	assert.Equal(t, 5, line.N)
	assert.Equal(t, int64(0), line.Origin)
	assert.InDelta(t, 10.0, line.Intercept, 1e-9)
	assert.InDelta(t, 90.0, line.At(4000), 1e-9)
}

func TestSlope_Degenerate(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		readings []buffer.Reading
	}{
		{
			name:     "empty",
			capacity: 3,
		},
		{
			name:     "single reading",
			capacity: 3,
			readings: []buffer.Reading{{Timestamp: 10, Weight: 5}},
		},
		{
			name:     "identical timestamps",
			capacity: 3,
			readings: []buffer.Reading{
				{Timestamp: 10, Weight: 5},
				{Timestamp: 10, Weight: 6},
				{Timestamp: 10, Weight: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fill(tt.capacity, tt.readings...)
			line := Fit(r)

			assert.False(t, line.OK)
			assert.Equal(t, 0.0, line.Slope)
			assert.False(t, math.IsNaN(Slope(r)))
			assert.False(t, math.IsInf(Slope(r), 0))
		})
	}
}

func TestSlope_FlatWeights(t *testing.T) {
	r := fill(4,
		buffer.Reading{Timestamp: 100, Weight: 42},
		buffer.Reading{Timestamp: 200, Weight: 42},
		buffer.Reading{Timestamp: 300, Weight: 42},
		buffer.Reading{Timestamp: 400, Weight: 42},
	)

	line := Fit(r)
	assert.True(t, line.OK)
	assert.Equal(t, 0.0, line.Slope)
}

func TestSlope_Decreasing(t *testing.T) {
	r := fill(3,
		buffer.Reading{Timestamp: 1, Weight: 30},
		buffer.Reading{Timestamp: 2, Weight: 20},
		buffer.Reading{Timestamp: 3, Weight: 10},
	)

	assert.InDelta(t, -10.0, Slope(r), 1e-9)
}

func TestSlope_PartiallyFilled(t *testing.T) {
	// Only the two filled slots take part in the fit.
	r := fill(10,
		buffer.Reading{Timestamp: 0, Weight: 0},
		buffer.Reading{Timestamp: 10, Weight: 5},
	)

	assert.InDelta(t, 0.5, Slope(r), 1e-12)
}

func TestSlope_AfterWrap(t *testing.T) {
	// Slot 0 holds the newest reading after a wrap; the origin shift must not
	// change the slope.
	r := buffer.New(4)
	for i := range 6 {
		r.Push(int64(1000+i*250), 3*float64(i)+1)
	}

	assert.InDelta(t, 3.0/250.0, Slope(r), 1e-12)
}

func TestSlope_MatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := range 20 {
		capacity := 2 + rng.Intn(30)
		r := buffer.New(capacity)
		pushes := capacity + rng.Intn(2*capacity)

		ts := int64(rng.Intn(1_000_000))
		for range pushes {
			ts += 1 + int64(rng.Intn(500))
			r.Push(ts, rng.Float64()*100+0.05*float64(ts))
		}

		xs := make([]float64, 0, r.Len())
		ys := make([]float64, 0, r.Len())
		for rd := range r.All() {
			xs = append(xs, float64(rd.Timestamp))
			ys = append(ys, rd.Weight)
		}
		_, beta := stat.LinearRegression(xs, ys, nil, false)

		assert.InDelta(t, beta, Slope(r), 1e-9*math.Max(1, math.Abs(beta)), "trial %d", trial)
	}
}
