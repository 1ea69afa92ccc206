// Package regression fits a least-squares line through buffered readings.
//
// Timestamps are shifted by the timestamp stored in slot 0 before summing,
// which keeps the squared terms small when the clock has been running for a
// long time. The shift does not change the slope.
package regression

import (
	"iter"

	"github.com/itohio/goscale/pkg/buffer"
)

// Source is the read side of a reading buffer.
type Source interface {
	Len() int                      // Number of filled readings
	At(i int) buffer.Reading       // Reading in physical slot i
	All() iter.Seq[buffer.Reading] // Filled readings, any order
}

var _ Source = (*buffer.Ring)(nil)

// Line is an ordinary least-squares fit y = Intercept + Slope*(x - Origin).
type Line struct {
	Slope     float64 // Weight change per time unit
	Intercept float64 // Weight at Origin
	Origin    int64   // Timestamp the x axis is shifted by
	N         int     // Number of readings used
	OK        bool    // False if fewer than two readings or all timestamps equal
}

// At evaluates the line at timestamp x.
func (l Line) At(x int64) float64 {
	return l.Intercept + l.Slope*float64(x-l.Origin)
}

// Fit computes the least-squares line through the filled readings of src.
// A degenerate fit has zero slope and OK == false.
func Fit(src Source) Line {
	n := src.Len()
	if n < 2 {
		return Line{N: n}
	}

	x0 := src.At(0).Timestamp
	var sumX, sumY, sumXY, sumX2 float64
	for r := range src.All() {
		x := float64(r.Timestamp - x0)
		y := r.Weight
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	fn := float64(n)
	meanX := sumX / fn
	meanY := sumY / fn

	denom := sumX2 - fn*meanX*meanX
	if denom == 0 {
		// All timestamps identical: no time axis to fit against.
		return Line{Intercept: meanY, Origin: x0, N: n}
	}

	slope := (sumXY - fn*meanX*meanY) / denom
	return Line{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		Origin:    x0,
		N:         n,
		OK:        true,
	}
}

// Slope returns the rate of weight change per time unit over src.
// It is 0 when the rate is undefined.
func Slope(src Source) float64 {
	return Fit(src).Slope
}
