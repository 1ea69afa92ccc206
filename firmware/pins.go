//go:build tinygo

package main

import "machine"

const (
	// Output configuration
	OUTPUT_INTERVAL_MS = 100 // Line output interval in milliseconds

	// Button pins (active low, internal pull-up)
	PIN_START_BUTTON = machine.D1
	PIN_RESET_BUTTON = machine.D2

	// Scale serial configuration
	// The scale streams one weight per line in grams, e.g. "  42.75 g\r\n".
	SCALE_BAUD_RATE = 9600

	// Longest weight line accepted from the scale
	SCALE_LINE_MAX = 24
)
