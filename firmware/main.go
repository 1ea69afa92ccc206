//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"
	"time"
)

var (
	scaleUART = machine.UART0

	// Latest weight parsed from the scale, in grams
	weight     float64
	tareOffset float64
	haveWeight bool

	// Timing
	startTime  time.Time
	lastOutput time.Time

	// Line buffers
	scaleBuffer [SCALE_LINE_MAX]byte
	scalePos    int
)

func main() {
	// Buttons short to ground when pressed
	PIN_START_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	PIN_RESET_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	scaleUART.Configure(machine.UARTConfig{
		BaudRate: SCALE_BAUD_RATE,
	})

	startTime = time.Now()
	lastOutput = startTime

	for {
		now := time.Now()

		processScale()
		processHost()

		if haveWeight && now.Sub(lastOutput) >= time.Duration(OUTPUT_INTERVAL_MS)*time.Millisecond {
			outputLine(now)
			lastOutput = now
		}

		time.Sleep(100 * time.Microsecond)
	}
}

// outputLine writes "millis,weight,SR\n" to the host.
// S and R are the raw start and reset levels; debouncing happens on the host.
func outputLine(now time.Time) {
	print(now.Sub(startTime).Milliseconds())
	print(",")
	print(strconv.FormatFloat(weight-tareOffset, 'f', 2, 64))
	print(",")
	printLevel(!PIN_START_BUTTON.Get())
	printLevel(!PIN_RESET_BUTTON.Get())
	print("\n")
}

func printLevel(pressed bool) {
	if pressed {
		print("1")
	} else {
		print("0")
	}
}

// processScale accumulates bytes from the scale UART and parses complete lines.
func processScale() {
	for scaleUART.Buffered() > 0 {
		data, err := scaleUART.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if scalePos > 0 {
				parseWeight(scaleBuffer[:scalePos])
			}
			scalePos = 0
			continue
		}

		// Keep only the number; drop unit suffixes and padding
		if (data >= '0' && data <= '9') || data == '.' || data == '-' {
			if scalePos < len(scaleBuffer) {
				scaleBuffer[scalePos] = data
				scalePos++
			}
		}
	}
}

func parseWeight(text []byte) {
	w, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return
	}
	weight = w
	haveWeight = true
}

// processHost handles commands from the host. "T" tares the current weight.
func processHost() {
	for machine.Serial.Buffered() > 0 {
		data, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		if data == 'T' {
			tareOffset = weight
		}
	}
}
