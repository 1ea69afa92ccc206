package scale

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate of the scale link.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 100
)

// RawReading is one line reported by the scale link.
type RawReading struct {
	Millis int64   // Monotonic milliseconds on the scale side
	Weight float64 // Weight as reported, before calibration
	Start  bool    // Raw start button level
	Reset  bool    // Raw reset button level
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is a scale link over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	log      logrus.FieldLogger

	conn      serial.Port
	readings  chan RawReading
	done      chan struct{} // Closed when the reader goroutine exits
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial link with the specified port, baud rate, and buffer size.
// A nil logger uses the logrus standard logger.
func New(port string, baudRate int, bufSize int, log logrus.FieldLogger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		log:      log.WithField("port", port),
		readings: make(chan RawReading, bufSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading lines.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readLines(port)

	return nil
}

// Close closes the port and waits for the readings channel to close.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()
	if err := d.conn.Close(); err != nil {
		d.log.WithError(err).Warn("Error closing serial port")
	}
	d.conn = nil
	d.connected = false
	d.mu.Unlock()

	<-d.done
	return nil
}

// Readings returns the channel of raw readings. It is closed when the link stops.
func (d *Serial) Readings() <-chan RawReading {
	return d.readings
}

// Tare asks the scale to zero its current load.
func (d *Serial) Tare() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return ErrNotConnected
	}

	if _, err := d.conn.Write([]byte("T\n")); err != nil {
		return fmt.Errorf("failed to send tare command: %w", err)
	}

	return nil
}

// IsConnected returns whether the link is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readLines parses lines from r until it fails or the link is closed.
func (d *Serial) readLines(r io.Reader) {
	defer close(d.done)
	defer close(d.readings)
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Errorf("Panic in readLines: %v", rec)
		}
	}()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reading, err := parseLine(line)
		if err != nil {
			d.log.WithError(err).WithField("line", line).Warn("Failed to parse line")
			continue
		}

		select {
		case d.readings <- reading:
		case <-d.ctx.Done():
			return
		default:
			d.log.Warn("Readings channel full, dropping reading")
		}
	}

	if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
		d.log.WithError(err).Error("Error reading from serial port")
	}
}

// parseLine parses a line from the scale into a RawReading.
// Format: millis,weight,SR where S and R are the raw start and reset levels.
// Example: 123456,42.75,10
func parseLine(line string) (RawReading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return RawReading{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawReading{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	if millis < 0 {
		return RawReading{}, fmt.Errorf("negative timestamp: %d", millis)
	}

	weight, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return RawReading{}, fmt.Errorf("invalid weight: %w", err)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return RawReading{}, fmt.Errorf("weight out of range: %v", weight)
	}

	buttons := parts[2]
	if len(buttons) != 2 {
		return RawReading{}, fmt.Errorf("invalid button states: expected 2 digits, got %d", len(buttons))
	}
	for i := range 2 {
		if buttons[i] != '0' && buttons[i] != '1' {
			return RawReading{}, fmt.Errorf("invalid button state %q", buttons[i])
		}
	}

	return RawReading{
		Millis: millis,
		Weight: weight,
		Start:  buttons[0] == '1',
		Reset:  buttons[1] == '1',
	}, nil
}
