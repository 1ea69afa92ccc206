package scale

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/itohio/goscale/pkg/config"
)

// Mock simulates a dispensing scale with operator buttons.
//
// Every cycle the reset button is held first, the start button is held after
// StartDelay, and the weight then grows at FlowRate until the cycle ends.
type Mock struct {
	cfg *config.MockConfig

	readings  chan RawReading
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	startTime time.Time
	tare      float64 // Weight subtracted from every reading
	last      float64 // Last untared weight
}

// NewMock creates a new mocked scale.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			FlowRate:      5.0,
			NoiseLevel:    0.05,
			SampleRate:    100 * time.Millisecond,
			CycleDuration: 30 * time.Second,
			StartDelay:    time.Second,
			PressDuration: 200 * time.Millisecond,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:      cfg,
		readings: make(chan RawReading, DefaultBufferSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect starts generating readings.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.connected = true
	m.startTime = time.Now()

	go m.generateReadings()

	return nil
}

// Close stops the mocked scale and waits for the readings channel to close.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	m.mu.Unlock()

	<-m.done
	return nil
}

// Readings returns the channel of raw readings.
func (m *Mock) Readings() <-chan RawReading {
	return m.readings
}

// Tare zeroes the current load.
func (m *Mock) Tare() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.tare = m.last
	return nil
}

// IsConnected returns whether the mock is running.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateReadings() {
	defer close(m.done)
	defer close(m.readings)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			reading := m.readingAt(time.Since(m.startTime))
			m.mu.Unlock()

			select {
			case m.readings <- reading:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// readingAt simulates the scale at the given time since Connect.
// Must be called with mu held.
func (m *Mock) readingAt(elapsed time.Duration) RawReading {
	inCycle := elapsed
	if m.cfg.CycleDuration > 0 {
		inCycle = elapsed % m.cfg.CycleDuration
	}

	press := m.cfg.PressDuration
	reset := inCycle < press
	start := inCycle >= m.cfg.StartDelay && inCycle < m.cfg.StartDelay+press

	weight := 0.0
	if fillStart := m.cfg.StartDelay + press; inCycle > fillStart {
		weight = m.cfg.FlowRate * (inCycle - fillStart).Seconds()
	}

	// Deterministic noise
	ns := float64(elapsed.Nanoseconds())
	weight += (math.Sin(ns*1e-9*7.3) + math.Cos(ns*1e-9*3.1)) * m.cfg.NoiseLevel * 0.5

	m.last = weight

	return RawReading{
		Millis: elapsed.Milliseconds(),
		Weight: weight - m.tare,
		Start:  start,
		Reset:  reset,
	}
}
