package scale

import "errors"

var (
	// ErrNotConnected is returned by operations that need an open device.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by Connect on an open device.
	ErrAlreadyConnected = errors.New("already connected")
)

// Device defines the interface for scale links (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan RawReading
	Tare() error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
