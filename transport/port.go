// Package transport defines the byte stream that protocol links run on.
//
// A Port is a full-duplex byte stream with a configurable baud rate, a
// single-byte read that blocks for at most the configured read timeout, and
// a non-blocking availability check. The ascii and binary links own exactly
// one Port for their lifetime and never share it.
//
// Two adapters are provided: NetPort wraps a net.Conn (e.g. a TCP serial
// bridge or net.Pipe in tests) and the serialport package wraps a local
// serial device.
package transport

import (
	"errors"
	"io"
	"time"
)

// Sentinel errors returned by Port implementations.
var (
	// ErrTimeout is returned when no byte arrives within the read timeout.
	ErrTimeout = errors.New("transport: read timeout")
	// ErrClosed is returned when the underlying stream has been closed.
	ErrClosed = errors.New("transport: port closed")
)

// DefaultBaudRate is the factory baud rate of the stage controllers.
const DefaultBaudRate = 115200

// DefaultReadTimeout is the read timeout used when none is configured.
const DefaultReadTimeout = 5 * time.Second

// peekWindow bounds how long CanRead may wait for a byte that is already in
// flight. It keeps CanRead effectively non-blocking.
const peekWindow = time.Millisecond

// Port is the byte stream collaborator of a protocol link.
type Port interface {
	io.Writer
	io.Closer

	// ReadByte blocks for at most ReadTimeout and returns an error wrapping
	// ErrTimeout when it expires.
	ReadByte() (byte, error)
	// CanRead reports whether at least one unread byte is available.
	// It does not block.
	CanRead() (bool, error)

	// BaudRate returns the current baud rate.
	BaudRate() int
	// SetBaudRate changes the baud rate of the open stream.
	SetBaudRate(baud int) error

	// ReadTimeout returns the current read timeout.
	ReadTimeout() time.Duration
	// SetReadTimeout sets the read timeout. A non-positive value blocks forever.
	SetReadTimeout(d time.Duration) error
}
