// Package serialport implements transport.Port on top of a local serial
// device using go.bug.st/serial.
package serialport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/go-stage/transport"
	"go.bug.st/serial"
)

// readChunkSize is the size of the internal receive buffer.
const readChunkSize = 256

// Config describes the serial device to open.
type Config struct {
	// Name is the device path, e.g. "/dev/ttyUSB0" or "COM3".
	Name string
	// BaudRate defaults to transport.DefaultBaudRate when zero.
	BaudRate int
	// ReadTimeout defaults to transport.DefaultReadTimeout when zero.
	ReadTimeout time.Duration
}

// Port is a transport.Port backed by a serial device. 8N1 framing is used.
type Port struct {
	mu      sync.Mutex
	port    serial.Port
	name    string
	mode    serial.Mode
	timeout time.Duration

	buf  [readChunkSize]byte
	r, w int
}

var _ transport.Port = (*Port)(nil)

// Open opens the serial device described by cfg.
func Open(cfg Config) (*Port, error) {
	if cfg.Name == "" {
		return nil, errors.New("serialport: device name is empty")
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = transport.DefaultBaudRate
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = transport.DefaultReadTimeout
	}

	mode := serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	sp, err := serial.Open(cfg.Name, &mode)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", cfg.Name, err)
	}

	p := &Port{
		port: sp,
		name: cfg.Name,
		mode: mode,
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = sp.Close()
		return nil, err
	}

	return p, nil
}

// Name returns the device path.
func (p *Port) Name() string { return p.name }

func (p *Port) Write(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := p.port.Write(data[written:])
		written += n
		if err != nil {
			return written, wrapErr(err)
		}
	}

	return written, nil
}

// ReadByte returns the next byte, reading from the device when the internal
// buffer is empty. go.bug.st/serial reports an expired read timeout as a
// zero-length read, which is mapped to transport.ErrTimeout.
func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.r == p.w {
		if err := p.fill(); err != nil {
			return 0, err
		}
		if p.r == p.w {
			return 0, fmt.Errorf("%w: no data within %v", transport.ErrTimeout, p.timeout)
		}
	}

	b := p.buf[p.r]
	p.r++

	return b, nil
}

// CanRead temporarily shortens the read timeout to check for pending input.
func (p *Port) CanRead() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.r < p.w {
		return true, nil
	}

	if err := p.port.SetReadTimeout(time.Millisecond); err != nil {
		return false, wrapErr(err)
	}
	defer func() { _ = p.port.SetReadTimeout(p.serialTimeout()) }()

	if err := p.fill(); err != nil {
		return false, err
	}

	return p.r < p.w, nil
}

func (p *Port) BaudRate() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.mode.BaudRate
}

// SetBaudRate reconfigures the open device.
func (p *Port) SetBaudRate(baud int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	mode := p.mode
	mode.BaudRate = baud
	if err := p.port.SetMode(&mode); err != nil {
		return fmt.Errorf("serialport: set baud rate %d: %w", baud, err)
	}
	p.mode = mode

	return nil
}

func (p *Port) ReadTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.timeout
}

func (p *Port) SetReadTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.timeout = d
	if err := p.port.SetReadTimeout(p.serialTimeout()); err != nil {
		return fmt.Errorf("serialport: set read timeout: %w", err)
	}

	return nil
}

// Close discards pending input and closes the device.
func (p *Port) Close() error {
	_ = p.port.ResetInputBuffer()
	return p.port.Close()
}

func (p *Port) serialTimeout() time.Duration {
	if p.timeout <= 0 {
		return serial.NoTimeout
	}

	return p.timeout
}

func (p *Port) fill() error {
	p.r, p.w = 0, 0

	n, err := p.port.Read(p.buf[:])
	if err != nil {
		return wrapErr(err)
	}
	p.w = n

	return nil
}

func wrapErr(err error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		return fmt.Errorf("%w: %w", transport.ErrClosed, err)
	}

	return err
}
