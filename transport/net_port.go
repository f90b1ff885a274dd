package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"
)

// NetPort adapts a net.Conn to the Port interface.
//
// It is meant for TCP serial bridges, where the physical baud rate is owned
// by the bridge, and for in-process pipes in tests. The baud rate is stored
// but has no effect on the stream.
type NetPort struct {
	conn    net.Conn
	reader  *bufio.Reader
	baud    atomic.Int64
	timeout atomic.Int64
}

var _ Port = (*NetPort)(nil)

// NewNetPort wraps conn with the default baud rate and read timeout.
func NewNetPort(conn net.Conn) *NetPort {
	p := &NetPort{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}
	p.baud.Store(DefaultBaudRate)
	p.timeout.Store(int64(DefaultReadTimeout))

	return p
}

// DialNetPort connects to a TCP serial bridge at addr.
func DialNetPort(addr string, timeout time.Duration) (*NetPort, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	return NewNetPort(conn), nil
}

// Write writes all of p to the connection.
func (p *NetPort) Write(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := p.conn.Write(data[written:])
		written += n
		if err != nil {
			return written, wrapErr(err)
		}
	}

	return written, nil
}

// ReadByte reads a single byte, waiting at most ReadTimeout.
func (p *NetPort) ReadByte() (byte, error) {
	if err := p.setDeadline(p.ReadTimeout()); err != nil {
		return 0, wrapErr(err)
	}

	b, err := p.reader.ReadByte()
	if err != nil {
		return 0, wrapErr(err)
	}

	return b, nil
}

// CanRead reports whether a byte is buffered or arrives within a very short window.
func (p *NetPort) CanRead() (bool, error) {
	if p.reader.Buffered() > 0 {
		return true, nil
	}

	if err := p.setDeadline(peekWindow); err != nil {
		return false, wrapErr(err)
	}

	if _, err := p.reader.Peek(1); err != nil {
		if isTimeout(err) {
			return false, nil
		}

		return false, wrapErr(err)
	}

	return true, nil
}

func (p *NetPort) BaudRate() int {
	return int(p.baud.Load())
}

func (p *NetPort) SetBaudRate(baud int) error {
	if baud <= 0 {
		return fmt.Errorf("transport: invalid baud rate %d", baud)
	}
	p.baud.Store(int64(baud))

	return nil
}

func (p *NetPort) ReadTimeout() time.Duration {
	return time.Duration(p.timeout.Load())
}

func (p *NetPort) SetReadTimeout(d time.Duration) error {
	p.timeout.Store(int64(d))
	return nil
}

// Close closes the underlying connection.
func (p *NetPort) Close() error {
	if err := p.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

func (p *NetPort) setDeadline(d time.Duration) error {
	if d <= 0 {
		return p.conn.SetReadDeadline(time.Time{})
	}

	return p.conn.SetReadDeadline(time.Now().Add(d))
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func wrapErr(err error) error {
	switch {
	case isTimeout(err):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	default:
		return err
	}
}
