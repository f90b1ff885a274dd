package ascii

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/go-stage/logger"
	"github.com/arloliu/go-stage/transport"
)

// MaxLineLength bounds a reply line, terminator included.
const MaxLineLength = 512

// Sentinel errors for the ASCII protocol.
var (
	ErrMalformedReply         = errors.New("ascii: malformed reply")
	ErrTimeout                = errors.New("ascii: read timeout")
	ErrInvalidCommand         = errors.New("ascii: invalid command")
	ErrInvalidAddress         = errors.New("ascii: invalid address")
	ErrInvalidBaudRate        = errors.New("ascii: invalid baud rate")
	ErrUnsupportedCommandType = errors.New("ascii: unsupported command type")
	ErrRejected               = errors.New("ascii: command rejected")
)

// Link is an ASCII protocol session over a transport.Port.
//
// The protocol is half-duplex: every Write must be followed by the matching
// Read before the next Write. Link does not enforce this and performs no
// locking; callers sharing a Link between goroutines serialize through Lock.
type Link struct {
	port    transport.Port
	cfg     *LinkConfig
	logger  logger.Logger
	lock    sync.Mutex
	metrics LinkMetrics
}

// NewLink creates a Link owning port. A nil cfg selects the defaults.
func NewLink(port transport.Port, cfg *LinkConfig) (*Link, error) {
	if port == nil {
		return nil, errors.New("ascii: port is nil")
	}

	if cfg == nil {
		var err error
		if cfg, err = NewLinkConfig(); err != nil {
			return nil, err
		}
	}

	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		return nil, fmt.Errorf("ascii: set read timeout: %w", err)
	}

	return &Link{
		port:   port,
		cfg:    cfg,
		logger: cfg.logger,
	}, nil
}

// Config returns the link configuration.
func (l *Link) Config() *LinkConfig { return l.cfg }

// Metrics returns the link counters.
func (l *Link) Metrics() *LinkMetrics { return &l.metrics }

// Lock returns the mutex that goroutines sharing this link must hold around
// each Write/Read pair. The link itself never locks it.
func (l *Link) Lock() *sync.Mutex { return &l.lock }

// Write sends one command line.
func (l *Link) Write(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	frame := cmd.Encode()
	if _, err := l.port.Write(frame); err != nil {
		return fmt.Errorf("ascii: write %q: %w", cmd.String(), err)
	}

	l.metrics.incCmdSendCount()
	l.logger.Debug("ascii: sent command", "command", cmd.String())

	return nil
}

// WriteRaw sends a command given as a string or byte slice. The input is
// resolved with ParseCommand and re-encoded, so a canonical line such as
// "/1 0 home\r\n" goes out unchanged. Command values are accepted as well.
func (l *Link) WriteRaw(v any) error {
	var (
		cmd Command
		err error
	)

	switch c := v.(type) {
	case Command:
		cmd = c
	case *Command:
		if c == nil {
			return fmt.Errorf("%w: nil *Command", ErrUnsupportedCommandType)
		}
		cmd = *c
	case string:
		cmd, err = ParseCommand(c)
	case []byte:
		cmd, err = ParseCommand(string(c))
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedCommandType, v)
	}

	if err != nil {
		return err
	}

	return l.Write(cmd)
}

// Read blocks until one reply line has been received and decodes it.
//
// It fails with ErrTimeout when the port read timeout expires before the
// terminator arrives; the partial line is dropped. A line that does not
// match the reply grammar fails with ErrMalformedReply.
func (l *Link) Read() (Reply, error) {
	line, err := l.readLine()
	if err != nil {
		if errors.Is(err, transport.ErrTimeout) {
			l.metrics.incTimeoutCount()
			l.logger.Warn("ascii: reply timeout", "timeout", l.port.ReadTimeout())

			return Reply{}, fmt.Errorf("%w: %w", ErrTimeout, err)
		}

		if errors.Is(err, ErrMalformedReply) {
			l.metrics.incMalformedCount()
		}

		return Reply{}, err
	}

	reply, err := DecodeReply(line)
	if err != nil {
		l.metrics.incMalformedCount()
		l.logger.Warn("ascii: malformed reply", "line", line)

		return Reply{}, err
	}

	l.metrics.incReplyRecvCount()
	if reply.IsRejected() {
		l.metrics.incReplyRejectCount()
	}
	l.logger.Debug("ascii: received reply", "reply", reply.String())

	return reply, nil
}

// CanRead reports whether unread reply bytes are pending. It does not block.
func (l *Link) CanRead() (bool, error) {
	return l.port.CanRead()
}

// BaudRate returns the baud rate of the port.
func (l *Link) BaudRate() int {
	return l.port.BaudRate()
}

// SetBaudRate changes the baud rate of the port to one of SupportedBaudRates.
func (l *Link) SetBaudRate(baud int) error {
	if !slices.Contains(SupportedBaudRates, baud) {
		return fmt.Errorf("%w: %d, want one of %v", ErrInvalidBaudRate, baud, SupportedBaudRates)
	}

	if err := l.port.SetBaudRate(baud); err != nil {
		return err
	}

	l.logger.Info("ascii: baud rate changed", "baud", baud)

	return nil
}

// Close closes the owned port.
func (l *Link) Close() error {
	return l.port.Close()
}

func (l *Link) readLine() (string, error) {
	buf := make([]byte, 0, 64)

	for {
		b, err := l.port.ReadByte()
		if err != nil {
			return "", err
		}

		buf = append(buf, b)
		if b == '\n' {
			return string(buf), nil
		}

		if len(buf) >= MaxLineLength {
			return "", fmt.Errorf("%w: line exceeds %d bytes", ErrMalformedReply, MaxLineLength)
		}
	}
}
