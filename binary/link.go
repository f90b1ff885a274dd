package binary

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/arloliu/go-stage/logger"
	"github.com/arloliu/go-stage/transport"
)

// Sentinel errors for the binary protocol.
var (
	ErrWrongFrameLength       = errors.New("binary: wrong frame length")
	ErrUnsupportedCommandType = errors.New("binary: unsupported command type")
	ErrTimeout                = errors.New("binary: read timeout")
	ErrInvalidBaudRate        = errors.New("binary: invalid baud rate")
	ErrMessageIDMismatch      = errors.New("binary: reply message id mismatch")
)

// Link is a binary protocol session over a transport.Port.
//
// Like the ASCII link it is half-duplex and lock-free; callers sharing a
// Link serialize through Lock.
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
		return nil, errors.New("binary: port is nil")
	}

	if cfg == nil {
		var err error
		if cfg, err = NewLinkConfig(); err != nil {
			return nil, err
		}
	}

	if err := port.SetReadTimeout(cfg.readTimeout); err != nil {
		return nil, fmt.Errorf("binary: set read timeout: %w", err)
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

// Write sends one command frame and returns the command as sent. When message
// ids are enabled and cmd has none, the next generated id is stamped on it.
func (l *Link) Write(cmd Command) (Command, error) {
	if l.cfg.idGen != nil && !cmd.HasMessageID {
		cmd = cmd.WithMessageID(l.cfg.idGen.NextID())
	}

	if _, err := l.port.Write(cmd.Encode()); err != nil {
		return cmd, fmt.Errorf("binary: write %s: %w", cmd, err)
	}

	l.metrics.incFrameSendCount()
	l.logger.Debug("binary: sent command", "command", cmd.String())

	return cmd, nil
}

// WriteRaw resolves v with CommandFrom and writes it. Input validation
// errors are returned before anything reaches the port.
func (l *Link) WriteRaw(v any) (Command, error) {
	cmd, err := CommandFrom(v)
	if err != nil {
		return Command{}, err
	}

	return l.Write(cmd)
}

// Read blocks until one 6-byte reply frame has been received.
// An expired read timeout fails with ErrTimeout and drops the partial frame.
func (l *Link) Read() (Reply, error) {
	return l.read(l.cfg.idGen != nil)
}

func (l *Link) read(expectMessageID bool) (Reply, error) {
	frame := make([]byte, FrameSize)
	for i := range frame {
		b, err := l.port.ReadByte()
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				l.metrics.incTimeoutCount()
				l.logger.Warn("binary: reply timeout", "received", i, "timeout", l.port.ReadTimeout())

				return Reply{}, fmt.Errorf("%w: %w", ErrTimeout, err)
			}

			return Reply{}, err
		}
		frame[i] = b
	}

	reply, err := DecodeReply(frame, expectMessageID)
	if err != nil {
		return Reply{}, err
	}

	l.metrics.incFrameRecvCount()
	if reply.IsError() {
		l.metrics.incErrorReplyCount()
	}
	l.logger.Debug("binary: received reply", "reply", reply.String())

	return reply, nil
}

// Request writes cmd and reads its reply. When the command goes out with a
// message id, either generated or set by the caller, the reply is decoded in
// message id mode and a different id fails with ErrMessageIDMismatch.
func (l *Link) Request(cmd Command) (Reply, error) {
	sent, err := l.Write(cmd)
	if err != nil {
		return Reply{}, err
	}

	reply, err := l.read(l.cfg.idGen != nil || sent.HasMessageID)
	if err != nil {
		return Reply{}, err
	}

	if sent.HasMessageID && reply.MessageID != sent.MessageID {
		return reply, fmt.Errorf("%w: sent %d, got %d", ErrMessageIDMismatch, sent.MessageID, reply.MessageID)
	}

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

	l.logger.Info("binary: baud rate changed", "baud", baud)

	return nil
}

// Close closes the owned port.
func (l *Link) Close() error {
	return l.port.Close()
}
