package binary

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-stage/logger"
)

// Default link settings.
const (
	DefaultReadTimeout = 5 * time.Second
	DefaultBaudRate    = 9600
)

// Link setting limits.
const (
	MinReadTimeout = 10 * time.Millisecond
	MaxReadTimeout = 10 * time.Minute
)

// SupportedBaudRates lists the baud rates the controllers accept.
var SupportedBaudRates = []int{9600, 19200, 38400, 57600, 115200}

// LinkConfig holds the configuration of a binary link.
type LinkConfig struct {
	readTimeout time.Duration

	// idGen stamps outgoing commands with message ids. When set, replies are
	// decoded with the message id overlay.
	idGen MessageIDGenerator

	logger logger.Logger
}

// NewLinkConfig creates a link configuration.
func NewLinkConfig(opts ...LinkOption) (*LinkConfig, error) {
	cfg := &LinkConfig{
		readTimeout: DefaultReadTimeout,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ReadTimeout returns the per-byte read timeout.
func (cfg *LinkConfig) ReadTimeout() time.Duration { return cfg.readTimeout }

// MessageIDs reports whether message ids are enabled.
func (cfg *LinkConfig) MessageIDs() bool { return cfg.idGen != nil }

// GetLogger returns the configured logger.
func (cfg *LinkConfig) GetLogger() logger.Logger { return cfg.logger }

// LinkOption is a functional option for configuring a LinkConfig.
type LinkOption interface {
	apply(*LinkConfig) error
}

type linkOptFunc func(*LinkConfig) error

func (f linkOptFunc) apply(cfg *LinkConfig) error { return f(cfg) }

// WithReadTimeout sets the per-byte read timeout.
func WithReadTimeout(d time.Duration) LinkOption {
	return linkOptFunc(func(cfg *LinkConfig) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("binary: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithMessageIDs enables the message id overlay with gen as id source.
func WithMessageIDs(gen MessageIDGenerator) LinkOption {
	return linkOptFunc(func(cfg *LinkConfig) error {
		if gen == nil {
			return errors.New("binary: message id generator must not be nil")
		}
		cfg.idGen = gen

		return nil
	})
}

// WithLogger sets the logger for the link.
func WithLogger(l logger.Logger) LinkOption {
	return linkOptFunc(func(cfg *LinkConfig) error {
		if l == nil {
			return errors.New("binary: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
