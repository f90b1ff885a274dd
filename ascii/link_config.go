package ascii

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-stage/logger"
)

// Default link settings.
const (
	DefaultReadTimeout  = 5 * time.Second       // per-byte reply timeout
	DefaultPollInterval = 10 * time.Millisecond // delay between completion polls
)

// Link setting limits.
const (
	MinReadTimeout  = 10 * time.Millisecond
	MaxReadTimeout  = 10 * time.Minute
	MaxPollInterval = 10 * time.Second
)

// SupportedBaudRates lists the baud rates the controllers accept.
var SupportedBaudRates = []int{9600, 19200, 38400, 57600, 115200}

// LinkConfig holds the configuration of an ASCII link.
type LinkConfig struct {
	// readTimeout bounds every byte read from the port. A read that expires
	// fails the whole exchange with ErrTimeout.
	readTimeout time.Duration

	// pollInterval is the wait between two polls of a busy lockstep group.
	// Zero polls back to back.
	pollInterval time.Duration

	logger logger.Logger
}

// NewLinkConfig creates a link configuration.
// opts are functional options applied in order; see With* functions.
func NewLinkConfig(opts ...LinkOption) (*LinkConfig, error) {
	cfg := &LinkConfig{
		readTimeout:  DefaultReadTimeout,
		pollInterval: DefaultPollInterval,
		logger:       logger.GetLogger(),
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

// PollInterval returns the wait between completion polls.
func (cfg *LinkConfig) PollInterval() time.Duration { return cfg.pollInterval }

// GetLogger returns the configured logger.
func (cfg *LinkConfig) GetLogger() logger.Logger { return cfg.logger }

// LinkOption is a functional option for configuring a LinkConfig.
type LinkOption interface {
	apply(*LinkConfig) error
}

type linkOptFunc func(*LinkConfig) error

func (f linkOptFunc) apply(cfg *LinkConfig) error { return f(cfg) }

// WithReadTimeout sets the per-byte read timeout, in [MinReadTimeout, MaxReadTimeout].
func WithReadTimeout(d time.Duration) LinkOption {
	return linkOptFunc(func(cfg *LinkConfig) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("ascii: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithPollInterval sets the wait between completion polls, in [0, MaxPollInterval].
func WithPollInterval(d time.Duration) LinkOption {
	return linkOptFunc(func(cfg *LinkConfig) error {
		if d < 0 || d > MaxPollInterval {
			return fmt.Errorf("ascii: poll interval %v out of range [0, %v]", d, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithLogger sets the logger for the link.
func WithLogger(l logger.Logger) LinkOption {
	return linkOptFunc(func(cfg *LinkConfig) error {
		if l == nil {
			return errors.New("ascii: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
