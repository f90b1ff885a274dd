// Package config reads the HCL description of serial ports and lockstep
// groups used by stagectl.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arloliu/go-stage/transport"
	"github.com/arloliu/go-stage/transport/serialport"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

const (
	ProtocolASCII  = "ascii"
	ProtocolBinary = "binary"
)

const defaultDialTimeout = 5 * time.Second

var (
	ErrUnknownPort     = errors.New("config: unknown port")
	ErrUnknownLockstep = errors.New("config: unknown lockstep group")
	ErrInvalidSchema   = errors.New("config: invalid schema")
)

type StageSchema struct {
	Port     []*PortSchema     `hcl:"port,block"`
	Lockstep []*LockstepSchema `hcl:"lockstep,block"`
}

// PortSchema describes one serial line. Exactly one of Path (local device)
// or Address (TCP serial bridge) is set.
type PortSchema struct {
	Name       string `hcl:"name,label"`
	Path       string `hcl:"path,optional"`
	Address    string `hcl:"address,optional"`
	Baud       int    `hcl:"baud,optional"`
	Timeout    string `hcl:"timeout,optional"`
	Protocol   string `hcl:"protocol,optional"`
	MessageIDs bool   `hcl:"message_ids,optional"`
}

type LockstepSchema struct {
	Name         string `hcl:"name,label"`
	Port         string `hcl:"port,attr"`
	Device       int    `hcl:"device,attr"`
	Group        int    `hcl:"group,attr"`
	Axes         []int  `hcl:"axes,optional"`
	PollInterval string `hcl:"poll_interval,optional"`
}

func ReadConfig(path string) (*StageSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	s := new(StageSchema)

	return s, s.Decode(data)
}

func (s *StageSchema) Decode(data []byte) error {
	file, diag := hclsyntax.ParseConfig(data, "", hcl.Pos{Line: 1, Column: 1})
	if diag.HasErrors() {
		return diag.Errs()[0]
	}

	diag = gohcl.DecodeBody(file.Body, nil, s)
	if diag.HasErrors() {
		return diag.Errs()[0]
	}

	return s.Validate()
}

func (s *StageSchema) Encode() ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(s, f.Body())

	return f.Bytes(), nil
}

// Validate checks cross references and value ranges.
func (s *StageSchema) Validate() error {
	ports := make(map[string]struct{}, len(s.Port))
	for _, p := range s.Port {
		if _, ok := ports[p.Name]; ok {
			return fmt.Errorf("%w: duplicate port %q", ErrInvalidSchema, p.Name)
		}
		ports[p.Name] = struct{}{}

		if err := p.validate(); err != nil {
			return err
		}
	}

	groups := make(map[string]struct{}, len(s.Lockstep))
	for _, ls := range s.Lockstep {
		if _, ok := groups[ls.Name]; ok {
			return fmt.Errorf("%w: duplicate lockstep %q", ErrInvalidSchema, ls.Name)
		}
		groups[ls.Name] = struct{}{}

		if _, ok := ports[ls.Port]; !ok {
			return fmt.Errorf("%w: lockstep %q references %q", ErrUnknownPort, ls.Name, ls.Port)
		}

		if err := ls.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (s *StageSchema) FindPort(name string) (*PortSchema, error) {
	for _, p := range s.Port {
		if p.Name == name {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownPort, name)
}

func (s *StageSchema) FindLockstep(name string) (*LockstepSchema, error) {
	for _, ls := range s.Lockstep {
		if ls.Name == name {
			return ls, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownLockstep, name)
}

func (ps *PortSchema) validate() error {
	if (ps.Path == "") == (ps.Address == "") {
		return fmt.Errorf("%w: port %q needs exactly one of path or address", ErrInvalidSchema, ps.Name)
	}

	switch ps.Protocol {
	case "", ProtocolASCII, ProtocolBinary:
	default:
		return fmt.Errorf("%w: port %q has unknown protocol %q", ErrInvalidSchema, ps.Name, ps.Protocol)
	}

	if ps.Baud < 0 {
		return fmt.Errorf("%w: port %q has negative baud rate", ErrInvalidSchema, ps.Name)
	}

	if _, err := parseDuration(ps.Timeout); err != nil {
		return fmt.Errorf("%w: port %q timeout: %w", ErrInvalidSchema, ps.Name, err)
	}

	return nil
}

// ProtocolName returns the configured protocol, ASCII when unset.
func (ps *PortSchema) ProtocolName() string {
	if ps.Protocol == "" {
		return ProtocolASCII
	}

	return ps.Protocol
}

// ReadTimeout returns the configured timeout, zero when unset.
func (ps *PortSchema) ReadTimeout() time.Duration {
	d, _ := parseDuration(ps.Timeout)
	return d
}

// Open opens the serial device or dials the TCP bridge.
func (ps *PortSchema) Open() (transport.Port, error) {
	timeout := ps.ReadTimeout()
	if timeout == 0 {
		timeout = transport.DefaultReadTimeout
	}

	if ps.Path != "" {
		port, err := serialport.Open(serialport.Config{
			Name:        ps.Path,
			BaudRate:    ps.Baud,
			ReadTimeout: timeout,
		})
		if err != nil {
			return nil, err
		}

		return port, nil
	}

	port, err := transport.DialNetPort(ps.Address, defaultDialTimeout)
	if err != nil {
		return nil, err
	}

	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, err
	}

	if ps.Baud != 0 {
		if err := port.SetBaudRate(ps.Baud); err != nil {
			_ = port.Close()
			return nil, err
		}
	}

	return port, nil
}

func (ls *LockstepSchema) validate() error {
	if ls.Device < 1 || ls.Device > 99 {
		return fmt.Errorf("%w: lockstep %q device %d out of range", ErrInvalidSchema, ls.Name, ls.Device)
	}

	if ls.Group < 1 {
		return fmt.Errorf("%w: lockstep %q group must be positive", ErrInvalidSchema, ls.Name)
	}

	if len(ls.Axes) != 0 && len(ls.Axes) != 2 {
		return fmt.Errorf("%w: lockstep %q axes needs two entries", ErrInvalidSchema, ls.Name)
	}

	if _, err := parseDuration(ls.PollInterval); err != nil {
		return fmt.Errorf("%w: lockstep %q poll_interval: %w", ErrInvalidSchema, ls.Name, err)
	}

	return nil
}

// PollCadence returns the configured poll interval, zero when unset.
func (ls *LockstepSchema) PollCadence() time.Duration {
	d, _ := parseDuration(ls.PollInterval)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	return time.ParseDuration(s)
}
