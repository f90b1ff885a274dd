package main

import (
	"fmt"

	"github.com/arloliu/go-stage/ascii"
	"github.com/arloliu/go-stage/binary"
	"github.com/arloliu/go-stage/config"
	"github.com/arloliu/go-stage/logger"
)

func newLogger() logger.Logger {
	if confDebug {
		return logger.NewSlog(logger.DebugLevel, false)
	}

	return logger.NewSlog(logger.InfoLevel, false)
}

func openASCIILink(conf *config.StageSchema, portName string, log logger.Logger, opts ...ascii.LinkOption) (*ascii.Link, error) {
	ps, err := conf.FindPort(portName)
	if err != nil {
		return nil, err
	}

	if ps.ProtocolName() != config.ProtocolASCII {
		return nil, fmt.Errorf("port %q speaks %s, not ascii", portName, ps.ProtocolName())
	}

	opts = append(opts, ascii.WithLogger(log.With("port", portName)))
	if d := ps.ReadTimeout(); d != 0 {
		opts = append(opts, ascii.WithReadTimeout(d))
	}

	cfg, err := ascii.NewLinkConfig(opts...)
	if err != nil {
		return nil, err
	}

	port, err := ps.Open()
	if err != nil {
		return nil, fmt.Errorf("open port %q: %w", portName, err)
	}

	link, err := ascii.NewLink(port, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	return link, nil
}

func openBinaryLink(conf *config.StageSchema, portName string, log logger.Logger) (*binary.Link, error) {
	ps, err := conf.FindPort(portName)
	if err != nil {
		return nil, err
	}

	if ps.ProtocolName() != config.ProtocolBinary {
		return nil, fmt.Errorf("port %q speaks %s, not binary", portName, ps.ProtocolName())
	}

	opts := []binary.LinkOption{binary.WithLogger(log.With("port", portName))}
	if d := ps.ReadTimeout(); d != 0 {
		opts = append(opts, binary.WithReadTimeout(d))
	}
	if ps.MessageIDs {
		opts = append(opts, binary.WithMessageIDs(binary.NewMessageIDGenerator()))
	}

	cfg, err := binary.NewLinkConfig(opts...)
	if err != nil {
		return nil, err
	}

	port, err := ps.Open()
	if err != nil {
		return nil, fmt.Errorf("open port %q: %w", portName, err)
	}

	link, err := binary.NewLink(port, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	return link, nil
}

// lockstepTarget bundles a configured lockstep group with the link it runs on.
type lockstepTarget struct {
	schema *config.LockstepSchema
	link   *ascii.Link
	group  *ascii.Lockstep
}

func openLockstep(conf *config.StageSchema, name string, log logger.Logger) (*lockstepTarget, error) {
	ls, err := conf.FindLockstep(name)
	if err != nil {
		return nil, err
	}

	var opts []ascii.LinkOption
	if d := ls.PollCadence(); d != 0 {
		opts = append(opts, ascii.WithPollInterval(d))
	}

	link, err := openASCIILink(conf, ls.Port, log.With("lockstep", name), opts...)
	if err != nil {
		return nil, err
	}

	dev, err := ascii.NewDevice(link, ls.Device)
	if err != nil {
		_ = link.Close()
		return nil, err
	}

	return &lockstepTarget{
		schema: ls,
		link:   link,
		group:  dev.Lockstep(ls.Group),
	}, nil
}

func (t *lockstepTarget) Close() error {
	return t.link.Close()
}
