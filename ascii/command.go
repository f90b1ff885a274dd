package ascii

import (
	"fmt"
	"strconv"
	"strings"
)

// Terminator ends every command and reply line.
const Terminator = "\r\n"

// MaxDeviceAddress is the highest device address on a daisy chain.
const MaxDeviceAddress = 99

// BroadcastAddress addresses every device on the chain.
const BroadcastAddress = 0

// Command is an ASCII command addressed to one device and axis.
//
// Data holds the payload tokens joined by single spaces. An empty Data makes
// the command a bare status query.
type Command struct {
	Device int
	Axis   int
	Data   string
}

// NewCommand builds a command from its address and payload tokens.
// Tokens may themselves contain spaces; whitespace is normalized.
func NewCommand(device, axis int, payload ...string) (Command, error) {
	cmd := Command{
		Device: device,
		Axis:   axis,
		Data:   strings.Join(strings.Fields(strings.Join(payload, " ")), " "),
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}

	return cmd, nil
}

// ParseCommand resolves a bare command string into a Command.
//
// A trailing terminator and a leading '/' are removed and the rest is split
// on whitespace, left to right; quotes carry no meaning. The first numeric
// token is the device address and the second numeric token the axis; both
// default to 0 when missing. The remaining tokens are the payload, so "" is
// "/0 0", "1" is "/1 0" and "2 2" is "/2 2".
func ParseCommand(s string) (Command, error) {
	s = strings.TrimRight(s, Terminator)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "/")

	tokens := strings.Fields(s)

	var cmd Command
	if len(tokens) > 0 {
		if n, ok := parseAddress(tokens[0]); ok {
			cmd.Device = n
			tokens = tokens[1:]

			if len(tokens) > 0 {
				if n, ok := parseAddress(tokens[0]); ok {
					cmd.Axis = n
					tokens = tokens[1:]
				}
			}
		}
	}
	cmd.Data = strings.Join(tokens, " ")

	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}

	return cmd, nil
}

// Validate checks the device and axis ranges and that Data stays on one line.
func (c Command) Validate() error {
	if strings.ContainsAny(c.Data, "\r\n") {
		return fmt.Errorf("%w: payload %q contains a line break", ErrInvalidCommand, c.Data)
	}
	if c.Device < 0 || c.Device > MaxDeviceAddress {
		return fmt.Errorf("%w: device %d out of range [0, %d]", ErrInvalidAddress, c.Device, MaxDeviceAddress)
	}
	if c.Axis < 0 {
		return fmt.Errorf("%w: axis %d is negative", ErrInvalidAddress, c.Axis)
	}

	return nil
}

// IsQuery reports whether the command carries no payload.
func (c Command) IsQuery() bool {
	return c.Data == ""
}

// String returns the command line without the terminator.
func (c Command) String() string {
	if c.Data == "" {
		return fmt.Sprintf("/%d %d", c.Device, c.Axis)
	}

	return fmt.Sprintf("/%d %d %s", c.Device, c.Axis, c.Data)
}

// Encode returns the wire representation of the command.
func (c Command) Encode() []byte {
	return []byte(c.String() + Terminator)
}

func parseAddress(tok string) (int, bool) {
	n, err := strconv.ParseUint(tok, 10, 31)
	if err != nil {
		return 0, false
	}

	return int(n), true
}
