package binary

import (
	"encoding/binary"
	"fmt"
)

// FrameSize is the length of every binary frame.
const FrameSize = 6

// messageIDDataMask keeps the data bits that survive the message id overlay.
const messageIDDataMask = 0x00FFFFFF

// Command is a binary command frame.
type Command struct {
	Device       uint8
	Number       uint8
	Data         int32
	MessageID    uint8
	HasMessageID bool
}

// NewCommand returns a command without message id.
func NewCommand(device, number uint8, data int32) Command {
	return Command{Device: device, Number: number, Data: data}
}

// WithMessageID returns a copy of c carrying id.
func (c Command) WithMessageID(id uint8) Command {
	c.MessageID = id
	c.HasMessageID = true

	return c
}

// Encode packs the command into its 6-byte frame. With a message id, byte 5
// is overwritten by the id.
func (c Command) Encode() []byte {
	frame := make([]byte, FrameSize)
	frame[0] = c.Device
	frame[1] = c.Number
	binary.LittleEndian.PutUint32(frame[2:], uint32(c.Data)) //nolint:gosec // two's complement bit pattern
	if c.HasMessageID {
		frame[5] = c.MessageID
	}

	return frame
}

func (c Command) String() string {
	if c.HasMessageID {
		return fmt.Sprintf("[%d %d %d id=%d]", c.Device, c.Number, c.Data, c.MessageID)
	}

	return fmt.Sprintf("[%d %d %d]", c.Device, c.Number, c.Data)
}

// ParseFrame unpacks a raw 6-byte command frame. The frame is taken as is,
// so encoding the result reproduces the input.
func ParseFrame(frame []byte) (Command, error) {
	if len(frame) != FrameSize {
		return Command{}, fmt.Errorf("%w: got %d bytes, want %d", ErrWrongFrameLength, len(frame), FrameSize)
	}

	return Command{
		Device: frame[0],
		Number: frame[1],
		Data:   int32(binary.LittleEndian.Uint32(frame[2:])), //nolint:gosec // two's complement bit pattern
	}, nil
}

// CommandFrom resolves the accepted command representations into a Command:
// Command, *Command, a raw []byte or [6]byte frame, or a 6-character string.
func CommandFrom(v any) (Command, error) {
	switch c := v.(type) {
	case Command:
		return c, nil
	case *Command:
		if c == nil {
			return Command{}, fmt.Errorf("%w: nil *Command", ErrUnsupportedCommandType)
		}
		return *c, nil
	case []byte:
		return ParseFrame(c)
	case [FrameSize]byte:
		return ParseFrame(c[:])
	case string:
		return ParseFrame([]byte(c))
	default:
		return Command{}, fmt.Errorf("%w: %T", ErrUnsupportedCommandType, v)
	}
}

// Reply is a decoded binary reply frame.
type Reply struct {
	Device       uint8
	Number       uint8
	Data         int32
	MessageID    uint8
	HasMessageID bool
}

// DecodeReply unpacks a 6-byte reply frame.
//
// When expectMessageID is set, MessageID is the raw byte 5 and Data is
// masked to its low 24 bits. Otherwise Data is the full signed 32-bit value.
func DecodeReply(frame []byte, expectMessageID bool) (Reply, error) {
	if len(frame) != FrameSize {
		return Reply{}, fmt.Errorf("%w: got %d bytes, want %d", ErrWrongFrameLength, len(frame), FrameSize)
	}

	reply := Reply{
		Device: frame[0],
		Number: frame[1],
		Data:   int32(binary.LittleEndian.Uint32(frame[2:])), //nolint:gosec // two's complement bit pattern
	}

	if expectMessageID {
		reply.MessageID = frame[5]
		reply.HasMessageID = true
		reply.Data &= messageIDDataMask
	}

	return reply, nil
}

// IsError reports whether the reply is an error reply.
func (r Reply) IsError() bool { return r.Number == CmdError }

// Encode packs the reply into its 6-byte frame.
func (r Reply) Encode() []byte {
	return Command(r).Encode()
}

func (r Reply) String() string {
	return Command(r).String()
}
