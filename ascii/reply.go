package ascii

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ReplyFlag tells whether a command was accepted.
type ReplyFlag string

const (
	FlagOK       ReplyFlag = "OK"
	FlagRejected ReplyFlag = "RJ"
)

// DeviceStatus is the motion status reported in every reply.
type DeviceStatus string

const (
	StatusIdle DeviceStatus = "IDLE"
	StatusBusy DeviceStatus = "BUSY"
)

// NoWarning is the warning token of a reply without warnings.
const NoWarning = "--"

// Reply is a decoded reply line.
//
// Flag, Status and Warning are kept as received; the codec does not check
// them against the known vocabulary.
type Reply struct {
	Device  int
	Axis    int
	Flag    ReplyFlag
	Status  DeviceStatus
	Warning string
	Data    string
}

var replyPattern = regexp.MustCompile(`^@(\d{2}) (\d+) (\S+) (\S+) (\S+) (\S.*)$`)

// DecodeReply parses one reply line. The terminator is optional.
func DecodeReply(line string) (Reply, error) {
	trimmed := strings.TrimSuffix(line, Terminator)

	m := replyPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Reply{}, fmt.Errorf("%w: %q", ErrMalformedReply, line)
	}

	device, err := strconv.Atoi(m[1])
	if err != nil {
		return Reply{}, fmt.Errorf("%w: device %q: %w", ErrMalformedReply, m[1], err)
	}

	axis, err := strconv.Atoi(m[2])
	if err != nil {
		return Reply{}, fmt.Errorf("%w: axis %q: %w", ErrMalformedReply, m[2], err)
	}

	return Reply{
		Device:  device,
		Axis:    axis,
		Flag:    ReplyFlag(m[3]),
		Status:  DeviceStatus(m[4]),
		Warning: m[5],
		Data:    m[6],
	}, nil
}

// IsRejected reports whether the device rejected the command.
func (r Reply) IsRejected() bool { return r.Flag == FlagRejected }

// IsBusy reports whether the addressed device or axis is moving.
func (r Reply) IsBusy() bool { return r.Status == StatusBusy }

// IsIdle reports whether the addressed device or axis is idle.
func (r Reply) IsIdle() bool { return r.Status == StatusIdle }

// HasWarning reports whether the reply carries a warning flag.
func (r Reply) HasWarning() bool { return r.Warning != NoWarning }

// String returns the reply line without the terminator.
func (r Reply) String() string {
	return fmt.Sprintf("@%02d %d %s %s %s %s", r.Device, r.Axis, r.Flag, r.Status, r.Warning, r.Data)
}

// Encode returns the wire representation of the reply.
func (r Reply) Encode() []byte {
	return []byte(r.String() + Terminator)
}
