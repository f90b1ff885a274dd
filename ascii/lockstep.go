package ascii

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-stage/internal/pool"
	"github.com/arloliu/go-stage/logger"
)

// stopWarning is the warning flag that accompanies the ack of a stop
// command: the current movement was interrupted.
const stopWarning = "NI"

// disabledInfo is the info payload of a group that is not set up.
const disabledInfo = "disabled"

// LockstepInfo describes a lockstep group as reported by its info command.
type LockstepInfo struct {
	Enabled bool
	Axis1   int
	Axis2   int
	Offset  int
	Twist   int
}

// Lockstep drives two physical axes of a device as one logical axis.
//
// Commands are sent to axis 0 of the device with the "lockstep <group>"
// prefix. Motion commands other than MoveVel block until the group and its
// primary axis both report IDLE.
type Lockstep struct {
	device *Device
	group  int
	logger logger.Logger
}

func newLockstep(d *Device, group int) *Lockstep {
	return &Lockstep{
		device: d,
		group:  group,
		logger: d.link.logger.With("device", d.address, "lockstep", group),
	}
}

// Group returns the lockstep group number.
func (ls *Lockstep) Group() int { return ls.group }

// Enable sets up the group with axis1 as primary and axis2 as secondary axis.
func (ls *Lockstep) Enable(axis1, axis2 int) (Reply, error) {
	return ls.exchange("setup", "enable", strconv.Itoa(axis1), strconv.Itoa(axis2))
}

// Disable tears the group down.
func (ls *Lockstep) Disable() (Reply, error) {
	return ls.exchange("setup", "disable")
}

// Home homes the group and waits until it is idle.
func (ls *Lockstep) Home() (Reply, error) {
	return ls.runToIdle("home")
}

// MoveAbs moves the group to an absolute position and waits until it is idle.
func (ls *Lockstep) MoveAbs(position int) (Reply, error) {
	return ls.runToIdle("move", "abs", strconv.Itoa(position))
}

// MoveRel moves the group by a relative distance and waits until it is idle.
func (ls *Lockstep) MoveRel(position int) (Reply, error) {
	return ls.runToIdle("move", "rel", strconv.Itoa(position))
}

// MoveVel starts a constant velocity move and returns on the acknowledgement.
func (ls *Lockstep) MoveVel(velocity int) (Reply, error) {
	op := newLockstepOp(ls.logger, stateIssued)

	reply, err := ls.exchange("move", "vel", strconv.Itoa(velocity))
	if err != nil {
		return reply, err
	}

	if reply.IsBusy() {
		op.advance(stateAckBusy)
	} else {
		op.advance(stateIdle)
	}

	return reply, nil
}

// Stop decelerates the group to a halt and waits until it is idle.
func (ls *Lockstep) Stop() (Reply, error) {
	op := newLockstepOp(ls.logger, stateIssued)

	reply, err := ls.exchange("stop")
	if err != nil {
		return reply, err
	}

	if reply.Warning != stopWarning {
		ls.logger.Warn("ascii: unexpected warning on stop", "warning", reply.Warning)
	}

	return reply, ls.awaitIdle(op, reply)
}

// Info queries the group setup. The result is never cached.
func (ls *Lockstep) Info() (LockstepInfo, error) {
	info, _, err := ls.info()
	return info, err
}

// Status returns the motion status of the group.
//
// When the group reports BUSY, the primary axis is queried directly until it
// reports a settled status, and that axis-level status is returned: the
// group status line and the physical axis do not settle at the same instant,
// and the axis is authoritative.
func (ls *Lockstep) Status() (DeviceStatus, error) {
	info, reply, err := ls.info()
	if err != nil {
		return "", err
	}

	if !reply.IsBusy() {
		return reply.Status, nil
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			ls.wait()
		}

		axisReply, err := ls.device.Query(info.Axis1)
		if err != nil {
			return "", err
		}
		ls.device.link.metrics.incPollCount()

		if !axisReply.IsBusy() {
			return axisReply.Status, nil
		}
	}
}

// PollUntilIdle blocks until the group and its primary axis are both idle.
//
// The group is queried with info until it reports IDLE, then the primary
// axis gets one bare status query; if the axis is still BUSY the loop starts
// over. There is no retry ceiling. A read timeout aborts with ErrTimeout and
// the completion of the motion is then unknown.
func (ls *Lockstep) PollUntilIdle() error {
	return ls.pollUntilIdle(newLockstepOp(ls.logger, statePolling))
}

func (ls *Lockstep) pollUntilIdle(op *lockstepOp) error {
	op.advance(statePolling)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			ls.wait()
		}

		info, reply, err := ls.info()
		if err != nil {
			return err
		}
		ls.device.link.metrics.incPollCount()

		if !reply.IsIdle() {
			continue
		}

		axisReply, err := ls.device.Query(info.Axis1)
		if err != nil {
			return err
		}

		if axisReply.IsIdle() {
			op.advance(stateIdle)
			return nil
		}

		ls.logger.Debug("ascii: lockstep idle but primary axis busy", "axis", info.Axis1)
	}
}

func (ls *Lockstep) runToIdle(payload ...string) (Reply, error) {
	op := newLockstepOp(ls.logger, stateIssued)

	reply, err := ls.exchange(payload...)
	if err != nil {
		return reply, err
	}

	return reply, ls.awaitIdle(op, reply)
}

// awaitIdle polls to completion when ack reports BUSY.
func (ls *Lockstep) awaitIdle(op *lockstepOp, ack Reply) error {
	if !ack.IsBusy() {
		op.advance(stateIdle)
		return nil
	}

	op.advance(stateAckBusy)

	return ls.pollUntilIdle(op)
}

// exchange sends "lockstep <group> <payload>" to axis 0 and reads the ack.
func (ls *Lockstep) exchange(payload ...string) (Reply, error) {
	args := append([]string{"lockstep", strconv.Itoa(ls.group)}, payload...)

	reply, err := ls.device.Request(0, args...)
	if err != nil {
		return Reply{}, err
	}

	if reply.IsRejected() {
		return reply, fmt.Errorf("%w: lockstep %d %s: %s", ErrRejected, ls.group, strings.Join(payload, " "), reply.Data)
	}

	return reply, nil
}

func (ls *Lockstep) info() (LockstepInfo, Reply, error) {
	reply, err := ls.exchange("info")
	if err != nil {
		return LockstepInfo{}, reply, err
	}

	info, err := parseLockstepInfo(reply.Data)
	if err != nil {
		return LockstepInfo{}, reply, err
	}

	return info, reply, nil
}

func (ls *Lockstep) wait() {
	pool.Sleep(ls.device.link.cfg.pollInterval)
}

// parseLockstepInfo decodes "<axis1> <axis2> <offset> <twist>". A group that
// is not set up reports "disabled", or zero axis numbers.
func parseLockstepInfo(data string) (LockstepInfo, error) {
	fields := strings.Fields(data)
	if len(fields) == 1 && strings.EqualFold(fields[0], disabledInfo) {
		return LockstepInfo{}, nil
	}

	if len(fields) != 4 {
		return LockstepInfo{}, fmt.Errorf("%w: lockstep info %q: want 4 fields", ErrMalformedReply, data)
	}

	var vals [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return LockstepInfo{}, fmt.Errorf("%w: lockstep info %q: %w", ErrMalformedReply, data, err)
		}
		vals[i] = v
	}

	return LockstepInfo{
		Enabled: vals[0] != 0 && vals[1] != 0,
		Axis1:   vals[0],
		Axis2:   vals[1],
		Offset:  vals[2],
		Twist:   vals[3],
	}, nil
}
