package ascii

import "github.com/arloliu/go-stage/logger"

// lockstepState is the progress of one lockstep operation.
type lockstepState uint32

const (
	stateIssued  lockstepState = iota // command written, ack pending
	stateAckBusy                      // ack received with BUSY status
	statePolling                      // querying until group and axis are idle
	stateIdle                         // operation complete
)

func (st lockstepState) String() string {
	switch st {
	case stateIssued:
		return "Issued"
	case stateAckBusy:
		return "AckBusy"
	case statePolling:
		return "Polling"
	case stateIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// lockstepOp tracks the state of one lockstep operation.
type lockstepOp struct {
	state  lockstepState
	logger logger.Logger
}

func newLockstepOp(l logger.Logger, start lockstepState) *lockstepOp {
	l.Debug("ascii: lockstep operation started", "state", start.String())

	return &lockstepOp{state: start, logger: l}
}

// State returns the current state.
func (op *lockstepOp) State() lockstepState { return op.state }

// advance moves the operation to next. Moving to the current state is a no-op.
func (op *lockstepOp) advance(next lockstepState) {
	if op.state == next {
		return
	}

	op.logger.Debug("ascii: lockstep state changed", "from", op.state.String(), "to", next.String())
	op.state = next
}
