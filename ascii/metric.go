package ascii

import (
	"sync/atomic"
)

// LinkMetrics contains atomic counters for an ASCII link.
// Each counter can back a prometheus CounterFunc.
type LinkMetrics struct {
	// CmdSendCount is the number of command lines written.
	CmdSendCount atomic.Uint64
	// ReplyRecvCount is the number of reply lines decoded.
	ReplyRecvCount atomic.Uint64
	// ReplyRejectCount is the number of decoded replies flagged RJ.
	ReplyRejectCount atomic.Uint64
	// MalformedCount is the number of lines that failed to decode.
	MalformedCount atomic.Uint64
	// TimeoutCount is the number of reads that timed out.
	TimeoutCount atomic.Uint64
	// PollCount is the number of completion polls issued by lockstep groups.
	PollCount atomic.Uint64
}

func (m *LinkMetrics) incCmdSendCount() {
	m.CmdSendCount.Add(1)
}

func (m *LinkMetrics) incReplyRecvCount() {
	m.ReplyRecvCount.Add(1)
}

func (m *LinkMetrics) incReplyRejectCount() {
	m.ReplyRejectCount.Add(1)
}

func (m *LinkMetrics) incMalformedCount() {
	m.MalformedCount.Add(1)
}

func (m *LinkMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

func (m *LinkMetrics) incPollCount() {
	m.PollCount.Add(1)
}
