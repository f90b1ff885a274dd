package binary

import (
	"sync/atomic"
)

// LinkMetrics contains atomic counters for a binary link.
type LinkMetrics struct {
	// FrameSendCount is the number of command frames written.
	FrameSendCount atomic.Uint64
	// FrameRecvCount is the number of reply frames decoded.
	FrameRecvCount atomic.Uint64
	// ErrorReplyCount is the number of replies with the error command number.
	ErrorReplyCount atomic.Uint64
	// TimeoutCount is the number of reads that timed out.
	TimeoutCount atomic.Uint64
}

func (m *LinkMetrics) incFrameSendCount() {
	m.FrameSendCount.Add(1)
}

func (m *LinkMetrics) incFrameRecvCount() {
	m.FrameRecvCount.Add(1)
}

func (m *LinkMetrics) incErrorReplyCount() {
	m.ErrorReplyCount.Add(1)
}

func (m *LinkMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}
