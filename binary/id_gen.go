package binary

import (
	"sync/atomic"
)

// MessageIDGenerator hands out message ids for outgoing commands.
type MessageIDGenerator interface {
	NextID() uint8
}

// seqIDGenerator issues ids 1, 2, ... 255, 0, 1, ... and is safe for
// concurrent use.
type seqIDGenerator struct {
	id atomic.Uint32
}

// NewMessageIDGenerator returns a sequential generator starting at 1.
// Each link should get its own generator.
func NewMessageIDGenerator() MessageIDGenerator {
	return &seqIDGenerator{}
}

func (g *seqIDGenerator) NextID() uint8 {
	return uint8(g.id.Add(1)) //nolint:gosec // ids wrap at 255
}
