// Package ascii implements the line-oriented ASCII protocol of multi-axis
// linear stage controllers, and the lockstep group abstraction built on it.
//
// # Wire format
//
// Commands are single lines addressed to a device and an axis:
//
//	/<device> <axis> <payload tokens>\r\n
//
// Device 0 is the broadcast address and axis 0 addresses the whole device.
// A command without payload is a bare status query. Every command is answered
// by exactly one reply line:
//
//	@<device:2 digits> <axis> <OK|RJ> <IDLE|BUSY> <warning|--> <data...>\r\n
//
// # Layers
//
//   - Command and Reply are the frame codec (Command.Encode, ParseCommand, DecodeReply).
//   - Link is the half-duplex session over a transport.Port.
//   - Device prefixes a device address on every command.
//   - Lockstep drives two physical axes as one logical axis and turns BUSY
//     acknowledgements into synchronous completion by polling.
//
// # Concurrency
//
// A Link carries one outstanding command at a time and does no locking of
// its own. Goroutines sharing a Link serialize through the mutex returned by
// Link.Lock:
//
//	mu := link.Lock()
//	mu.Lock()
//	reply, err := dev.Request(1, "get", "pos")
//	mu.Unlock()
package ascii
