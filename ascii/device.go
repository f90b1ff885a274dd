package ascii

import (
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
)

// Device binds a Link to one device address.
type Device struct {
	link    *Link
	address int
	groups  *xsync.MapOf[int, *Lockstep]
}

// NewDevice returns the device at address on link.
func NewDevice(link *Link, address int) (*Device, error) {
	if link == nil {
		return nil, fmt.Errorf("ascii: link is nil")
	}
	if address < 0 || address > MaxDeviceAddress {
		return nil, fmt.Errorf("%w: device %d out of range [0, %d]", ErrInvalidAddress, address, MaxDeviceAddress)
	}

	return &Device{
		link:    link,
		address: address,
		groups:  xsync.NewMapOf[int, *Lockstep](),
	}, nil
}

// Address returns the device address.
func (d *Device) Address() int { return d.address }

// Link returns the link the device talks through.
func (d *Device) Link() *Link { return d.link }

// Request sends payload to axis and returns the reply.
// A rejected command is returned as a reply, not as an error.
func (d *Device) Request(axis int, payload ...string) (Reply, error) {
	cmd, err := NewCommand(d.address, axis, payload...)
	if err != nil {
		return Reply{}, err
	}

	if err := d.link.Write(cmd); err != nil {
		return Reply{}, err
	}

	reply, err := d.link.Read()
	if err != nil {
		return Reply{}, err
	}

	if reply.Device != d.address || reply.Axis != axis {
		d.link.logger.Warn("ascii: reply address differs from command",
			"command", cmd.String(), "reply", reply.String())
	}

	return reply, nil
}

// Query sends a bare status query to axis.
func (d *Device) Query(axis int) (Reply, error) {
	return d.Request(axis)
}

// Lockstep returns the handle of lockstep group on this device.
// Handles are cached; they hold no protocol state.
func (d *Device) Lockstep(group int) *Lockstep {
	ls, _ := d.groups.LoadOrCompute(group, func() *Lockstep {
		return newLockstep(d, group)
	})

	return ls
}
