package ascii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice_Validation(t *testing.T) {
	assert := assert.New(t)

	link, _ := newTestLink(t)

	_, err := NewDevice(link, 100)
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NewDevice(nil, 1)
	require.Error(t, err)

	dev, err := NewDevice(link, BroadcastAddress)
	require.NoError(t, err)
	assert.Equal(0, dev.Address())
	assert.Same(link, dev.Link())
}

func TestDevice_Request(t *testing.T) {
	assert := assert.New(t)

	dev, remote := newTestDevice(t)
	done := runController(remote, []exchange{
		{command: "/1 2 get pos\r\n", reply: "@01 2 OK IDLE -- 1500\r\n"},
	})

	reply, err := dev.Request(2, "get", "pos")
	require.NoError(t, err)
	assert.Equal("1500", reply.Data)

	waitController(t, done)
}

func TestDevice_Query(t *testing.T) {
	assert := assert.New(t)

	dev, remote := newTestDevice(t)
	done := runController(remote, []exchange{
		{command: "/1 3\r\n", reply: "@01 3 OK BUSY -- 0\r\n"},
	})

	reply, err := dev.Query(3)
	require.NoError(t, err)
	assert.True(reply.IsBusy())

	waitController(t, done)
}

func TestDevice_Request_RejectedIsNotAnError(t *testing.T) {
	assert := assert.New(t)

	dev, remote := newTestDevice(t)
	done := runController(remote, []exchange{
		{command: "/1 0 bogus\r\n", reply: "@01 0 RJ IDLE -- BADCOMMAND\r\n"},
	})

	reply, err := dev.Request(0, "bogus")
	require.NoError(t, err)
	assert.True(reply.IsRejected())

	waitController(t, done)
}

func TestDevice_Lockstep_Cached(t *testing.T) {
	assert := assert.New(t)

	dev, _ := newTestDevice(t)

	ls := dev.Lockstep(2)
	assert.Equal(2, ls.Group())
	assert.Same(ls, dev.Lockstep(2))
	assert.NotSame(ls, dev.Lockstep(1))
}
