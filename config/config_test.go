package config

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
port "bench" {
	path     = "/dev/ttyUSB0"
	baud     = 115200
	timeout  = "2s"
	protocol = "ascii"
}

port "bridge" {
	address     = "127.0.0.1:4001"
	protocol    = "binary"
	message_ids = true
}

lockstep "gantry" {
	port          = "bench"
	device        = 1
	group         = 1
	axes          = [1, 2]
	poll_interval = "20ms"
}
`

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	s := new(StageSchema)
	require.NoError(t, s.Decode([]byte(sampleConfig)))

	require.Len(t, s.Port, 2)
	bench, err := s.FindPort("bench")
	require.NoError(t, err)
	assert.Equal("/dev/ttyUSB0", bench.Path)
	assert.Equal(115200, bench.Baud)
	assert.Equal(2*time.Second, bench.ReadTimeout())
	assert.Equal(ProtocolASCII, bench.ProtocolName())

	bridge, err := s.FindPort("bridge")
	require.NoError(t, err)
	assert.Equal(ProtocolBinary, bridge.ProtocolName())
	assert.True(bridge.MessageIDs)
	assert.Zero(bridge.ReadTimeout())

	gantry, err := s.FindLockstep("gantry")
	require.NoError(t, err)
	assert.Equal("bench", gantry.Port)
	assert.Equal(1, gantry.Device)
	assert.Equal([]int{1, 2}, gantry.Axes)
	assert.Equal(20*time.Millisecond, gantry.PollCadence())

	_, err = s.FindPort("missing")
	require.ErrorIs(t, err, ErrUnknownPort)
	_, err = s.FindLockstep("missing")
	require.ErrorIs(t, err, ErrUnknownLockstep)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		hcl  string
		err  error
	}{
		{
			name: "path and address",
			hcl: `port "p" {
	path = "/dev/ttyS0"
	address = "h:1"
}`,
			err: ErrInvalidSchema,
		},
		{
			name: "neither path nor address",
			hcl: `port "p" {
	baud = 9600
}`,
			err: ErrInvalidSchema,
		},
		{
			name: "unknown protocol",
			hcl: `port "p" {
	path = "/dev/ttyS0"
	protocol = "modbus"
}`,
			err: ErrInvalidSchema,
		},
		{
			name: "bad timeout",
			hcl: `port "p" {
	path = "/dev/ttyS0"
	timeout = "soon"
}`,
			err: ErrInvalidSchema,
		},
		{
			name: "unknown port reference",
			hcl: `lockstep "g" {
	port = "nope"
	device = 1
	group = 1
}`,
			err: ErrUnknownPort,
		},
		{
			name: "device out of range",
			hcl: `port "p" {
	path = "/dev/ttyS0"
}
lockstep "g" {
	port = "p"
	device = 100
	group = 1
}`,
			err: ErrInvalidSchema,
		},
		{
			name: "one axis",
			hcl: `port "p" {
	path = "/dev/ttyS0"
}
lockstep "g" {
	port = "p"
	device = 1
	group = 1
	axes = [1]
}`,
			err: ErrInvalidSchema,
		},
		{
			name: "duplicate port",
			hcl: `port "p" {
	path = "/dev/ttyS0"
}
port "p" {
	path = "/dev/ttyS1"
}`,
			err: ErrInvalidSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(StageSchema)
			err := s.Decode([]byte(tt.hcl))
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDecode_SyntaxError(t *testing.T) {
	s := new(StageSchema)
	require.Error(t, s.Decode([]byte(`port "p" {`)))
}

func TestEncodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	s := new(StageSchema)
	require.NoError(t, s.Decode([]byte(sampleConfig)))

	data, err := s.Encode()
	require.NoError(t, err)

	s2 := new(StageSchema)
	require.NoError(t, s2.Decode(data))
	assert.Equal(s, s2)
}

func TestReadConfig(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "stage.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	s, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Len(s.Lockstep, 1)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestPortSchema_OpenBridge(t *testing.T) {
	assert := assert.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	ps := &PortSchema{Name: "bridge", Address: ln.Addr().String(), Baud: 9600, Timeout: "250ms"}
	port, err := ps.Open()
	require.NoError(t, err)
	defer port.Close()

	assert.Equal(9600, port.BaudRate())
}
