package ascii

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	assert := assert.New(t)

	cmd, err := NewCommand(1, 0, "lockstep", "2", "move abs  100")
	require.NoError(t, err)

	assert.Equal(Command{Device: 1, Axis: 0, Data: "lockstep 2 move abs 100"}, cmd)
	assert.Equal("/1 0 lockstep 2 move abs 100\r\n", string(cmd.Encode()))
	assert.False(cmd.IsQuery())
}

func TestNewCommand_Query(t *testing.T) {
	assert := assert.New(t)

	cmd, err := NewCommand(1, 3)
	require.NoError(t, err)

	assert.True(cmd.IsQuery())
	assert.Equal("/1 3\r\n", string(cmd.Encode()))
}

func TestNewCommand_InvalidAddress(t *testing.T) {
	_, err := NewCommand(100, 0)
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NewCommand(-1, 0)
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NewCommand(1, -1)
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParseCommand(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		input string
		want  Command
		wire  string
	}{
		{"", Command{}, "/0 0\r\n"},
		{"1", Command{Device: 1}, "/1 0\r\n"},
		{"2 2", Command{Device: 2, Axis: 2}, "/2 2\r\n"},
		{"/1 0 home", Command{Device: 1, Data: "home"}, "/1 0 home\r\n"},
		{"/1 0 home\r\n", Command{Device: 1, Data: "home"}, "/1 0 home\r\n"},
		{"home", Command{Data: "home"}, "/0 0 home\r\n"},
		{"1 lockstep 2 info", Command{Device: 1, Data: "lockstep 2 info"}, "/1 0 lockstep 2 info\r\n"},
		{"3 1 move rel -500", Command{Device: 3, Axis: 1, Data: "move rel -500"}, "/3 1 move rel -500\r\n"},
		{"  /4   2   get   pos  ", Command{Device: 4, Axis: 2, Data: "get pos"}, "/4 2 get pos\r\n"},
		{"1 0 storage set note O'Brien", Command{Device: 1, Data: "storage set note O'Brien"}, "/1 0 storage set note O'Brien\r\n"},
		{`1 0 storage set note "x  y"`, Command{Device: 1, Data: `storage set note "x y"`}, "/1 0 storage set note \"x y\"\r\n"},
		{`1 0 storage set note "unterminated`, Command{Device: 1, Data: `storage set note "unterminated`}, "/1 0 storage set note \"unterminated\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := ParseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(tt.want, cmd)
			assert.Equal(tt.wire, string(cmd.Encode()))
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := ParseCommand("100 0 home")
	require.ErrorIs(t, err, ErrInvalidAddress)

}

func TestCommand_ValidateLineBreak(t *testing.T) {
	for _, data := range []string{"home\r\n/1 0 stop", "home\n", "get\rpos"} {
		err := Command{Device: 1, Data: data}.Validate()
		require.ErrorIs(t, err, ErrInvalidCommand, data)
	}

	require.NoError(t, Command{Device: 1, Data: "home"}.Validate())
}

func TestCommand_RoundTrip(t *testing.T) {
	for device := 0; device <= MaxDeviceAddress; device++ {
		for axis := 0; axis <= 4; axis++ {
			for _, data := range []string{"", "home", "move abs 1000"} {
				cmd, err := NewCommand(device, axis, data)
				require.NoError(t, err)

				parsed, err := ParseCommand(string(cmd.Encode()))
				require.NoError(t, err)
				require.Equal(t, cmd, parsed)
			}
		}
	}
}
