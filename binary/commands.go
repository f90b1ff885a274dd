package binary

// Command numbers of the binary protocol.
const (
	CmdReset                 uint8 = 0
	CmdHome                  uint8 = 1
	CmdRenumber              uint8 = 2
	CmdMoveAbsolute          uint8 = 20
	CmdMoveRelative          uint8 = 21
	CmdMoveAtConstantSpeed   uint8 = 22
	CmdStop                  uint8 = 23
	CmdReturnDeviceID        uint8 = 50
	CmdReturnFirmwareVersion uint8 = 51
	CmdReturnStatus          uint8 = 54
	CmdEchoData              uint8 = 55
	CmdReturnCurrentPosition uint8 = 60
	CmdError                 uint8 = 255
)
