// Package binary implements the fixed-size binary protocol of the stage
// controllers.
//
// Every command and reply is a 6-byte frame:
//
//	[device:u8][command:u8][data:i32 little-endian]
//
// When message ids are enabled, the most significant data byte (byte 5) is
// replaced with an 8-bit id that the controller echoes in its reply, leaving
// 24 bits of data. The id is taken from the raw byte on decode and stripped
// from the data value.
package binary
