// Package comms implements the NexStar serial protocol: command framing for
// the direct and passthrough dialects, response validation, and the 32-bit
// hexadecimal angle encoding.
package comms

import (
	"fmt"
	"time"
)

// Constants for the communication protocol.
const (
	// Terminator ends every response the hand controller sends.
	Terminator byte = '#'

	// BaudRate is the fixed line speed of the hand controller port.
	BaudRate = 9600

	// ResponseTimeout is the documented worst-case time a hand controller
	// may take to reply.
	ResponseTimeout = 3500 * time.Millisecond

	// pollInterval is how often the receive loop checks for buffered reply
	// bytes; the controller assembles its whole reply before flushing it,
	// typically 10-100 ms after the command.
	pollInterval = 10 * time.Millisecond

	// recvSize is the receive scratch buffer size; no protocol response
	// exceeds it.
	recvSize = 32

	// maxPassthroughArgs is the argument capacity of a passthrough frame.
	maxPassthroughArgs = 3
)

// Device addresses a sub-device inside the mount for passthrough frames.
// These codes are never sent to the hand controller outside a 'P' frame.
type Device byte

const (
	DeviceAzRaMotor  Device = 16
	DeviceDecElMotor Device = 17
	DeviceGps        Device = 176
	DeviceRtc        Device = 178
)

func (d Device) String() string {
	switch d {
	case DeviceAzRaMotor:
		return "Azimuth/RA Motor"
	case DeviceDecElMotor:
		return "Elevation/Dec Motor"
	case DeviceGps:
		return "GPS Unit"
	case DeviceRtc:
		return "RTC Unit"
	default:
		return fmt.Sprintf("Unknown Device (%d)", byte(d))
	}
}
