package comms

import "errors"

var (
	// ErrTimeout means no reply bytes arrived within the response deadline.
	ErrTimeout = errors.New("timed out waiting for hand controller response")

	// ErrMalformedResponse means the reply was missing its '#' terminator or
	// its length did not match any outcome the command can produce.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrDeviceUnavailable means a passthrough frame addressed a sub-device
	// that is absent, or a sub-command the device rejects. This is expected
	// for optional hardware such as the GPS unit and is recoverable.
	ErrDeviceUnavailable = errors.New("device unavailable or command invalid")

	// ErrMalformedAngle means an angle field was not 8 bytes of ASCII hex.
	ErrMalformedAngle = errors.New("malformed angle field")

	// ErrResponseLength means a direct command's payload did not have the
	// exact length that opcode is documented to return.
	ErrResponseLength = errors.New("unexpected response length")
)
