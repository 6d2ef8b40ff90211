package comms

import (
	"fmt"
	"strconv"
)

// rev is one full revolution in the mount's integer angle domain. Angles on
// the wire are 32-bit fractions of a revolution, printed as 8 uppercase hex
// digits.
const rev = 1 << 32

// ParseAngle parses one 8-byte ASCII-hex angle field.
func ParseAngle(field []byte) (int64, error) {
	v, err := strconv.ParseInt(string(field), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAngle, field)
	}
	return v, nil
}

// AngleToDegrees converts the mount integer angle format to degrees.
func AngleToDegrees(a int64) float64 {
	return float64(a) / rev * 360.0
}

// DegreesToAngle converts degrees to the mount integer angle format,
// truncating toward zero. There is no range clamp: re-encoding as a
// fixed-width hex field takes the value modulo 2^32, so out-of-range degrees
// wrap. Callers should treat the wrap as documented behavior.
func DegreesToAngle(deg float64) int64 {
	return int64(deg / 360.0 * rev)
}

// DecodePair unpacks a position payload: two 8-hex-digit angle fields with a
// separator at offset 8. The separator byte is position-skipped and its
// value never checked, matching the hand controller's own leniency.
func DecodePair(msg []byte) (float64, float64, error) {
	if len(msg) < 17 {
		return 0, 0, fmt.Errorf("%w: position payload %q is %d bytes, expected 17", ErrResponseLength, msg, len(msg))
	}

	a, err := ParseAngle(msg[0:8])
	if err != nil {
		return 0, 0, err
	}
	b, err := ParseAngle(msg[9:17])
	if err != nil {
		return 0, 0, err
	}

	return AngleToDegrees(a), AngleToDegrees(b), nil
}

// EncodePair packs two degree values into the wire format: uppercase hex,
// zero-padded to 8 characters, comma-separated.
func EncodePair(a, b float64) []byte {
	return fmt.Appendf(nil, "%08X,%08X", uint32(DegreesToAngle(a)), uint32(DegreesToAngle(b)))
}
