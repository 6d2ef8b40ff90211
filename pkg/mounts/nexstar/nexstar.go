// Package nexstar drives Celestron mounts speaking the NexStar hand
// controller protocol over a serial line.
package nexstar

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mlsorensen/gomount"
	"github.com/mlsorensen/gomount/pkg/mounts/nexstar/comms"
)

func init() {
	gomount.Register("NEXSTAR", func(port *gomount.FoundPort) (gomount.Mount, error) {
		return Connect(port.Path)
	})
}

// This line is the compile-time check. It will fail to compile if
// *NexStar ever stops satisfying the gomount.Mount interface.
var _ gomount.Mount = (*NexStar)(nil)

// NexStar talks to a hand controller over one exclusively-owned serial
// channel. It holds no motion state of its own; the mount is always the
// source of truth, so a goto is observed by polling GotoInProgress.
type NexStar struct {
	session *comms.Session
}

// New wraps an already-open serial channel configured at the protocol's
// line settings (9600 8N1).
func New(port comms.Port) *NexStar {
	return NewWithLogger(port, zerolog.Nop())
}

// NewWithLogger is New with wire-level TX/RX tracing on the given logger.
func NewWithLogger(port comms.Port, logger zerolog.Logger) *NexStar {
	return &NexStar{session: comms.NewSession(port, 0, logger)}
}

// Connect opens the named OS serial port and wraps it.
func Connect(path string) (*NexStar, error) {
	return ConnectWithLogger(path, zerolog.Nop())
}

// ConnectWithLogger is Connect with wire-level TX/RX tracing.
func ConnectWithLogger(path string, logger zerolog.Logger) (*NexStar, error) {
	session, err := comms.Open(path, 0, logger)
	if err != nil {
		return nil, err
	}
	return &NexStar{session: session}, nil
}

// Close releases the serial channel.
func (m *NexStar) Close() error {
	return m.session.Close()
}

// GetPositionRADec reads the current pointing position using the precise
// 32-bit get-position command.
func (m *NexStar) GetPositionRADec() (gomount.RADec, error) {
	payload, err := m.session.SendCommandExpect('e', nil, 17)
	if err != nil {
		return gomount.RADec{}, err
	}
	ra, dec, err := comms.DecodePair(payload)
	if err != nil {
		return gomount.RADec{}, err
	}
	return gomount.RADec{RA: ra, Dec: dec}, nil
}

// GetPositionAzEl reads the current pointing position in azimuth/elevation.
func (m *NexStar) GetPositionAzEl() (gomount.AzEl, error) {
	payload, err := m.session.SendCommandExpect('z', nil, 17)
	if err != nil {
		return gomount.AzEl{}, err
	}
	az, el, err := comms.DecodePair(payload)
	if err != nil {
		return gomount.AzEl{}, err
	}
	return gomount.AzEl{Az: az, El: el}, nil
}

// GotoRADec starts a move to an absolute RA/Dec coordinate. Will not work
// if the mount has not been aligned.
func (m *NexStar) GotoRADec(coord gomount.RADec) error {
	_, err := m.session.SendCommand('r', comms.EncodePair(coord.RA, coord.Dec))
	return err
}

// GotoAzEl starts a move to an absolute Az/El coordinate. On an unaligned
// mount the target is relative to the power-on orientation.
func (m *NexStar) GotoAzEl(coord gomount.AzEl) error {
	_, err := m.session.SendCommand('r', comms.EncodePair(coord.Az, coord.El))
	return err
}

// Sync tells the mount its current pointing equals the given coordinate,
// improving the accuracy of subsequent moves.
func (m *NexStar) Sync(coord gomount.RADec) error {
	_, err := m.session.SendCommand('s', comms.EncodePair(coord.RA, coord.Dec))
	return err
}

// GetTrackingMode reads the current tracking mode.
func (m *NexStar) GetTrackingMode() (gomount.TrackingMode, error) {
	payload, err := m.session.SendCommandExpect('t', nil, 1)
	if err != nil {
		return 0, err
	}

	switch payload[0] {
	case 0:
		return gomount.TrackingOff, nil
	case 1:
		return gomount.TrackingAzEl, nil
	case 2:
		return gomount.TrackingEQNorth, nil
	case 3:
		return gomount.TrackingEQSouth, nil
	default:
		return 0, fmt.Errorf("invalid tracking mode byte %d", payload[0])
	}
}

// SetTrackingMode sets the tracking mode.
func (m *NexStar) SetTrackingMode(mode gomount.TrackingMode) error {
	_, err := m.session.SendCommand('T', []byte{byte(mode)})
	return err
}

// slewRateBytes converts a slew rate in arcseconds/second to the mount
// format: the rate is multiplied by four and split into a high and low byte.
func slewRateBytes(rate uint16) (byte, byte) {
	scaled := uint32(rate) * 4
	return byte(scaled / 256), byte(scaled % 256)
}

func motorFor(axis gomount.SlewAxis) comms.Device {
	if axis == gomount.AxisDecEl {
		return comms.DeviceDecElMotor
	}
	return comms.DeviceAzRaMotor
}

// SlewVariable starts a continuous slew at a caller-chosen rate in
// arcseconds/second. Rate zero stops the axis.
func (m *NexStar) SlewVariable(axis gomount.SlewAxis, dir gomount.SlewDir, rate uint16) error {
	sub := byte(6)
	if dir == gomount.DirNegative {
		sub = 7
	}

	hi, lo := slewRateBytes(rate)
	return m.session.WritePassthrough(motorFor(axis), sub, []byte{hi, lo})
}

// SlewFixed starts a continuous slew at one of the protocol's predefined
// speeds. SlewRateStop stops the axis.
func (m *NexStar) SlewFixed(axis gomount.SlewAxis, dir gomount.SlewDir, rate gomount.SlewRate) error {
	sub := byte(36)
	if dir == gomount.DirNegative {
		sub = 37
	}

	return m.session.WritePassthrough(motorFor(axis), sub, []byte{byte(rate)})
}

// StopSlew halts the axis. The protocol has no dedicated stop opcode; a
// variable-rate slew at rate zero is the stop command, and some hardware
// only understands that form.
func (m *NexStar) StopSlew(axis gomount.SlewAxis) error {
	return m.SlewVariable(axis, gomount.DirPositive, 0)
}

// GetTime reads the hand controller's local date and time. The reply
// carries the civil time, a signed whole-hour UTC offset and a DST flag,
// which are composed into one timezone-aware instant and returned in UTC.
func (m *NexStar) GetTime() (time.Time, error) {
	payload, err := m.session.SendCommandExpect('h', nil, 8)
	if err != nil {
		return time.Time{}, err
	}
	return decodeDateTime(payload)
}

// decodeDateTime interprets the 8-byte time layout shared by the 'h' and
// 'H' commands: hour, minute, second, month, day, year-2000, signed UTC
// offset in hours, DST flag.
func decodeDateTime(payload []byte) (time.Time, error) {
	dst := payload[7]
	if dst != 0 && dst != 1 {
		return time.Time{}, fmt.Errorf("invalid daylight-saving flag byte %d", dst)
	}

	// The controller reports its offset already shifted while daylight
	// saving is active, so only standard time gets the extra hour.
	offset := int(int8(payload[6]))
	if dst == 0 {
		offset++
	}

	t := time.Date(
		2000+int(payload[5]), time.Month(payload[3]), int(payload[4]),
		int(payload[0]), int(payload[1]), int(payload[2]), 0,
		time.FixedZone("", offset*3600),
	)
	return t.UTC(), nil
}

// SetTime writes the hand controller's date and time in a single command.
// The time is sent in the zone it carries, with its whole-hour UTC offset;
// the DST flag is always written as zero since the offset already encodes
// the current shift.
func (m *NexStar) SetTime(t time.Time) error {
	_, offsetSeconds := t.Zone()

	_, err := m.session.SendCommand('H', []byte{
		byte(t.Hour()), byte(t.Minute()), byte(t.Second()),
		byte(t.Month()), byte(t.Day()), byte(t.Year() - 2000),
		byte(int8(offsetSeconds / 3600)), 0,
	})
	return err
}

// GetVersion returns the hand controller firmware version.
func (m *NexStar) GetVersion() (string, error) {
	payload, err := m.session.SendCommandExpect('V', nil, 2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", payload[0], payload[1]), nil
}

// deviceVersionSub is the passthrough sub-command every unit answers with
// its firmware version.
const deviceVersionSub = 254

// GetDeviceVersion returns the firmware version of an internal sub-device.
func (m *NexStar) GetDeviceVersion(dev gomount.SubDevice) (string, error) {
	payload, err := m.session.ReadPassthrough(comms.Device(dev), deviceVersionSub, 2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", payload[0], payload[1]), nil
}

// GetModel identifies the mount hardware. A byte outside the known model
// table is an error, never a default label.
func (m *NexStar) GetModel() (gomount.Model, error) {
	payload, err := m.session.SendCommandExpect('m', nil, 1)
	if err != nil {
		return 0, err
	}

	model, ok := gomount.ModelFromByte(payload[0])
	if !ok {
		return 0, fmt.Errorf("invalid model identifier %d", payload[0])
	}
	return model, nil
}

// Echo asks the controller to repeat a byte back, verifying the link.
func (m *NexStar) Echo(b byte) error {
	payload, err := m.session.SendCommandExpect('K', []byte{b}, 1)
	if err != nil {
		return err
	}
	if payload[0] != b {
		return fmt.Errorf("echo returned %#x, sent %#x", payload[0], b)
	}
	return nil
}

// IsAligned reports whether the mount has completed alignment.
func (m *NexStar) IsAligned() (bool, error) {
	payload, err := m.session.SendCommandExpect('J', nil, 1)
	if err != nil {
		return false, err
	}

	switch payload[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid alignment status byte %d", payload[0])
	}
}

// GotoInProgress reports whether a goto is currently executing. The reply
// is ASCII '0' or '1', unlike the raw bytes most status commands use.
func (m *NexStar) GotoInProgress() (bool, error) {
	payload, err := m.session.SendCommandExpect('L', nil, 1)
	if err != nil {
		return false, err
	}

	switch payload[0] {
	case '0':
		return false, nil
	case '1':
		return true, nil
	default:
		return false, fmt.Errorf("invalid goto status byte %d", payload[0])
	}
}

// CancelGoto aborts the goto currently in progress. The mount keeps
// tracking; it just stops moving toward the target.
func (m *NexStar) CancelGoto() error {
	payload, err := m.session.SendCommandExpect('Q', nil, 1)
	if err != nil {
		return err
	}
	if payload[0] != 0 {
		return fmt.Errorf("invalid cancel status byte %d", payload[0])
	}
	return nil
}

// Gps returns the GPS capability. Only the GPS Series carries the unit, so
// the accessor checks the model first rather than letting an unlinked query
// return garbage.
func (m *NexStar) Gps() (gomount.Gps, error) {
	model, err := m.GetModel()
	if err != nil {
		return nil, err
	}
	if !model.HasGps() {
		return nil, fmt.Errorf("%w: no GPS unit on model %s", gomount.ErrCapabilityUnsupported, model)
	}
	return &Gps{mount: m}, nil
}

// Rtc returns the real-time-clock capability. Presence is probed with the
// RTC unit's version query; a passthrough rejection means the hardware has
// no clock.
func (m *NexStar) Rtc() (gomount.Rtc, error) {
	if _, err := m.GetDeviceVersion(gomount.SubDeviceRtc); err != nil {
		return nil, fmt.Errorf("%w: %v", gomount.ErrCapabilityUnsupported, err)
	}
	return &Rtc{mount: m}, nil
}
