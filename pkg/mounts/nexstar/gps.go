package nexstar

import (
	"fmt"
	"time"

	"github.com/mlsorensen/gomount"
	"github.com/mlsorensen/gomount/pkg/mounts/nexstar/comms"
)

// GPS unit sub-commands.
const (
	gpsSubLatitude  = 1
	gpsSubLongitude = 2
	gpsSubDate      = 3
	gpsSubYear      = 4
	gpsSubTime      = 51
	gpsSubLinked    = 55
)

var _ gomount.Gps = (*Gps)(nil)

// Gps reads the optional GPS receiver through passthrough frames. Obtain it
// with NexStar.Gps, which gates on the hardware model.
type Gps struct {
	mount *NexStar
}

// IsLinked reports whether the receiver has a satellite fix.
func (g *Gps) IsLinked() (bool, error) {
	payload, err := g.mount.session.ReadPassthrough(comms.DeviceGps, gpsSubLinked, 1)
	if err != nil {
		return false, err
	}
	return payload[0] != 0, nil
}

// angle24 converts a 24-bit big-endian fraction of a revolution to degrees.
func angle24(b []byte) float64 {
	raw := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return float64(raw) / float64(1<<24) * 360.0
}

// GetLocation returns the GPS latitude and longitude in degrees. An
// unlinked receiver reports garbage coordinates, so the fix is checked
// first and the call refused without one.
func (g *Gps) GetLocation() (float64, float64, error) {
	linked, err := g.IsLinked()
	if err != nil {
		return 0, 0, err
	}
	if !linked {
		return 0, 0, fmt.Errorf("GPS unit is not linked")
	}

	latRaw, err := g.mount.session.ReadPassthrough(comms.DeviceGps, gpsSubLatitude, 3)
	if err != nil {
		return 0, 0, err
	}
	lonRaw, err := g.mount.session.ReadPassthrough(comms.DeviceGps, gpsSubLongitude, 3)
	if err != nil {
		return 0, 0, err
	}

	return angle24(latRaw), angle24(lonRaw), nil
}

// GetDateTime returns the GPS date and time in UTC. Requires a satellite
// fix for the same reason as GetLocation.
func (g *Gps) GetDateTime() (time.Time, error) {
	linked, err := g.IsLinked()
	if err != nil {
		return time.Time{}, err
	}
	if !linked {
		return time.Time{}, fmt.Errorf("GPS unit is not linked")
	}

	date, err := g.mount.session.ReadPassthrough(comms.DeviceGps, gpsSubDate, 2)
	if err != nil {
		return time.Time{}, err
	}
	year, err := g.mount.session.ReadPassthrough(comms.DeviceGps, gpsSubYear, 2)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := g.mount.session.ReadPassthrough(comms.DeviceGps, gpsSubTime, 3)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		int(year[0])<<8|int(year[1]), time.Month(date[0]), int(date[1]),
		int(clock[0]), int(clock[1]), int(clock[2]), 0, time.UTC,
	), nil
}

// GetDeviceVersion returns the GPS unit firmware version.
func (g *Gps) GetDeviceVersion() (string, error) {
	payload, err := g.mount.session.ReadPassthrough(comms.DeviceGps, deviceVersionSub, 2)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", payload[0], payload[1]), nil
}
