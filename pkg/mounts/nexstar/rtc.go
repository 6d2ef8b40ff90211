package nexstar

import (
	"time"

	"github.com/mlsorensen/gomount"
	"github.com/mlsorensen/gomount/pkg/mounts/nexstar/comms"
)

// RTC unit sub-commands. Reads and writes use separate codes.
const (
	rtcSubGetDate = 3
	rtcSubGetYear = 4
	rtcSubGetTime = 51
	rtcSubSetDate = 131
	rtcSubSetYear = 132
	rtcSubSetTime = 179
)

var _ gomount.Rtc = (*Rtc)(nil)

// Rtc reads and writes the mount's battery-backed clock through passthrough
// frames. Obtain it with NexStar.Rtc.
type Rtc struct {
	mount *NexStar
}

// GetDateTime reads the RTC. The clock is split across three passthrough
// reads (date, year, time of day); the composed instant is returned as UTC.
func (r *Rtc) GetDateTime() (time.Time, error) {
	date, err := r.mount.session.ReadPassthrough(comms.DeviceRtc, rtcSubGetDate, 2)
	if err != nil {
		return time.Time{}, err
	}
	year, err := r.mount.session.ReadPassthrough(comms.DeviceRtc, rtcSubGetYear, 2)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := r.mount.session.ReadPassthrough(comms.DeviceRtc, rtcSubGetTime, 3)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		int(year[0])<<8|int(year[1]), time.Month(date[0]), int(date[1]),
		int(clock[0]), int(clock[1]), int(clock[2]), 0, time.UTC,
	), nil
}

// SetDateTime writes the RTC as UTC. The protocol has no single
// set-datetime command, so the clock is written in three frames: month and
// day, then year, then time of day. A failure between frames leaves the
// clock inconsistent; the error reports which write failed so the caller
// can decide whether to re-issue the whole set.
func (r *Rtc) SetDateTime(t time.Time) error {
	t = t.UTC()

	err := r.mount.session.WritePassthrough(comms.DeviceRtc, rtcSubSetDate,
		[]byte{byte(t.Month()), byte(t.Day())})
	if err != nil {
		return err
	}

	year := t.Year()
	err = r.mount.session.WritePassthrough(comms.DeviceRtc, rtcSubSetYear,
		[]byte{byte(year >> 8), byte(year)})
	if err != nil {
		return err
	}

	return r.mount.session.WritePassthrough(comms.DeviceRtc, rtcSubSetTime,
		[]byte{byte(t.Hour()), byte(t.Minute()), byte(t.Second())})
}
