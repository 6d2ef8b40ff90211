package nexstar

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mlsorensen/gomount"
)

// exchange is one scripted round trip against a fake hand controller.
type exchange struct {
	wantTx []byte
	reply  []byte
}

// scriptPort satisfies comms.Port with a fixed conversation, so driver
// methods can be checked byte-for-byte on the wire.
type scriptPort struct {
	t       *testing.T
	script  []exchange
	step    int
	pending []byte
}

func (p *scriptPort) Write(b []byte) (int, error) {
	if p.step >= len(p.script) {
		p.t.Fatalf("unexpected write beyond script: % X", b)
	}
	ex := p.script[p.step]
	p.step++
	if !bytes.Equal(b, ex.wantTx) {
		p.t.Fatalf("step %d: transmitted % X, expected % X", p.step, b, ex.wantTx)
	}
	p.pending = ex.reply
	return len(b), nil
}

func (p *scriptPort) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		return 0, nil
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *scriptPort) SetReadTimeout(time.Duration) error { return nil }
func (p *scriptPort) Close() error                       { return nil }

func newTestMount(t *testing.T, script []exchange) (*NexStar, *scriptPort) {
	port := &scriptPort{t: t, script: script}
	return New(port), port
}

func (p *scriptPort) assertDone() {
	if p.step != len(p.script) {
		p.t.Fatalf("conversation stopped after %d of %d exchanges", p.step, len(p.script))
	}
}

func TestGetPositionRADec(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'e'}, reply: []byte("62A66800,3FB41D00#")},
	})

	pos, err := m.GetPositionRADec()
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if math.Abs(pos.RA-138.7265968322754) > 1e-6 || math.Abs(pos.Dec-89.58314180374146) > 1e-6 {
		t.Fatalf("position %v", pos)
	}
	port.assertDone()
}

func TestGetPositionAzEl(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'z'}, reply: []byte("80000000,20000000#")},
	})

	pos, err := m.GetPositionAzEl()
	if err != nil {
		t.Fatalf("get position: %v", err)
	}
	if math.Abs(pos.Az-180) > 1e-6 || math.Abs(pos.El-45) > 1e-6 {
		t.Fatalf("position %v", pos)
	}
}

func TestGotoRADecWireFormat(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte("r62A66800,3FB41D00"), reply: []byte("#")},
	})

	err := m.GotoRADec(gomount.RADec{RA: 138.7265968322754, Dec: 89.58314180374146})
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	port.assertDone()
}

// Both coordinate systems share the goto opcode; the controller interprets
// the pair according to its alignment state.
func TestGotoAzElUsesSameOpcode(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte("r80000000,20000000"), reply: []byte("#")},
	})

	if err := m.GotoAzEl(gomount.AzEl{Az: 180, El: 45}); err != nil {
		t.Fatalf("goto: %v", err)
	}
	port.assertDone()
}

func TestSyncWireFormat(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte("s80000000,20000000"), reply: []byte("#")},
	})

	if err := m.Sync(gomount.RADec{RA: 180, Dec: 45}); err != nil {
		t.Fatalf("sync: %v", err)
	}
	port.assertDone()
}

func TestGetTrackingMode(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'t'}, reply: []byte{2, '#'}},
	})

	mode, err := m.GetTrackingMode()
	if err != nil {
		t.Fatalf("get tracking: %v", err)
	}
	if mode != gomount.TrackingEQNorth {
		t.Fatalf("mode %v", mode)
	}
}

func TestGetTrackingModeRejectsUnknownByte(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'t'}, reply: []byte{9, '#'}},
	})

	if _, err := m.GetTrackingMode(); err == nil {
		t.Fatal("expected an error for tracking byte 9")
	}
}

func TestSetTrackingModeWireFormat(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'T', 1}, reply: []byte("#")},
	})

	if err := m.SetTrackingMode(gomount.TrackingAzEl); err != nil {
		t.Fatalf("set tracking: %v", err)
	}
	port.assertDone()
}

// 1800 arcsec/s scales to 7200, which splits into 28 and 32.
func TestSlewVariableWireFormat(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 3, 16, 6, 28, 32, 0, 0}, reply: []byte("#")},
	})

	if err := m.SlewVariable(gomount.AxisRAAz, gomount.DirPositive, 1800); err != nil {
		t.Fatalf("slew: %v", err)
	}
	port.assertDone()
}

func TestSlewVariableNegativeDecAxis(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 3, 17, 7, 0, 100, 0, 0}, reply: []byte("#")},
	})

	if err := m.SlewVariable(gomount.AxisDecEl, gomount.DirNegative, 25); err != nil {
		t.Fatalf("slew: %v", err)
	}
	port.assertDone()
}

func TestSlewFixedWireFormat(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 2, 17, 36, 9, 0, 0, 0}, reply: []byte("#")},
	})

	if err := m.SlewFixed(gomount.AxisDecEl, gomount.DirPositive, gomount.SlewRate9); err != nil {
		t.Fatalf("slew: %v", err)
	}
	port.assertDone()
}

// Stopping is a variable-rate slew at rate zero; there is no separate
// opcode on the wire.
func TestStopSlewIsVariableRateZero(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 3, 16, 6, 0, 0, 0, 0}, reply: []byte("#")},
	})

	if err := m.StopSlew(gomount.AxisRAAz); err != nil {
		t.Fatalf("stop: %v", err)
	}
	port.assertDone()
}

func TestGetTime(t *testing.T) {
	// 10:30:00 on 2024-06-15, UTC-5 with daylight saving active.
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'h'}, reply: []byte{10, 30, 0, 6, 15, 24, 251, 1, '#'}},
	})

	got, err := m.GetTime()
	if err != nil {
		t.Fatalf("get time: %v", err)
	}
	want := time.Date(2024, time.June, 15, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("time %v, expected %v", got, want)
	}
}

// The controller bakes the daylight shift into the reported offset, so
// standard time gets one extra hour during decode.
func TestDecodeDateTimeStandardTimeOffset(t *testing.T) {
	got, err := decodeDateTime([]byte{10, 30, 0, 6, 15, 24, 251, 0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("time %v, expected %v", got, want)
	}
}

func TestDecodeDateTimeRejectsBadDstFlag(t *testing.T) {
	if _, err := decodeDateTime([]byte{10, 30, 0, 6, 15, 24, 251, 2}); err == nil {
		t.Fatal("expected an error for daylight-saving byte 2")
	}
}

func TestSetTimeWireFormat(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'H', 10, 30, 0, 6, 15, 24, 251, 0}, reply: []byte("#")},
	})

	local := time.Date(2024, time.June, 15, 10, 30, 0, 0, time.FixedZone("", -5*3600))
	if err := m.SetTime(local); err != nil {
		t.Fatalf("set time: %v", err)
	}
	port.assertDone()
}

func TestGetVersion(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'V'}, reply: []byte{4, 22, '#'}},
	})

	v, err := m.GetVersion()
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	if v != "4.22" {
		t.Fatalf("version %q", v)
	}
}

func TestGetDeviceVersion(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 1, 17, 254, 0, 0, 0, 2}, reply: []byte{7, 11, '#'}},
	})

	v, err := m.GetDeviceVersion(gomount.SubDeviceDecElMotor)
	if err != nil {
		t.Fatalf("get device version: %v", err)
	}
	if v != "7.11" {
		t.Fatalf("version %q", v)
	}
}

func TestGetModel(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'m'}, reply: []byte{20, '#'}},
	})

	model, err := m.GetModel()
	if err != nil {
		t.Fatalf("get model: %v", err)
	}
	if model != gomount.ModelAdvancedVX {
		t.Fatalf("model %v", model)
	}
}

func TestGetModelRejectsUnknownByte(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'m'}, reply: []byte{99, '#'}},
	})

	if _, err := m.GetModel(); err == nil {
		t.Fatal("expected an error for model byte 99")
	}
}

func TestEcho(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte("Kx"), reply: []byte("x#")},
	})

	if err := m.Echo('x'); err != nil {
		t.Fatalf("echo: %v", err)
	}
}

func TestEchoMismatch(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte("Kx"), reply: []byte("y#")},
	})

	if err := m.Echo('x'); err == nil {
		t.Fatal("expected an error for a mismatched echo byte")
	}
}

func TestIsAligned(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'J'}, reply: []byte{1, '#'}},
	})

	aligned, err := m.IsAligned()
	if err != nil {
		t.Fatalf("is aligned: %v", err)
	}
	if !aligned {
		t.Fatal("expected aligned")
	}
}

// Goto status is reported as ASCII digits, unlike the raw bytes of the
// other status commands.
func TestGotoInProgressAsciiStatus(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'L'}, reply: []byte("1#")},
		{wantTx: []byte{'L'}, reply: []byte("0#")},
		{wantTx: []byte{'L'}, reply: []byte{1, '#'}},
	})

	moving, err := m.GotoInProgress()
	if err != nil || !moving {
		t.Fatalf("expected in progress, got %v, %v", moving, err)
	}
	moving, err = m.GotoInProgress()
	if err != nil || moving {
		t.Fatalf("expected idle, got %v, %v", moving, err)
	}
	if _, err = m.GotoInProgress(); err == nil {
		t.Fatal("expected an error for a raw status byte")
	}
}

func TestCancelGoto(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'Q'}, reply: []byte{0, '#'}},
	})

	if err := m.CancelGoto(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestGpsRefusedWithoutGpsHardware(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'m'}, reply: []byte{20, '#'}},
	})

	_, err := m.Gps()
	if !errors.Is(err, gomount.ErrCapabilityUnsupported) {
		t.Fatalf("expected ErrCapabilityUnsupported, got %v", err)
	}
}

func TestGpsLocation(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'m'}, reply: []byte{1, '#'}},
		{wantTx: []byte{'P', 1, 176, 55, 0, 0, 0, 1}, reply: []byte{1, '#'}},
		{wantTx: []byte{'P', 1, 176, 1, 0, 0, 0, 3}, reply: []byte{0x20, 0, 0, '#'}},
		{wantTx: []byte{'P', 1, 176, 2, 0, 0, 0, 3}, reply: []byte{0x80, 0, 0, '#'}},
	})

	gps, err := m.Gps()
	if err != nil {
		t.Fatalf("gps capability: %v", err)
	}
	lat, lon, err := gps.GetLocation()
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if math.Abs(lat-45) > 1e-4 || math.Abs(lon-180) > 1e-4 {
		t.Fatalf("location %v, %v", lat, lon)
	}
	port.assertDone()
}

func TestGpsLocationRefusedWhenUnlinked(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'m'}, reply: []byte{1, '#'}},
		{wantTx: []byte{'P', 1, 176, 55, 0, 0, 0, 1}, reply: []byte{0, '#'}},
	})

	gps, err := m.Gps()
	if err != nil {
		t.Fatalf("gps capability: %v", err)
	}
	if _, _, err := gps.GetLocation(); err == nil {
		t.Fatal("expected a refusal without a satellite fix")
	}
}

func TestGpsDateTime(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'m'}, reply: []byte{1, '#'}},
		{wantTx: []byte{'P', 1, 176, 55, 0, 0, 0, 1}, reply: []byte{1, '#'}},
		{wantTx: []byte{'P', 1, 176, 3, 0, 0, 0, 2}, reply: []byte{6, 15, '#'}},
		{wantTx: []byte{'P', 1, 176, 4, 0, 0, 0, 2}, reply: []byte{7, 232, '#'}},
		{wantTx: []byte{'P', 1, 176, 51, 0, 0, 0, 3}, reply: []byte{15, 30, 0, '#'}},
	})

	gps, err := m.Gps()
	if err != nil {
		t.Fatalf("gps capability: %v", err)
	}
	got, err := gps.GetDateTime()
	if err != nil {
		t.Fatalf("get datetime: %v", err)
	}
	want := time.Date(2024, time.June, 15, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("time %v, expected %v", got, want)
	}
}

// A passthrough rejection on the RTC version probe means the hardware has
// no clock, surfaced as a capability refusal.
func TestRtcRefusedWhenAbsent(t *testing.T) {
	m, _ := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 1, 178, 254, 0, 0, 0, 2}, reply: []byte{0, 0, 0, '#'}},
	})

	_, err := m.Rtc()
	if !errors.Is(err, gomount.ErrCapabilityUnsupported) {
		t.Fatalf("expected ErrCapabilityUnsupported, got %v", err)
	}
}

func TestRtcGetDateTime(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 1, 178, 254, 0, 0, 0, 2}, reply: []byte{1, 0, '#'}},
		{wantTx: []byte{'P', 1, 178, 3, 0, 0, 0, 2}, reply: []byte{6, 15, '#'}},
		{wantTx: []byte{'P', 1, 178, 4, 0, 0, 0, 2}, reply: []byte{7, 232, '#'}},
		{wantTx: []byte{'P', 1, 178, 51, 0, 0, 0, 3}, reply: []byte{15, 30, 0, '#'}},
	})

	rtc, err := m.Rtc()
	if err != nil {
		t.Fatalf("rtc capability: %v", err)
	}
	got, err := rtc.GetDateTime()
	if err != nil {
		t.Fatalf("get datetime: %v", err)
	}
	want := time.Date(2024, time.June, 15, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("time %v, expected %v", got, want)
	}
	port.assertDone()
}

func TestRtcSetDateTimeThreeFrames(t *testing.T) {
	m, port := newTestMount(t, []exchange{
		{wantTx: []byte{'P', 1, 178, 254, 0, 0, 0, 2}, reply: []byte{1, 0, '#'}},
		{wantTx: []byte{'P', 3, 178, 131, 6, 15, 0, 0}, reply: []byte("#")},
		{wantTx: []byte{'P', 3, 178, 132, 7, 232, 0, 0}, reply: []byte("#")},
		{wantTx: []byte{'P', 4, 178, 179, 15, 30, 0, 0}, reply: []byte("#")},
	})

	rtc, err := m.Rtc()
	if err != nil {
		t.Fatalf("rtc capability: %v", err)
	}
	if err := rtc.SetDateTime(time.Date(2024, time.June, 15, 15, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("set datetime: %v", err)
	}
	port.assertDone()
}
