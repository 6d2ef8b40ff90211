// Package mock provides a simulated implementation of the gomount.Mount
// interface. It is intended for development and testing when a physical
// mount is not available.
package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/mlsorensen/gomount"
)

// This init function registers the MockMount with the central registry.
// To use it, you must explicitly import this package.
func init() {
	gomount.Register("MOCK", func(_ *gomount.FoundPort) (gomount.Mount, error) {
		return New(), nil
	})
}

// This line is the compile-time check. It will fail to compile if
// *MockMount ever stops satisfying the gomount.Mount interface.
var _ gomount.Mount = (*MockMount)(nil)

// MockMount is a simulated telescope mount. Goto moves complete after a
// settle period, continuous slews integrate their rate over elapsed time,
// and the simulated clock can be set and read like the real hand
// controller's.
type MockMount struct {
	mu sync.Mutex

	model    gomount.Model
	aligned  bool
	tracking gomount.TrackingMode

	pos gomount.RADec

	// goto state
	gotoStart  time.Time
	gotoFrom   gomount.RADec
	gotoTarget gomount.RADec
	gotoSettle time.Duration
	moving     bool

	// continuous slew, degrees/second per axis, signed
	slewRate   [2]float64
	slewMarked time.Time

	clockOffset time.Duration

	closed bool
}

// New creates a simulated Advanced VX-class mount (RTC, no GPS), aligned,
// with gotos that settle in two seconds.
func New() *MockMount {
	return &MockMount{
		model:      gomount.ModelAdvancedVX,
		aligned:    true,
		tracking:   gomount.TrackingEQNorth,
		pos:        gomount.RADec{RA: 120.0, Dec: 45.0},
		gotoSettle: 2 * time.Second,
		slewMarked: time.Now(),
	}
}

// NewWithModel creates a simulated mount reporting the given hardware model.
// A GPS Series model exposes the Gps capability with a linked receiver.
func NewWithModel(model gomount.Model) *MockMount {
	m := New()
	m.model = model
	return m
}

// SetGotoSettle changes how long a simulated goto takes to complete.
func (m *MockMount) SetGotoSettle(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotoSettle = d
}

// advance brings the simulated position up to date. Callers must hold m.mu.
func (m *MockMount) advance() {
	now := time.Now()

	if m.moving {
		elapsed := now.Sub(m.gotoStart)
		if elapsed >= m.gotoSettle {
			m.pos = m.gotoTarget
			m.moving = false
		} else {
			frac := float64(elapsed) / float64(m.gotoSettle)
			m.pos.RA = m.gotoFrom.RA + (m.gotoTarget.RA-m.gotoFrom.RA)*frac
			m.pos.Dec = m.gotoFrom.Dec + (m.gotoTarget.Dec-m.gotoFrom.Dec)*frac
		}
	}

	dt := now.Sub(m.slewMarked).Seconds()
	m.pos.RA += m.slewRate[gomount.AxisRAAz] * dt
	m.pos.Dec += m.slewRate[gomount.AxisDecEl] * dt
	m.slewMarked = now
}

func (m *MockMount) GetPositionRADec() (gomount.RADec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	return m.pos, nil
}

func (m *MockMount) GetPositionAzEl() (gomount.AzEl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	// The simulation does no frame transform; both queries report the same
	// pair of axis angles, which is enough for driving callers in tests.
	return gomount.AzEl{Az: m.pos.RA, El: m.pos.Dec}, nil
}

func (m *MockMount) GotoRADec(coord gomount.RADec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	m.gotoFrom = m.pos
	m.gotoTarget = coord
	m.gotoStart = time.Now()
	m.moving = true
	return nil
}

func (m *MockMount) GotoAzEl(coord gomount.AzEl) error {
	return m.GotoRADec(gomount.RADec{RA: coord.Az, Dec: coord.El})
}

func (m *MockMount) Sync(coord gomount.RADec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = coord
	return nil
}

func (m *MockMount) GetTrackingMode() (gomount.TrackingMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracking, nil
}

func (m *MockMount) SetTrackingMode(mode gomount.TrackingMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracking = mode
	return nil
}

func (m *MockMount) SlewVariable(axis gomount.SlewAxis, dir gomount.SlewDir, rate uint16) error {
	if axis > gomount.AxisDecEl {
		return fmt.Errorf("invalid slew axis %d", axis)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()

	degPerSec := float64(rate) / 3600.0
	if dir == gomount.DirNegative {
		degPerSec = -degPerSec
	}
	m.slewRate[axis] = degPerSec
	return nil
}

// fixedRates approximates the real hardware's predefined speeds in
// degrees/second, from stopped up to full slew.
var fixedRates = [10]float64{0, 0.0005, 0.002, 0.005, 0.015, 0.05, 0.15, 0.5, 1.5, 4.0}

func (m *MockMount) SlewFixed(axis gomount.SlewAxis, dir gomount.SlewDir, rate gomount.SlewRate) error {
	if axis > gomount.AxisDecEl {
		return fmt.Errorf("invalid slew axis %d", axis)
	}
	if int(rate) >= len(fixedRates) {
		return fmt.Errorf("invalid fixed slew rate %d", rate)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()

	degPerSec := fixedRates[rate]
	if dir == gomount.DirNegative {
		degPerSec = -degPerSec
	}
	m.slewRate[axis] = degPerSec
	return nil
}

func (m *MockMount) StopSlew(axis gomount.SlewAxis) error {
	return m.SlewVariable(axis, gomount.DirPositive, 0)
}

func (m *MockMount) GetTime() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Now().Add(m.clockOffset).UTC(), nil
}

func (m *MockMount) SetTime(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clockOffset = time.Until(t)
	return nil
}

func (m *MockMount) GetVersion() (string, error) {
	return "4.22", nil
}

func (m *MockMount) GetDeviceVersion(dev gomount.SubDevice) (string, error) {
	switch dev {
	case gomount.SubDeviceAzRaMotor, gomount.SubDeviceDecElMotor:
		return "7.11", nil
	case gomount.SubDeviceRtc:
		return "1.0", nil
	default:
		return "", fmt.Errorf("unknown sub-device %d", dev)
	}
}

func (m *MockMount) GetModel() (gomount.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model, nil
}

func (m *MockMount) Echo(b byte) error {
	return nil
}

func (m *MockMount) IsAligned() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aligned, nil
}

func (m *MockMount) GotoInProgress() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	return m.moving, nil
}

func (m *MockMount) CancelGoto() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance()
	m.moving = false
	return nil
}

func (m *MockMount) Gps() (gomount.Gps, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.model.HasGps() {
		return nil, fmt.Errorf("%w: no GPS unit on model %s", gomount.ErrCapabilityUnsupported, m.model)
	}
	return &mockGps{mount: m}, nil
}

func (m *MockMount) Rtc() (gomount.Rtc, error) {
	return &mockRtc{mount: m}, nil
}

func (m *MockMount) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type mockGps struct {
	mount *MockMount
}

func (g *mockGps) IsLinked() (bool, error) {
	return true, nil
}

func (g *mockGps) GetLocation() (float64, float64, error) {
	// A fixed observatory site.
	return 42.3601, 288.9420, nil
}

func (g *mockGps) GetDateTime() (time.Time, error) {
	return time.Now().UTC(), nil
}

func (g *mockGps) GetDeviceVersion() (string, error) {
	return "1.6", nil
}

type mockRtc struct {
	mount *MockMount
}

func (r *mockRtc) GetDateTime() (time.Time, error) {
	return r.mount.GetTime()
}

func (r *mockRtc) SetDateTime(t time.Time) error {
	return r.mount.SetTime(t)
}
