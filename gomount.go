package gomount

import (
	"fmt"
	"sync"
	"time"
)

// Mount is the generic interface for a computerized telescope mount.
// Implementations of this interface handle the command protocol for a
// specific mount family. All calls are synchronous round trips to the
// hand controller; none of them retry internally.
type Mount interface {
	// GetPositionRADec reads the current pointing position in right
	// ascension and declination degrees.
	GetPositionRADec() (RADec, error)

	// GetPositionAzEl reads the current pointing position in azimuth and
	// elevation degrees.
	GetPositionAzEl() (AzEl, error)

	// GotoRADec starts a slew to an absolute RA/Dec coordinate. The move is
	// executed asynchronously by the mount; poll GotoInProgress to observe
	// completion.
	GotoRADec(coord RADec) error

	// GotoAzEl starts a slew to an absolute Az/El coordinate.
	GotoAzEl(coord AzEl) error

	// Sync recalibrates the mount's internal position estimate to the given
	// coordinate. Upstream documentation for this command is thin; treat it
	// as best-effort.
	Sync(coord RADec) error

	GetTrackingMode() (TrackingMode, error)
	SetTrackingMode(mode TrackingMode) error

	// SlewVariable starts a continuous slew on one axis at a user-specified
	// rate in arcseconds/second. A rate of zero stops the axis.
	SlewVariable(axis SlewAxis, dir SlewDir, rate uint16) error

	// SlewFixed starts a continuous slew at one of the protocol's ten
	// predefined speeds. SlewRateStop stops the axis.
	SlewFixed(axis SlewAxis, dir SlewDir, rate SlewRate) error

	// StopSlew halts motion on the given axis.
	StopSlew(axis SlewAxis) error

	// GetTime reads the hand controller's local date and time, including
	// its UTC offset and DST flag, as a timezone-aware time.Time.
	GetTime() (time.Time, error)

	// SetTime writes the hand controller's date, time, UTC offset and DST
	// flag in a single command.
	SetTime(t time.Time) error

	// GetVersion returns the hand controller firmware version, "major.minor".
	GetVersion() (string, error)

	// GetDeviceVersion returns the firmware version of an internal
	// sub-device (motor controllers, RTC). The GPS unit's version is read
	// through the Gps capability instead.
	GetDeviceVersion(dev SubDevice) (string, error)

	// GetModel identifies the mount hardware. Bytes outside the known model
	// table are an error, never a default.
	GetModel() (Model, error)

	// Echo asks the hand controller to repeat a byte back, as a link check.
	Echo(b byte) error

	// IsAligned reports whether the mount has completed its star alignment.
	IsAligned() (bool, error)

	// GotoInProgress reports whether a goto is currently executing.
	GotoInProgress() (bool, error)

	// CancelGoto aborts the goto currently in progress.
	CancelGoto() error

	// Gps returns the GPS capability if the hardware has a GPS unit, or an
	// error wrapping ErrCapabilityUnsupported if it does not.
	Gps() (Gps, error)

	// Rtc returns the real-time-clock capability if the hardware has an RTC
	// unit, or an error wrapping ErrCapabilityUnsupported if it does not.
	Rtc() (Rtc, error)

	// Close releases the underlying serial channel.
	Close() error
}

// Gps is the optional GPS receiver capability. Only some hardware variants
// carry a GPS unit; obtain this through Mount.Gps.
type Gps interface {
	// IsLinked reports whether the GPS receiver has a satellite fix.
	IsLinked() (bool, error)

	// GetLocation returns latitude and longitude in degrees. It refuses to
	// read an unlinked receiver, which would return garbage.
	GetLocation() (lat float64, lon float64, err error)

	// GetDateTime returns the GPS date and time in UTC. Like GetLocation it
	// requires a satellite fix.
	GetDateTime() (time.Time, error)

	// GetDeviceVersion returns the GPS unit firmware version.
	GetDeviceVersion() (string, error)
}

// Rtc is the optional battery-backed real-time-clock capability.
type Rtc interface {
	// GetDateTime reads the RTC date and time (UTC).
	GetDateTime() (time.Time, error)

	// SetDateTime writes the RTC. The protocol has no single set-datetime
	// command, so this issues three separate writes (date, year, time); a
	// failure partway through leaves the clock inconsistent and the caller
	// must decide whether to re-issue.
	SetDateTime(t time.Time) error
}

// --- Implementation Registry ---

// Factory is a function that creates a new Mount instance for a discovered
// or explicitly named serial port.
type Factory func(*FoundPort) (Mount, error)

var (
	registry = make(map[string]Factory)
	regLock  = sync.RWMutex{}
)

// Register makes a mount implementation available under a driver name.
// This function should be called from the init() function of the
// implementation's package.
func Register(name string, factory Factory) {
	regLock.Lock()
	defer regLock.Unlock()

	if _, found := registry[name]; found {
		fmt.Printf("warning: mount implementation '%s' is being overwritten\n", name)
	}
	registry[name] = factory
}

// New finds a registered factory for the given driver name and creates a
// Mount connected to the given port.
// Example: gomount.New("NEXSTAR", &gomount.FoundPort{Path: "/dev/ttyUSB0"})
func New(driver string, port *FoundPort) (Mount, error) {
	regLock.RLock()
	factory, found := registry[driver]
	regLock.RUnlock()

	if !found {
		return nil, fmt.Errorf("no implementation registered for driver '%s'", driver)
	}

	return factory(port)
}

// Drivers returns the names of all registered mount implementations.
func Drivers() []string {
	regLock.RLock()
	defer regLock.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
