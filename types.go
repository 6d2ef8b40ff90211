package gomount

import (
	"errors"
	"fmt"
)

// ErrCapabilityUnsupported indicates the connected hardware does not carry
// an optional sub-device (GPS, RTC) that a capability accessor asked for.
var ErrCapabilityUnsupported = errors.New("capability not supported by this hardware")

// RADec is an equatorial coordinate pair in degrees.
type RADec struct {
	RA  float64
	Dec float64
}

func (c RADec) String() string {
	return fmt.Sprintf("RA %.6f° Dec %.6f°", c.RA, c.Dec)
}

// AzEl is a horizontal coordinate pair in degrees.
type AzEl struct {
	Az float64
	El float64
}

func (c AzEl) String() string {
	return fmt.Sprintf("Az %.6f° El %.6f°", c.Az, c.El)
}

// TrackingMode selects how (and whether) the mount compensates for the
// sky's apparent motion.
type TrackingMode uint8

const (
	TrackingOff     TrackingMode = 0
	TrackingAzEl    TrackingMode = 1
	TrackingEQNorth TrackingMode = 2
	TrackingEQSouth TrackingMode = 3
)

func (m TrackingMode) String() string {
	switch m {
	case TrackingOff:
		return "Off"
	case TrackingAzEl:
		return "Az/El"
	case TrackingEQNorth:
		return "EQ North"
	case TrackingEQSouth:
		return "EQ South"
	default:
		return fmt.Sprintf("Unknown Mode (%d)", uint8(m))
	}
}

// SlewAxis names one of the mount's two mechanical axes.
type SlewAxis uint8

const (
	AxisRAAz  SlewAxis = 0 // right ascension / azimuth axis
	AxisDecEl SlewAxis = 1 // declination / elevation axis
)

func (a SlewAxis) String() string {
	switch a {
	case AxisRAAz:
		return "RA/Az"
	case AxisDecEl:
		return "Dec/El"
	default:
		return fmt.Sprintf("Unknown Axis (%d)", uint8(a))
	}
}

// SlewDir is the direction of a continuous slew along an axis.
type SlewDir uint8

const (
	DirPositive SlewDir = 0
	DirNegative SlewDir = 1
)

func (d SlewDir) String() string {
	if d == DirNegative {
		return "negative"
	}
	return "positive"
}

// SlewRate is one of the ten predefined speeds for a fixed-rate slew.
// SlewRateStop halts the axis.
type SlewRate uint8

const (
	SlewRateStop SlewRate = 0
	SlewRate1    SlewRate = 1
	SlewRate2    SlewRate = 2
	SlewRate3    SlewRate = 3
	SlewRate4    SlewRate = 4
	SlewRate5    SlewRate = 5
	SlewRate6    SlewRate = 6
	SlewRate7    SlewRate = 7
	SlewRate8    SlewRate = 8
	SlewRate9    SlewRate = 9
)

// SubDevice names an internal unit reachable with a version query through
// Mount.GetDeviceVersion. The GPS unit is addressed through the Gps
// capability instead.
type SubDevice uint8

const (
	SubDeviceAzRaMotor  SubDevice = 16
	SubDeviceDecElMotor SubDevice = 17
	SubDeviceRtc        SubDevice = 178
)

func (d SubDevice) String() string {
	switch d {
	case SubDeviceAzRaMotor:
		return "Azimuth/RA Motor"
	case SubDeviceDecElMotor:
		return "Elevation/Dec Motor"
	case SubDeviceRtc:
		return "RTC Unit"
	default:
		return fmt.Sprintf("Unknown Device (%d)", uint8(d))
	}
}

// Model identifies the mount hardware reported by the hand controller.
// The set is closed; decoding a byte outside it is an error.
type Model uint8

const (
	ModelGPSSeries  Model = 1
	ModelISeries    Model = 3
	ModelISeriesSE  Model = 4
	ModelCGE        Model = 5
	ModelAdvancedGT Model = 6
	ModelSLT        Model = 7
	ModelCPC        Model = 9
	ModelGT         Model = 10
	Model45SE       Model = 11
	Model68SE       Model = 12
	ModelCGEM       Model = 14
	ModelAdvancedVX Model = 20
	ModelEvolution  Model = 22
)

func (m Model) String() string {
	switch m {
	case ModelGPSSeries:
		return "GPS Series"
	case ModelISeries:
		return "i-Series"
	case ModelISeriesSE:
		return "i-Series SE"
	case ModelCGE:
		return "CGE"
	case ModelAdvancedGT:
		return "Advanced GT"
	case ModelSLT:
		return "SLT"
	case ModelCPC:
		return "CPC"
	case ModelGT:
		return "GT"
	case Model45SE:
		return "4/5 SE"
	case Model68SE:
		return "6/8 SE"
	case ModelCGEM:
		return "CGEM"
	case ModelAdvancedVX:
		return "Advanced VX"
	case ModelEvolution:
		return "Evolution"
	default:
		return fmt.Sprintf("Unknown Model (%d)", uint8(m))
	}
}

// knownModels is the closed decode table for the 'm' command.
var knownModels = map[uint8]Model{
	1: ModelGPSSeries, 3: ModelISeries, 4: ModelISeriesSE, 5: ModelCGE,
	6: ModelAdvancedGT, 7: ModelSLT, 9: ModelCPC, 10: ModelGT,
	11: Model45SE, 12: Model68SE, 14: ModelCGEM, 20: ModelAdvancedVX,
	22: ModelEvolution,
}

// ModelFromByte maps a wire byte to a Model, reporting whether the byte is
// in the known hardware table.
func ModelFromByte(b uint8) (Model, bool) {
	m, ok := knownModels[b]
	return m, ok
}

// HasGps reports whether this hardware variant carries a GPS unit.
func (m Model) HasGps() bool {
	return m == ModelGPSSeries
}
