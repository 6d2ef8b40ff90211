package gomount

import (
	"log"
	"strings"

	"go.bug.st/serial/enumerator"
)

// FoundPort describes a candidate serial port a mount may be attached to.
type FoundPort struct {
	Path   string // OS device path, e.g. /dev/ttyUSB0 or COM3
	VID    string // USB vendor ID as uppercase hex, empty for non-USB ports
	PID    string // USB product ID as uppercase hex, empty for non-USB ports
	Serial string // USB serial number, if the bridge reports one
}

// UsbID is a vendor/product ID pair used to recognize a serial bridge.
type UsbID struct {
	VID string
	PID string
}

// knownBridges lists the USB serial bridges mounts are known to ship with.
// The Prolific PL2303GT is the adapter found in hand controller USB cables.
var knownBridges = []UsbID{
	{VID: "067B", PID: "23D3"},
}

// Scan enumerates serial ports and returns those whose USB IDs match a known
// mount serial bridge. Custom IDs can be supplied to extend the match list,
// e.g. for a third-party RS-232 adapter.
func Scan(customIDs ...UsbID) ([]FoundPort, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	ids := knownBridges
	if len(customIDs) > 0 {
		ids = customIDs
	}

	log.Printf("Scanning %d serial ports for known USB bridges...", len(ports))

	var found []FoundPort
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		for _, id := range ids {
			if strings.EqualFold(port.VID, id.VID) && strings.EqualFold(port.PID, id.PID) {
				log.Printf("    --> Found a match! Port: %s (VID %s PID %s)", port.Name, port.VID, port.PID)
				found = append(found, FoundPort{
					Path:   port.Name,
					VID:    strings.ToUpper(port.VID),
					PID:    strings.ToUpper(port.PID),
					Serial: port.SerialNumber,
				})
				break
			}
		}
	}

	log.Printf("Scan finished. Found %d candidate port(s).", len(found))
	return found, nil
}

// ScanAll enumerates every serial port on the system, USB or not, so a
// caller can present a manual selection list.
func ScanAll() ([]FoundPort, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	found := make([]FoundPort, 0, len(ports))
	for _, port := range ports {
		fp := FoundPort{Path: port.Name}
		if port.IsUSB {
			fp.VID = strings.ToUpper(port.VID)
			fp.PID = strings.ToUpper(port.PID)
			fp.Serial = port.SerialNumber
		}
		found = append(found, fp)
	}
	return found, nil
}
