// Package all is a convenience wrapper that registers all known mount
// implementations. Importing this package enables the gomount factory to
// find drivers for any supported mount family.
package all

// Import each implementation package for its side-effects (the init()
// function).
import (
	_ "github.com/mlsorensen/gomount/pkg/mounts/mock"
	_ "github.com/mlsorensen/gomount/pkg/mounts/nexstar"
	// When you add a [family] mount, you would add this line:
	// _ "github.com/mlsorensen/gomount/pkg/mounts/[family]"
)
