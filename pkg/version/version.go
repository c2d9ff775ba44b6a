// Package version holds build version information for osmprint.
package version

import "fmt"

// Build information, overridable at link time with
// -ldflags "-X github.com/NERVsystems/osmprint/pkg/version.BuildVersion=..."
var (
	BuildVersion = "0.1.0"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// String returns the full version string.
func String() string {
	return fmt.Sprintf("osmprint %s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
