// Package version carries the CLI version and the build metadata stamped in
// at link time.
package version

import "github.com/fatih/color"

// Semver is the bare version string, for machine-readable output.
const Semver = "0.1.0-dev"

// Version is Semver with an accent for terminal output.
var Version = color.New(color.FgCyan, color.Bold).Sprint(Semver)

// Stamped via -ldflags, e.g.
//
//	-X tsconform/internal/version.GitCommit=$(git rev-parse --short HEAD)
var (
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)
