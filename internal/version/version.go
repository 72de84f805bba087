// Package version records build metadata for the cinder CLI.
package version

import "github.com/fatih/color"

// GitCommit and BuildDate are meant to be stamped at build time via
// -ldflags; both stay empty in plain `go build` binaries.
var (
	GitCommit = ""
	BuildDate = ""
)

// Version is the semantic version with the release triple highlighted.
// fatih/color drops the escape codes itself when output is not a
// terminal, so the string is safe to print anywhere.
var Version = color.New(color.FgCyan, color.Bold).Sprint("0.1.0") + "-dev"
