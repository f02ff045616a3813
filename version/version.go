// Package version holds the build-time version string, set via -ldflags the
// way determined-ai/determined's master/version package is.
package version

// Version is overridden at build time with -X github.com/mesosphere/uninstall-scheduler/version.Version=....
var Version = "unset"
