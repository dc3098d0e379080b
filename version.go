package lightnet

import (
	"fmt"
	"runtime"
)

// Build metadata. Version/GitCommit/BuildDate are variables so release
// builds can stamp them at link time:
//
//	go build -ldflags "-X github.com/aaguseynov/lightnet.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "v0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = runtime.Version()
)

// GetVersion formats the build metadata as a single line for banners and
// diagnostics output.
func GetVersion() string {
	return fmt.Sprintf("lightnet %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, GoVersion)
}

// GetVersionInfo exposes the same metadata as structured fields.
func GetVersionInfo() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
		"go_version": GoVersion,
	}
}
