package cli

import "fmt"

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const versionTemplate = "stepexport version {{.Version}}\n"

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
