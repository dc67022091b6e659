package version

import "fmt"

// overridden at build time via -ldflags "-X ...".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

// FullVersion is the version string shown by the CLI.
var FullVersion = Version

func init() {
	if GitCommit != "" {
		FullVersion = fmt.Sprintf("%s (%s)", Version, GitCommit)
	}
}
