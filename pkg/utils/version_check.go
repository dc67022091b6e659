package utils

import (
	"strings"

	"golang.org/x/mod/semver"
)

const (
	RequiredBackendVersion string = "v0.1.0"
)

// CheckBackendVersion reports whether the version announced by the backend
// health endpoint is compatible with this client. Patch and pre-release
// parts don't affect the wire format, so only major.minor is compared.
func CheckBackendVersion(toCheck string) bool {
	if !strings.HasPrefix(toCheck, "v") {
		toCheck = "v" + toCheck
	}
	res := semver.Compare(semver.MajorMinor(toCheck), semver.MajorMinor(RequiredBackendVersion))
	return res >= 0
}
