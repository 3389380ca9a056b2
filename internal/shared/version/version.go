// Package version provides utilities for semantic version handling and
// build-time version information.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Build information, injected via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo returns a single-line description of the running binary.
func BuildInfo() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	if version == "" {
		return ""
	}
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// Canonical strips the "v" prefix after normalizing, producing the storage
// form used throughout the registry. Examples: "v1.2.3" -> "1.2.3",
// " 1.2.3 " -> "1.2.3"
func Canonical(version string) string {
	return strings.TrimPrefix(Normalize(version), "v")
}

// IsValid reports whether the string is a valid semantic version, with or
// without the "v" prefix.
func IsValid(version string) bool {
	return semver.IsValid(Normalize(version))
}

// Compare orders two version strings. Returns -1 if a < b, 0 if equal,
// +1 if a > b. Inputs may carry or omit the "v" prefix.
func Compare(a, b string) int {
	return semver.Compare(Normalize(a), Normalize(b))
}

// HasNewerVersion checks if latestVersion is newer than currentVersion using semver.
// Returns true if an update is available.
func HasNewerVersion(currentVersion, latestVersion string) bool {
	// If latest version is unknown, no update available
	if latestVersion == "" {
		return false
	}

	// If current version is empty or "dev", always suggest update
	if currentVersion == "" || currentVersion == "dev" {
		return true
	}

	current := Normalize(currentVersion)
	latest := Normalize(latestVersion)

	// Validate both versions are valid semver
	if !semver.IsValid(current) {
		// Current version is not valid semver (e.g., "dev", "unknown")
		// Suggest update to get a proper release version
		return true
	}
	if !semver.IsValid(latest) {
		// Latest version is not valid semver, can't compare
		return false
	}

	// semver.Compare returns:
	// -1 if current < latest (update available)
	//  0 if current == latest (no update)
	// +1 if current > latest (current is newer, e.g., dev build)
	return semver.Compare(current, latest) < 0
}
