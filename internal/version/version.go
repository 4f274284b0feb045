// Package version reports the build version of xhsnote.
package version

import "runtime/debug"

// Set via -ldflags "-X github.com/longkey1/xhsnote/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Get returns the version string, preferring ldflags over module build info
func Get() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}

// GetFull returns version, commit and build date on one line
func GetFull() string {
	return "xhsnote version " + Get() + " (commit: " + Commit + ", built: " + Date + ")"
}

// UserAgent is sent on outbound requests
func UserAgent() string {
	return "xhsnote/" + Get()
}
