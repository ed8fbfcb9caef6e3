// Package buildinfo carries release metadata set at link time.
package buildinfo

// Set with -ldflags "-X" for release builds; empty in local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// UserAgent identifies the client in outgoing requests.
func UserAgent() string {
	if Version == "" {
		return "ntn/devel"
	}
	return "ntn/" + Version
}
