package version

import "fmt"

var (
	// semver and revision are overridden at release time through -ldflags
	semver   = "0.3.0"
	revision = "unknown"
)

// Get return the version
func Get() string {
	return semver
}

func Commit() string {
	return revision
}

// UserAgent is sent with every outbound request so node operators and the
// registry can tell our traffic apart.
func UserAgent() string {
	return fmt.Sprintf("txdecode/%s (%s)", semver, revision)
}
