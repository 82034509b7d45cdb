// Package misc keeps build time information about the program.
package misc

// Set by the linker: -X booknav/misc.version=... -X booknav/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "booknav"

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit the program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name used for logs and reports.
func GetAppName() string {
	return appName
}
