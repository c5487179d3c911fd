package app

// Build information populated via -ldflags at build time.
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// Version returns the build version with its commit.
func Version() string {
	return BuildVersion + " (" + BuildCommit + ", " + BuildDate + ")"
}
