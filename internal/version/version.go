package version

// Version is the current version of tradewatch.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/tradewatch/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.3.0"

// ConfigSchemaVersion is the version of the YAML config layout this build reads.
const ConfigSchemaVersion = "1.0.0"

// GetVersion returns the current version of the application.
func GetVersion() string {
	return Version
}
