package version

// Version is the current version of argo-analytics.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-analytics/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.3.0"

// CacheSchemaVersion is the layout version of the balance cache tables.
const CacheSchemaVersion = "1.0.0"

// GetVersion returns the current version of the library.
func GetVersion() string {
	return Version
}
