package version

// Build information, set at release time with
// -X github.com/arthur-debert/stowman/internal/version.<Name>=<value>
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
