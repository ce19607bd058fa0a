package buildinfo

import "fmt"

// Set with -ldflags "-X github.com/v-gjy/redwood/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func String() string {
	return fmt.Sprintf("create-redwood-app %s (commit=%s, date=%s)", Version, Commit, Date)
}
