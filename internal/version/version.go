package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// UserAgent is sent on every outbound fetch made by the maintenance jobs.
func UserAgent() string {
	return fmt.Sprintf("Mozilla/5.0 (compatible; LaunchpadBot/%s; +https://github.com/MrSnakeDoc/launchpad)", Version)
}
