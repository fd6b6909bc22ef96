package deps

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/index"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
)

// SuggestionWriter files reader submissions in the suggestions database.
type SuggestionWriter interface {
	CreateSuggestion(ctx context.Context, sg *domain.Suggestion) (string, error)
}

// JobControl is the part of the job runner exposed over HTTP.
type JobControl interface {
	Trigger(name string) error
	Status() []scheduler.JobStatus
	Runs(name string) ([]*domain.JobRun, error)
}

// Pinger reports whether the snapshot cache is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on admin routes
	AllowedCIDRS []string // IPs allowed on admin and probe routes
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	SuggestLimit  config.RouteLimit
	FeedbackLimit config.RouteLimit

	Catalog     *index.MemoryIndex // served snapshot
	Suggestions SuggestionWriter   // nil when no suggestions database is configured
	Jobs        JobControl
	Redis       Pinger // nil when Redis is disabled
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	FillTop     int // rows in the fill-priority report
}

// Now returns the injected clock or time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
