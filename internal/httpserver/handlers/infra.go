package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

const redisPingTimeout = 2 * time.Second

type componentStatus struct {
	OK             bool   `json:"ok"`
	ProgramsLoaded *int   `json:"programs_loaded,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type jobSummary struct {
	Running    bool   `json:"running"`
	Schedule   string `json:"schedule,omitempty"`
	LastStatus string `json:"last_status,omitempty"`
	LastRun    string `json:"last_run,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	Jobs       map[string]jobSummary      `json:"jobs,omitempty"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Catalog.Count()
		lastReload := d.Catalog.GetLastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"catalog": {
				OK:             d.Catalog.Loaded(),
				ProgramsLoaded: &count,
				LastReload:     lastReloadStr,
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
			Jobs:       jobSummaries(d),
		}, d.Logger)
	}
}

func determineMode(components map[string]componentStatus) string {
	if catalog, ok := components["catalog"]; ok && !catalog.OK {
		return "critical" // nothing to serve
	}
	if redis, ok := components["redis"]; ok && !redis.OK && redis.Mode != "disabled" {
		return "degraded" // no warm start, no run history
	}
	return "ok"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "no-warm-start",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := d.Redis.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "snapshot-and-history-unavailable",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}

func jobSummaries(d deps.Deps) map[string]jobSummary {
	if d.Jobs == nil {
		return nil
	}
	out := make(map[string]jobSummary)
	for _, st := range d.Jobs.Status() {
		js := jobSummary{Running: st.Running, Schedule: st.Schedule}
		if st.Last != nil {
			js.LastStatus = st.Last.Status
			js.LastRun = st.Last.StartedAt.Format(time.RFC3339)
			js.LastError = st.Last.Error
		}
		out[st.Name] = js
	}
	return out
}
