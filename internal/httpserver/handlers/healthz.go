package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CatalogLoaded bool    `json:"catalog_loaded"`
	Programs      int     `json:"programs"`
	Redis         string  `json:"redis"`
	RunningJobs   int     `json:"running_jobs"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz is liveness only: it is always 200 and never touches Redis or the
// database. Catalog and Redis fields are informational.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redis := "disabled"
		if d.Redis != nil {
			redis = "enabled"
		}
		running := 0
		if d.Jobs != nil {
			for _, st := range d.Jobs.Status() {
				if st.Running {
					running++
				}
			}
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
			CatalogLoaded: d.Catalog.Loaded(),
			Programs:      d.Catalog.Count(),
			Redis:         redis,
			RunningJobs:   running,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		}, d.Logger)
	}
}
