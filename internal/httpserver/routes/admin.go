package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
)

func init() { Register("admin", registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	cidrs := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	hosts := mw.EnforceHost(d.AllowedHosts, d.Logger)

	r.With(cidrs).Get("/api/admin/fill-priority", handlers.FillPriority(d))
	if d.Jobs == nil {
		return
	}
	r.With(cidrs, hosts).Get("/api/admin/jobs", handlers.Jobs(d))
	r.With(cidrs, hosts).Get("/api/admin/jobs/{name}/runs", handlers.JobRuns(d))
	r.With(cidrs, hosts).Post("/api/admin/jobs/{name}", handlers.TriggerJob(d))
}
