package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
)

func init() { Register("probes", registerProbes) }

// registerProbes leaves /healthz open for the orchestrator. Readiness,
// component status and metrics stay on the admin allow-list.
func registerProbes(r chi.Router, d deps.Deps) {
	cidrs := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/healthz", handlers.Healthz(d))
	r.With(cidrs).Get("/readyz", handlers.Readyz(d))
	r.With(cidrs).Get("/infra", handlers.Infra(d))
	r.With(cidrs).Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
