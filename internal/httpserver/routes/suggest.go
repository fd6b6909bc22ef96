package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/mw"
)

func init() { Register("intake", registerSuggest) }

func registerSuggest(r chi.Router, d deps.Deps) {
	limit := func(scope string, l config.RouteLimit) Middleware {
		return mw.RateLimit(mw.RateLimitConfig{
			Scope:        scope,
			Burst:        l.Burst,
			RefillPerMin: l.RefillPerMin,
			MaxEntries:   10000,
			TrustProxy:   d.TrustProxy,
			Logger:       d.Logger,
			Metrics:      d.Metrics,
			Now:          d.TimeNow,
		})
	}
	r.With(limit("suggest", d.SuggestLimit)).Post("/api/suggest", handlers.Suggest(d))
	r.With(limit("feedback", d.FeedbackLimit)).Post("/api/suggestions", handlers.Feedback(d))
}
