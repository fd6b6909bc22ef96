package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("programs", registerPrograms) }

func registerPrograms(r chi.Router, d deps.Deps) {
	r.Get("/api/programs", handlers.Programs(d))
	r.Get("/api/programs/facets", handlers.Facets(d))
	r.Get("/api/programs-lite", handlers.ProgramsLite(d))
	r.Get("/api/program/{id}", handlers.Program(d))
	r.Get("/api/program/{id}/brief", handlers.ProgramBrief(d))
}
