package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/handlers"
)

func init() { Register("export", registerExport) }

func registerExport(r chi.Router, d deps.Deps) {
	r.Get("/api/export/verified.csv", handlers.ExportCSV(d))
	r.Get("/api/export/verified.xlsx", handlers.ExportXLSX(d))
}
