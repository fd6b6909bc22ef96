package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Programs int  `json:"programs"`
}

// Readyz is ready once a catalog snapshot is installed, even an empty one.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		ready := d.Catalog.Loaded()
		if !ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: ready, Programs: d.Catalog.Count()}, d.Logger)
	}
}
