package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/export"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

const errProgramNotFound = "Program not found"

type programsResponse struct {
	OK    bool              `json:"ok"`
	Count int               `json:"count"`
	Items []*domain.Program `json:"items"`
}

type liteResponse struct {
	OK    bool          `json:"ok"`
	Items []domain.Lite `json:"items"`
}

type facetsResponse struct {
	OK         bool     `json:"ok"`
	Categories []string `json:"categories"`
	Stages     []string `json:"stages"`
}

type programResponse struct {
	OK      bool            `json:"ok"`
	Program *domain.Program `json:"program"`
}

// Programs lists the catalog with q, category, stage, iowa and sort filters.
func Programs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := d.Catalog.Query(parseQuery(r))
		writeJSON(w, http.StatusOK, programsResponse{OK: true, Count: len(items), Items: items}, d.Logger)
	}
}

func parseQuery(r *http.Request) domain.Query {
	v := r.URL.Query()
	iowa := strings.ToLower(strings.TrimSpace(v.Get("iowa")))
	return domain.Query{
		Q:        strings.TrimSpace(v.Get("q")),
		Category: strings.TrimSpace(v.Get("category")),
		Stage:    strings.TrimSpace(v.Get("stage")),
		OnlyIowa: iowa == "1" || iowa == "true",
		Sort:     strings.ToLower(strings.TrimSpace(v.Get("sort"))),
	}
}

func ProgramsLite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, liteResponse{OK: true, Items: d.Catalog.Lite()}, d.Logger)
	}
}

func Facets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, stages := d.Catalog.Facets()
		if cats == nil {
			cats = []string{}
		}
		if stages == nil {
			stages = []string{}
		}
		writeJSON(w, http.StatusOK, facetsResponse{OK: true, Categories: cats, Stages: stages}, d.Logger)
	}
}

// Program returns one listed program.
func Program(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.Catalog.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, errProgramNotFound, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, programResponse{OK: true, Program: p}, d.Logger)
	}
}

// ProgramBrief downloads a plain-text summary of one program.
func ProgramBrief(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := d.Catalog.Get(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, errProgramNotFound, http.StatusNotFound)
			return
		}
		attachment(w, "text/plain; charset=utf-8", export.BriefFileName(p))
		if _, err := w.Write([]byte(export.Brief(p))); err != nil {
			d.Logger.Debug("failed to write brief",
				logger.String("program", p.ID),
				logger.Error(err))
		}
	}
}
