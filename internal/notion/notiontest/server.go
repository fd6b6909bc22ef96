// Package notiontest runs an in-memory Notion API for tests. It understands
// the database, query and page endpoints the directory store calls.
package notiontest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/notion"
)

// Server holds databases and their rows.
type Server struct {
	srv *httptest.Server

	mu      sync.Mutex
	dbs     map[string]notion.Database
	rows    map[string][]notion.Page // database ID -> pages
	parents map[string]string        // page ID -> database ID
	seq     int
	creates int
}

// New starts a server closed at the end of the test.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		dbs:     map[string]notion.Database{},
		rows:    map[string][]notion.Page{},
		parents: map[string]string{},
	}

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Get("/databases/{id}", s.getDatabase)
		r.Post("/databases/{id}/query", s.queryDatabase)
		r.Post("/pages", s.createPage)
		r.Get("/pages/{id}", s.getPage)
		r.Patch("/pages/{id}", s.updatePage)
	})
	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the base URL to hand to notion.Options.
func (s *Server) URL() string {
	return s.srv.URL + "/v1"
}

// Client returns a notion client pointed at the server.
func (s *Server) Client() *notion.Client {
	return notion.NewClient(notion.Options{BaseURL: s.URL(), Token: "test-token", Retries: 1})
}

// AddDatabase registers a database schema.
func (s *Server) AddDatabase(db notion.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range db.Properties {
		p.Name = name
		if p.ID == "" {
			p.ID = name
		}
		db.Properties[name] = p
	}
	s.dbs[db.ID] = db
}

// AddPage seeds a row.
func (s *Server) AddPage(dbID string, page notion.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(dbID, page)
}

// Pages returns a copy of the rows of a database.
func (s *Server) Pages(dbID string) []notion.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notion.Page(nil), s.rows[dbID]...)
}

// Creates counts POST /pages calls.
func (s *Server) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

func (s *Server) insert(dbID string, page notion.Page) notion.Page {
	if page.ID == "" {
		s.seq++
		page.ID = "page-" + strconv.Itoa(s.seq)
	}
	page.Object = "page"
	page.Properties = typed(page.Properties)
	s.rows[dbID] = append(s.rows[dbID], page)
	s.parents[page.ID] = dbID
	return page
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) getDatabase(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	db, ok := s.dbs[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if !ok {
		notFound(w, "database")
		return
	}
	writeJSON(w, map[string]any{
		"object":     "database",
		"id":         db.ID,
		"title":      db.Title,
		"properties": db.Properties,
	})
}

type queryBody struct {
	Filter      map[string]any `json:"filter"`
	StartCursor string         `json:"start_cursor"`
	PageSize    int            `json:"page_size"`
}

func (s *Server) queryDatabase(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	s.mu.Lock()
	id := chi.URLParam(r, "id")
	_, known := s.dbs[id]
	var matched []notion.Page
	for _, p := range s.rows[id] {
		if match(p, body.Filter) {
			matched = append(matched, p)
		}
	}
	s.mu.Unlock()
	if !known {
		notFound(w, "database")
		return
	}

	start, _ := strconv.Atoi(body.StartCursor)
	size := body.PageSize
	if size <= 0 {
		size = notion.MaxPageSize
	}
	start = min(start, len(matched))
	end := min(start+size, len(matched))

	resp := map[string]any{
		"object":      "list",
		"results":     matched[start:end],
		"has_more":    end < len(matched),
		"next_cursor": nil,
	}
	if end < len(matched) {
		resp["next_cursor"] = strconv.Itoa(end)
	}
	writeJSON(w, resp)
}

type pageBody struct {
	Parent struct {
		DatabaseID string `json:"database_id"`
	} `json:"parent"`
	Properties notion.Properties `json:"properties"`
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	var body pageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.dbs[body.Parent.DatabaseID]
	if !ok {
		notFound(w, "database")
		return
	}
	for name := range body.Properties {
		if _, ok := db.Properties[name]; !ok {
			fail(w, http.StatusBadRequest, "validation_error", name+" is not a property that exists.")
			return
		}
	}
	s.creates++
	writeJSON(w, s.insert(db.ID, notion.Page{Properties: body.Properties}))
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "page")
		return
	}
	writeJSON(w, *p)
}

func (s *Server) updatePage(w http.ResponseWriter, r *http.Request) {
	var body pageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(chi.URLParam(r, "id"))
	if !ok {
		notFound(w, "page")
		return
	}
	for name, v := range typed(body.Properties) {
		p.Properties[name] = v
	}
	writeJSON(w, *p)
}

func (s *Server) find(id string) (*notion.Page, bool) {
	dbID, ok := s.parents[id]
	if !ok {
		return nil, false
	}
	rows := s.rows[dbID]
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], true
		}
	}
	return nil, false
}

// ─────────────────────────────────────────────
// Filters
// ─────────────────────────────────────────────

func match(p notion.Page, filter map[string]any) bool {
	if len(filter) == 0 {
		return true
	}
	if list, ok := filter["and"].([]any); ok {
		for _, sub := range list {
			m, _ := sub.(map[string]any)
			if !match(p, m) {
				return false
			}
		}
		return true
	}

	name, _ := filter["property"].(string)
	v, ok := p.Properties[name]
	for key, raw := range filter {
		if key == "property" {
			continue
		}
		cond, _ := raw.(map[string]any)
		return matchCondition(v, ok, key, cond)
	}
	return false
}

func matchCondition(v notion.PropertyValue, present bool, kind string, cond map[string]any) bool {
	switch kind {
	case "checkbox":
		got := present && v.Checkbox != nil && *v.Checkbox
		if want, ok := cond["equals"].(bool); ok {
			return got == want
		}
		if notWant, ok := cond["does_not_equal"].(bool); ok {
			return got != notWant
		}
		return false
	case "multi_select":
		want, _ := cond["contains"].(string)
		for _, o := range v.MultiSelect {
			if o.Name == want {
				return true
			}
		}
		return false
	}

	got := text(v)
	if want, ok := cond["equals"].(string); ok {
		return got == want
	}
	if want, ok := cond["contains"].(string); ok {
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
	return false
}

func text(v notion.PropertyValue) string {
	switch {
	case v.Title != nil:
		return notion.PlainText(v.Title)
	case v.RichText != nil:
		return notion.PlainText(v.RichText)
	case v.URL != nil:
		return *v.URL
	case v.Email != nil:
		return *v.Email
	case v.Select != nil:
		return v.Select.Name
	case v.Status != nil:
		return v.Status.Name
	}
	return ""
}

// typed fills the type tag every property object carries on the wire.
func typed(props notion.Properties) notion.Properties {
	out := make(notion.Properties, len(props))
	for name, v := range props {
		switch {
		case v.Title != nil:
			v.Type = notion.TypeTitle
			for i := range v.Title {
				if v.Title[i].PlainText == "" && v.Title[i].Text != nil {
					v.Title[i].PlainText = v.Title[i].Text.Content
				}
			}
		case v.RichText != nil:
			v.Type = notion.TypeRichText
			for i := range v.RichText {
				if v.RichText[i].PlainText == "" && v.RichText[i].Text != nil {
					v.RichText[i].PlainText = v.RichText[i].Text.Content
				}
			}
		case v.URL != nil:
			v.Type = notion.TypeURL
		case v.Email != nil:
			v.Type = notion.TypeEmail
		case v.Select != nil:
			v.Type = notion.TypeSelect
		case v.Status != nil:
			v.Type = notion.TypeStatus
		case v.MultiSelect != nil:
			v.Type = notion.TypeMultiSelect
		case v.Checkbox != nil:
			v.Type = notion.TypeCheckbox
		case v.Number != nil:
			v.Type = notion.TypeNumber
		case v.Date != nil:
			v.Type = notion.TypeDate
		}
		out[name] = v
	}
	return out
}

// ─────────────────────────────────────────────
// Responses
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, what string) {
	fail(w, http.StatusNotFound, "object_not_found", fmt.Sprintf("Could not find %s", what))
}

func fail(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object":  "error",
		"status":  status,
		"code":    code,
		"message": msg,
	})
}
