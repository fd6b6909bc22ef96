// Package directory reads and writes programs and suggestions in the remote
// Notion databases through the schema-adaptive field tables.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
)

// ErrNotFound is returned when a page does not exist.
var ErrNotFound = errors.New("not found")

// DefaultSchemaTTL bounds how long a resolved mapping is reused.
const DefaultSchemaTTL = 10 * time.Minute

// API is the subset of the Notion client the store needs.
type API interface {
	RetrieveDatabase(ctx context.Context, id string) (*notion.Database, error)
	QueryAll(ctx context.Context, id string, filter notion.Filter, sorts []notion.Sort, max int) ([]notion.Page, error)
	RetrievePage(ctx context.Context, id string) (*notion.Page, error)
	UpdatePage(ctx context.Context, id string, props notion.Properties) (*notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, props notion.Properties) (*notion.Page, error)
}

type Options struct {
	ProgramsDB       string
	SuggestionsDB    string
	ProgramOverrides map[string]string
	SchemaTTL        time.Duration
}

type cachedMapping struct {
	mapping   propmap.Mapping
	fetchedAt time.Time
}

// Store handles database operations for programs and suggestions.
type Store struct {
	api  API
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	mappings map[string]cachedMapping // database ID -> mapping
}

func NewStore(api API, opts Options) *Store {
	if opts.SchemaTTL <= 0 {
		opts.SchemaTTL = DefaultSchemaTTL
	}
	return &Store{
		api:      api,
		opts:     opts,
		now:      time.Now,
		mappings: make(map[string]cachedMapping, 2),
	}
}

// HasSuggestions reports whether a suggestions database is configured.
func (s *Store) HasSuggestions() bool {
	return s.opts.SuggestionsDB != ""
}

// Database returns the raw database object, schema included.
func (s *Store) Database(ctx context.Context, id string) (*notion.Database, error) {
	return s.api.RetrieveDatabase(ctx, id)
}

// ProgramMapping resolves the program field table against the live schema.
func (s *Store) ProgramMapping(ctx context.Context) (propmap.Mapping, error) {
	overrides := make(map[propmap.Field]string, len(s.opts.ProgramOverrides))
	for k, v := range s.opts.ProgramOverrides {
		overrides[propmap.Field(k)] = v
	}
	return s.mapping(ctx, s.opts.ProgramsDB, domain.ProgramTable, overrides)
}

// SuggestionMapping resolves the suggestion field table.
func (s *Store) SuggestionMapping(ctx context.Context) (propmap.Mapping, error) {
	if !s.HasSuggestions() {
		return nil, fmt.Errorf("suggestions database not configured")
	}
	return s.mapping(ctx, s.opts.SuggestionsDB, domain.SuggestionTable, nil)
}

func (s *Store) mapping(ctx context.Context, dbID string, table propmap.Table, overrides map[propmap.Field]string) (propmap.Mapping, error) {
	s.mu.Lock()
	cached, ok := s.mappings[dbID]
	s.mu.Unlock()
	if ok && s.now().Sub(cached.fetchedAt) < s.opts.SchemaTTL {
		return cached.mapping, nil
	}

	db, err := s.api.RetrieveDatabase(ctx, dbID)
	if err != nil {
		return nil, err
	}
	m := propmap.ResolveTable(db.Properties, table, overrides)

	s.mu.Lock()
	s.mappings[dbID] = cachedMapping{mapping: m, fetchedAt: s.now()}
	s.mu.Unlock()
	return m, nil
}

// InvalidateSchema forces the next call to refetch database schemas.
func (s *Store) InvalidateSchema() {
	s.mu.Lock()
	s.mappings = make(map[string]cachedMapping, 2)
	s.mu.Unlock()
}
