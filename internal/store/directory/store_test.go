package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
)

// fakeAPI is an in-memory Notion with just enough filter support for the store.
type fakeAPI struct {
	dbs      map[string]*notion.Database
	pages    map[string][]notion.Page
	filters  []notion.Filter
	updates  map[string]notion.Properties
	created  []notion.Properties
	dbFetchs int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		dbs:     map[string]*notion.Database{},
		pages:   map[string][]notion.Page{},
		updates: map[string]notion.Properties{},
	}
}

func (f *fakeAPI) RetrieveDatabase(_ context.Context, id string) (*notion.Database, error) {
	f.dbFetchs++
	db, ok := f.dbs[id]
	if !ok {
		return nil, &notion.APIError{Status: 404, Code: "object_not_found", Message: "no db"}
	}
	return db, nil
}

func (f *fakeAPI) QueryAll(_ context.Context, id string, filter notion.Filter, _ []notion.Sort, max int) ([]notion.Page, error) {
	f.filters = append(f.filters, filter)
	var out []notion.Page
	for _, p := range f.pages[id] {
		if matches(p, filter) {
			out = append(out, p)
		}
		if max > 0 && len(out) == max {
			break
		}
	}
	return out, nil
}

func (f *fakeAPI) RetrievePage(_ context.Context, id string) (*notion.Page, error) {
	for _, pages := range f.pages {
		for i := range pages {
			if pages[i].ID == id {
				return &pages[i], nil
			}
		}
	}
	return nil, &notion.APIError{Status: 404, Code: "object_not_found", Message: "no page"}
}

func (f *fakeAPI) UpdatePage(_ context.Context, id string, props notion.Properties) (*notion.Page, error) {
	f.updates[id] = props
	return &notion.Page{ID: id}, nil
}

func (f *fakeAPI) CreatePage(_ context.Context, dbID string, props notion.Properties) (*notion.Page, error) {
	f.created = append(f.created, props)
	id := fmt.Sprintf("created-%d", len(f.created))
	f.pages[dbID] = append(f.pages[dbID], notion.Page{ID: id, Properties: props})
	return &notion.Page{ID: id}, nil
}

func matches(p notion.Page, filter notion.Filter) bool {
	if filter == nil {
		return true
	}
	if and, ok := filter["and"].([]notion.Filter); ok {
		for _, f := range and {
			if !matches(p, f) {
				return false
			}
		}
		return true
	}
	name, _ := filter["property"].(string)
	v := p.Properties[name]
	for key, cond := range filter {
		if key == "property" {
			continue
		}
		c := cond.(map[string]any)
		if eq, ok := c["equals"]; ok {
			if b, isBool := eq.(bool); isBool {
				return propmap.Bool(v) == b
			}
			return propmap.Text(v) == eq
		}
		if sub, ok := c["contains"].(string); ok {
			return strings.Contains(strings.ToLower(propmap.Text(v)), strings.ToLower(sub))
		}
	}
	return false
}

func programsDB() *notion.Database {
	return &notion.Database{ID: "programs", Properties: map[string]notion.PropertySchema{
		"Name":             {Name: "Name", Type: notion.TypeTitle},
		"Application Link": {Name: "Application Link", Type: notion.TypeURL},
		"Status": {Name: "Status", Type: notion.TypeStatus, Status: &notion.OptionSet{
			Options: []notion.Option{{Name: "Active"}, {Name: "Needs Review"}},
		}},
		"Needs Review": {Name: "Needs Review", Type: notion.TypeCheckbox},
		"HTTP Status":  {Name: "HTTP Status", Type: notion.TypeNumber},
		"Category":     {Name: "Category", Type: notion.TypeMultiSelect},
	}}
}

func suggestionsDB() *notion.Database {
	return &notion.Database{ID: "suggestions", Properties: map[string]notion.PropertySchema{
		"Title":       {Name: "Title", Type: notion.TypeTitle},
		"Program URL": {Name: "Program URL", Type: notion.TypeURL},
		"Suggestion Type": {Name: "Suggestion Type", Type: notion.TypeSelect, Select: &notion.OptionSet{
			Options: []notion.Option{{Name: "New Program"}, {Name: "Update"}},
		}},
		"Status": {Name: "Status", Type: notion.TypeSelect, Select: &notion.OptionSet{
			Options: []notion.Option{{Name: "Pending"}},
		}},
		"Notes": {Name: "Notes", Type: notion.TypeRichText},
	}}
}

func programPage(id, name, link, status string, review bool) notion.Page {
	return notion.Page{ID: id, Properties: notion.Properties{
		"Name":             {Title: []notion.RichText{{PlainText: name}}},
		"Application Link": {URL: &link},
		"Status":           {Status: &notion.Option{Name: status}},
		"Needs Review":     {Checkbox: &review},
	}}
}

func newTestStore() (*Store, *fakeAPI) {
	api := newFakeAPI()
	api.dbs["programs"] = programsDB()
	api.dbs["suggestions"] = suggestionsDB()
	api.pages["programs"] = []notion.Page{
		programPage("p1", "AWS Activate", "https://aws.example/activate", "Active", false),
		programPage("p2", "Old Grant", "https://grant.example", "Active", true),
		programPage("p3", "Draft Perk", "https://draft.example", "Draft", false),
	}
	return NewStore(api, Options{ProgramsDB: "programs", SuggestionsDB: "suggestions"}), api
}

func TestListPrograms(t *testing.T) {
	store, api := newTestStore()
	ctx := context.Background()

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "all", opts: ListOptions{}, want: []string{"p1", "p2", "p3"}},
		{name: "active only", opts: ListOptions{ActiveValue: "Active"}, want: []string{"p1", "p2"}},
		{name: "active and reviewed", opts: ListOptions{ActiveValue: "Active", ExcludeNeedsReview: true}, want: []string{"p1"}},
		{name: "max", opts: ListOptions{Max: 1}, want: []string{"p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListPrograms(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListPrograms() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListPrograms() = %d programs, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("ListPrograms()[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	if api.dbFetchs != 1 {
		t.Errorf("schema fetched %d times, want 1 (cached)", api.dbFetchs)
	}
}

func TestGetProgram(t *testing.T) {
	store, _ := newTestStore()

	p, err := store.GetProgram(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetProgram() error = %v", err)
	}
	if p.Name != "AWS Activate" || p.ApplyURL != "https://aws.example/activate" || p.Status != "Active" {
		t.Errorf("GetProgram() = %+v", p)
	}

	_, err = store.GetProgram(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProgram(nope) error = %v, want ErrNotFound", err)
	}
}

func TestProgramExists(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	tests := []struct {
		name  string
		url   string
		title string
		want  bool
	}{
		{name: "by url", url: "https://grant.example", want: true},
		{name: "by normalized name", title: "  aws   ACTIVATE ", want: true},
		{name: "partial name is not a match", title: "AWS", want: false},
		{name: "unknown", url: "https://new.example", title: "New thing", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ProgramExists(ctx, tt.url, tt.title)
			if err != nil {
				t.Fatalf("ProgramExists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ProgramExists(%q, %q) = %v, want %v", tt.url, tt.title, got, tt.want)
			}
		})
	}
}

func TestCreateSuggestion(t *testing.T) {
	store, api := newTestStore()
	ctx := context.Background()

	id, err := store.CreateSuggestion(ctx, &domain.Suggestion{
		Title:      "GPU Credits",
		ProgramURL: "https://gpu.example",
		Notes:      "found via feed",
		Type:       domain.SuggestBrokenLink, // not an option, skipped
	})
	if err != nil {
		t.Fatalf("CreateSuggestion() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateSuggestion() id empty")
	}

	props := api.created[0]
	if got := propmap.Text(props["Title"]); got != "GPU Credits" {
		t.Errorf("Title = %q", got)
	}
	if got := propmap.Text(props["Status"]); got != "Pending" {
		t.Errorf("Status = %q, want Pending default", got)
	}
	if _, ok := props["Suggestion Type"]; ok {
		t.Errorf("Suggestion Type written with unknown option")
	}

	exists, err := store.SuggestionExists(ctx, "https://gpu.example", "")
	if err != nil || !exists {
		t.Errorf("SuggestionExists() = %v, %v, want true", exists, err)
	}

	if _, err := store.CreateSuggestion(ctx, &domain.Suggestion{Title: "  "}); err == nil {
		t.Errorf("CreateSuggestion(blank) error = nil")
	}
}

func TestUpdateProgramEmptyPatch(t *testing.T) {
	store, api := newTestStore()
	if err := store.UpdateProgram(context.Background(), "p1", propmap.Patch{}); err != nil {
		t.Fatalf("UpdateProgram() error = %v", err)
	}
	if len(api.updates) != 0 {
		t.Errorf("empty patch triggered an update")
	}
}

func TestSuggestionsNotConfigured(t *testing.T) {
	api := newFakeAPI()
	api.dbs["programs"] = programsDB()
	store := NewStore(api, Options{ProgramsDB: "programs"})

	if store.HasSuggestions() {
		t.Errorf("HasSuggestions() = true")
	}
	if _, err := store.ListSuggestions(context.Background(), "Pending", 10); err == nil {
		t.Errorf("ListSuggestions() error = nil, want not configured")
	}
}
