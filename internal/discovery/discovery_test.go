package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/fetch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/notion/notiontest"
	"github.com/MrSnakeDoc/launchpad/internal/sources"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Feed</title>
  <link>https://ex.com</link>
  <item>
    <title>Cloud credits program for startup founders</title>
    <link>https://ex.com/credits</link>
    <description><![CDATA[<p>Apply for $5k in <b>credits</b>.</p>]]></description>
    <pubDate>Fri, 20 Feb 2026 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Old grant program</title>
    <link>https://ex.com/old</link>
    <pubDate>Wed, 01 Jan 2025 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Careers at Example</title>
    <link>https://ex.com/jobs</link>
    <pubDate>Fri, 20 Feb 2026 10:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Orphan entry</title>
  </item>
  <item>
    <title>Non-dilutive grant for founders</title>
    <link>https://ex.com/grant</link>
  </item>
</channel>
</rss>`

const pageHTML = `<html><body>
<nav><a href="https://ex.org/privacy">Privacy</a></nav>
<ul>
  <li><a href="/perks">Startup perks and credits</a></li>
  <li><a href="mailto:team@ex.org">Email us</a></li>
  <li><a href="#top"> </a></li>
  <li><a href="https://ex.com/credits">Cloud credits   program for startup founders</a></li>
</ul>
</body></html>`

var (
	feedSource = sources.Source{
		Name:     "Example Feed",
		URL:      "https://ex.com/feed.xml",
		Kind:     sources.KindRSS,
		Category: []string{"Startup"},
		Stage:    []string{"Pre-seed"},
	}
	pageSource = sources.Source{
		Name:         "Example Page",
		URL:          "https://ex.org/programs",
		Kind:         sources.KindHTML,
		ProviderHint: "Example Org",
	}
	brokenSource = sources.Source{Name: "Broken", URL: "https://down.example/feed", Kind: sources.KindRSS}
	fixedNow     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestParseFeed(t *testing.T) {
	got, err := ParseFeed([]byte(feedXML), feedSource)
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d candidates, want 4 (orphan skipped)", len(got))
	}

	first := got[0]
	if first.URL != "https://ex.com/credits" || first.SourceName != "Example Feed" {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	if first.Summary != "Apply for $5k in credits." {
		t.Errorf("Summary = %q", first.Summary)
	}
	if first.Published == nil || first.Published.Year() != 2026 {
		t.Errorf("Published = %v", first.Published)
	}
	if strings.Join(first.Category, ",") != "Startup,Cloud Credits" {
		t.Errorf("Category = %v", first.Category)
	}
	if got[3].Published != nil {
		t.Errorf("undated item should have nil Published, got %v", got[3].Published)
	}
}

func TestParseFeedInvalid(t *testing.T) {
	if _, err := ParseFeed([]byte("not a feed"), feedSource); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestParseLinks(t *testing.T) {
	got, err := ParseLinks([]byte(pageHTML), pageSource)
	if err != nil {
		t.Fatalf("ParseLinks: %v", err)
	}

	var urls []string
	for _, c := range got {
		urls = append(urls, c.URL)
	}
	want := "https://ex.org/privacy https://ex.org/perks https://ex.com/credits"
	if strings.Join(urls, " ") != want {
		t.Fatalf("urls = %v, want %s", urls, want)
	}
	if got[2].Title != "Cloud credits program for startup founders" {
		t.Errorf("link text not compacted: %q", got[2].Title)
	}
	if got[1].ProviderHint != "Example Org" {
		t.Errorf("ProviderHint = %q", got[1].ProviderHint)
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want int
	}{
		{name: "positive", c: Candidate{Title: "Cloud credits program for startup founders"}, want: 6},
		{name: "negative", c: Candidate{Title: "Careers", URL: "https://ex.com/jobs"}, want: -2},
		{name: "mixed", c: Candidate{Title: "Startup grant", Summary: "Read the terms"}, want: 1},
		{name: "source name counts", c: Candidate{Title: "Cohort 5", SourceName: "Accelerator news"}, want: 1},
		{name: "empty", c: Candidate{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(&tt.c); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
		src     sources.Source
		want    []string
	}{
		{name: "ai word", title: "Free AI credits", want: []string{"Cloud Credits", "LLM/API Credits"}},
		{name: "ai inside word ignored", title: "Email the maintainers", want: []string{}},
		{name: "isu", title: "ISU startup grant", want: []string{"Non-Dilutive Funding", "Iowa Programs"}},
		{
			name:  "source first and deduped",
			title: "Accelerator cohort with cloud credits",
			src:   sources.Source{Category: []string{"Accelerator", "Perks"}},
			want:  []string{"Accelerator", "Perks", "Cloud Credits"},
		},
		{
			name:  "capped at five",
			title: "grant credit api accelerator iowa",
			src:   sources.Source{Category: []string{"A", "B"}},
			want:  []string{"A", "B", "Non-Dilutive Funding", "Cloud Credits", "LLM/API Credits"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferCategory(tt.title, tt.summary, tt.src)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("InferCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferStageCap(t *testing.T) {
	got := InferStage(sources.Source{Stage: []string{"a", "b", "c", "d", "e"}})
	if len(got) != 4 {
		t.Errorf("InferStage() len = %d, want 4", len(got))
	}
}

func TestIsRecent(t *testing.T) {
	old := fixedNow.AddDate(0, 0, -46)
	fresh := fixedNow.AddDate(0, 0, -44)
	if !IsRecent(nil, fixedNow, 45) {
		t.Error("undated should be recent")
	}
	if IsRecent(&old, fixedNow, 45) {
		t.Error("46 days old should not be recent")
	}
	if !IsRecent(&fresh, fixedNow, 45) {
		t.Error("44 days old should be recent")
	}
}

func TestAppendCheck(t *testing.T) {
	got := AppendCheck("Seed note", "Auto-add check", fetch.Result{Status: 200, FinalURL: "https://ex.com/x"})
	want := "Seed note | Auto-add check: HTTP 200 | Final URL: https://ex.com/x"
	if got != want {
		t.Errorf("AppendCheck() = %q, want %q", got, want)
	}
	got = AppendCheck("", "Auto-add check", fetch.Result{Err: errors.New("timeout")})
	if got != "Auto-add check: HTTP 0 | Error: timeout" {
		t.Errorf("AppendCheck() = %q", got)
	}
}

// ─────────────────────────────
// Scanner
// ─────────────────────────────

type fakeLoader struct{ srcs []sources.Source }

func (f fakeLoader) Sources() ([]sources.Source, error) { return f.srcs, nil }

type fakeFetcher map[string]string

func (f fakeFetcher) Get(_ context.Context, rawURL string) (*fetch.Page, error) {
	body, ok := f[rawURL]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &fetch.Page{Status: 200, FinalURL: rawURL, Body: []byte(body)}, nil
}

type okChecker struct{}

func (okChecker) Check(_ context.Context, rawURL string) fetch.Result {
	return fetch.Result{Status: 200, FinalURL: rawURL}
}

type fakeStore struct {
	suggestions []*domain.Suggestion
	programs    []*domain.Program
	lookups     int
}

func (f *fakeStore) SuggestionExists(_ context.Context, rawURL, title string) (bool, error) {
	f.lookups++
	for _, s := range f.suggestions {
		if (rawURL != "" && domain.SameURL(s.ProgramURL, rawURL)) || domain.NormalizeText(s.Title) == domain.NormalizeText(title) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ProgramExists(_ context.Context, rawURL, name string) (bool, error) {
	for _, p := range f.programs {
		if (rawURL != "" && domain.SameURL(p.ApplyURL, rawURL)) || domain.NormalizeText(p.Name) == domain.NormalizeText(name) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateSuggestion(_ context.Context, sg *domain.Suggestion) (string, error) {
	f.suggestions = append(f.suggestions, sg)
	return "sg-" + sg.Title, nil
}

type memorySeen map[string]bool

func (m memorySeen) Seen(_ context.Context, key string) (bool, error) { return m[key], nil }
func (m memorySeen) MarkSeen(_ context.Context, key string) error     { m[key] = true; return nil }

func discoveryConfig() config.Discovery {
	return config.Discovery{
		MaxItems:       40,
		LookbackDays:   45,
		Status:         "Pending",
		SubmitterEmail: "bot@ex.com",
		MinScore:       2,
	}
}

func newTestScanner(store *fakeStore, cfg config.Discovery) *Scanner {
	fetcher := fakeFetcher{
		feedSource.URL: feedXML,
		pageSource.URL: pageHTML,
	}
	loader := fakeLoader{srcs: []sources.Source{feedSource, pageSource, brokenSource}}
	s := NewScanner(loader, fetcher, okChecker{}, store, cfg, logger.New("error", false), nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func knownStore() *fakeStore {
	return &fakeStore{
		suggestions: []*domain.Suggestion{{Title: "Non-dilutive  grant for FOUNDERS", ProgramURL: "https://elsewhere.example"}},
	}
}

func TestScannerRun(t *testing.T) {
	store := knownStore()
	sum, err := newTestScanner(store, discoveryConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Summary{Sources: 3, SourcesFailed: 1, Candidates: 3, Created: 2, Skipped: 1}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}

	created := store.suggestions[1:]
	if created[0].ProgramURL != "https://ex.com/credits" || created[1].ProgramURL != "https://ex.org/perks" {
		t.Fatalf("created out of score order: %s, %s", created[0].ProgramURL, created[1].ProgramURL)
	}

	sg := created[0]
	if sg.Type != domain.SuggestNewProgram || sg.Status != "Pending" || sg.SubmitterEmail != "bot@ex.com" {
		t.Errorf("unexpected suggestion metadata: %+v", sg)
	}
	if sg.EvidenceURL != feedSource.URL {
		t.Errorf("EvidenceURL = %q, want source URL", sg.EvidenceURL)
	}
	for _, part := range []string{"Source: Example Feed", "Score: 6", "Summary: Apply for $5k in credits.", "Auto-discovery URL check: HTTP 200"} {
		if !strings.Contains(sg.Notes, part) {
			t.Errorf("notes missing %q: %s", part, sg.Notes)
		}
	}
	if created[1].Provider != "Example Org" {
		t.Errorf("Provider = %q", created[1].Provider)
	}
}

func TestScannerSecondRunCreatesNothing(t *testing.T) {
	store := knownStore()
	s := newTestScanner(store, discoveryConfig())

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := len(store.suggestions)

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Created != 0 || len(store.suggestions) != before {
		t.Fatalf("second run created %d suggestions", sum.Created)
	}
	if sum.Skipped != sum.Candidates {
		t.Errorf("skipped %d of %d candidates", sum.Skipped, sum.Candidates)
	}
}

func TestScannerRerunAgainstDirectory(t *testing.T) {
	srv := notiontest.New(t)
	srv.AddDatabase(notion.Database{ID: "programs", Properties: map[string]notion.PropertySchema{
		"Name":             {Type: notion.TypeTitle},
		"Application Link": {Type: notion.TypeURL},
	}})
	srv.AddDatabase(notion.Database{ID: "suggestions", Properties: map[string]notion.PropertySchema{
		"Title":       {Type: notion.TypeTitle},
		"Program URL": {Type: notion.TypeURL},
		"Suggestion Type": {Type: notion.TypeSelect, Select: &notion.OptionSet{
			Options: []notion.Option{{Name: "New Program"}},
		}},
		"Status": {Type: notion.TypeSelect, Select: &notion.OptionSet{
			Options: []notion.Option{{Name: "Pending"}},
		}},
		"Notes": {Type: notion.TypeRichText},
	}})
	store := directory.NewStore(srv.Client(), directory.Options{
		ProgramsDB:    "programs",
		SuggestionsDB: "suggestions",
	})

	fetcher := fakeFetcher{feedSource.URL: feedXML, pageSource.URL: pageHTML}
	loader := fakeLoader{srcs: []sources.Source{feedSource, pageSource}}
	seen := memorySeen{}
	s := NewScanner(loader, fetcher, okChecker{}, store, discoveryConfig(), logger.New("error", false), nil).WithSeenSet(seen)
	s.now = func() time.Time { return fixedNow }

	first, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Created == 0 || first.Created != srv.Creates() {
		t.Fatalf("first run created %d, server saw %d creates", first.Created, srv.Creates())
	}
	rows := srv.Pages("suggestions")
	if got := notion.PlainText(rows[0].Properties["Title"].Title); got == "" {
		t.Errorf("created row has no title: %+v", rows[0].Properties)
	}

	clear(seen)
	second, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 || srv.Creates() != first.Created {
		t.Errorf("second run created %d (server creates %d)", second.Created, srv.Creates())
	}
	if second.Seen != 0 || second.Skipped != second.Candidates {
		t.Errorf("second run = %+v, want every candidate skipped by the directory", second)
	}
}

func TestScannerCapsSuggestionTitle(t *testing.T) {
	store := &fakeStore{}
	s := newTestScanner(store, discoveryConfig())
	c := Candidate{
		Title:      strings.Repeat("Startup grant program ", 20),
		URL:        "https://ex.com/long",
		SourceName: "Example Feed",
		Score:      4,
	}

	var sum Summary
	s.consider(context.Background(), &c, &sum)

	if sum.Created != 1 || len(store.suggestions) != 1 {
		t.Fatalf("summary = %+v, want one suggestion", sum)
	}
	if n := len([]rune(store.suggestions[0].Title)); n > suggestionTitleMax {
		t.Errorf("title has %d runes, want at most %d", n, suggestionTitleMax)
	}
}

func TestScannerSeenSetShortCircuits(t *testing.T) {
	store := knownStore()
	seen := memorySeen{}
	s := newTestScanner(store, discoveryConfig()).WithSeenSet(seen)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("seen set has %d keys, want 3", len(seen))
	}

	lookups := store.lookups
	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Seen != 3 || sum.Created != 0 {
		t.Errorf("summary = %+v, want 3 seen", sum)
	}
	if store.lookups != lookups {
		t.Errorf("seen candidates still queried the store (%d extra lookups)", store.lookups-lookups)
	}
}

func TestScannerLimitsAndDryRun(t *testing.T) {
	t.Run("max items", func(t *testing.T) {
		cfg := discoveryConfig()
		cfg.MaxItems = 1
		store := knownStore()
		sum, err := newTestScanner(store, cfg).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if sum.Created != 1 || store.suggestions[1].ProgramURL != "https://ex.com/credits" {
			t.Errorf("expected only the best candidate, got %+v", sum)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		cfg := discoveryConfig()
		cfg.DryRun = true
		store := knownStore()
		seen := memorySeen{}
		sum, err := newTestScanner(store, cfg).WithSeenSet(seen).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if sum.Created != 2 || len(store.suggestions) != 1 || len(seen) != 0 {
			t.Errorf("dry run mutated state: %+v, %d suggestions, %d seen", sum, len(store.suggestions), len(seen))
		}
	})

	t.Run("existing program blocks candidate", func(t *testing.T) {
		store := knownStore()
		store.programs = []*domain.Program{{Name: "Perks hub", ApplyURL: "https://EX.org/perks/"}}
		sum, err := newTestScanner(store, discoveryConfig()).Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if sum.Created != 1 || sum.Skipped != 2 {
			t.Errorf("summary = %+v, want 1 created 2 skipped", sum)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := newTestScanner(knownStore(), discoveryConfig()).Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

// ─────────────────────────────
// Seeder
// ─────────────────────────────

func TestSeederRun(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "seeds.yaml")
	seeds := `- title: "  Startup   credits "
  programUrl: https://ex.com/startup
  provider: Example
  notes: Found at a meetup
  category: [Cloud Credits]
- title: Broken listing
  suggestionType: broken link
  programUrl: https://ex.com/dead
- title: ""
  programUrl: https://ex.com/untitled
- title: Existing program
  programUrl: https://ex.com/existing
- title: No URL perk
`
	if err := os.WriteFile(file, []byte(seeds), 0o600); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{programs: []*domain.Program{{Name: "Something", ApplyURL: "https://ex.com/existing"}}}
	cfg := config.Seeds{Status: "Pending", SubmitterEmail: "bot@ex.com"}
	seeder := NewSeeder(sources.NewLoader(file), okChecker{}, store, cfg, logger.New("error", false), nil)

	sum, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := SeedSummary{Seeds: 5, Created: 3, Skipped: 2}
	if sum != want {
		t.Fatalf("summary = %+v, want %+v", sum, want)
	}

	first := store.suggestions[0]
	if first.Title != "Startup credits" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Notes != "Found at a meetup | Auto-add check: HTTP 200 | Final URL: https://ex.com/startup" {
		t.Errorf("Notes = %q", first.Notes)
	}
	if store.suggestions[1].Type != domain.SuggestBrokenLink {
		t.Errorf("Type = %q", store.suggestions[1].Type)
	}
	if store.suggestions[2].Notes != "" {
		t.Errorf("seed without URL should not be checked, notes = %q", store.suggestions[2].Notes)
	}

	again, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if again.Created != 0 {
		t.Errorf("second seeding created %d", again.Created)
	}
}
