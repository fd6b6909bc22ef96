package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/fetch"
	"github.com/MrSnakeDoc/launchpad/internal/keywords"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

const programHTML = `<html><head>
<title>Cloud Boost</title>
<meta name="description" content="Cloud Boost gives early startups free cloud credits.">
</head>
<body>
<nav>Menu</nav>
<script>var secret = "credits grant funding";</script>
<h1>Cloud Boost for Startups</h1>
<p>Eligible startups receive up to $100,000 in cloud credits and free technical support for the first year of the program.</p>
<p>To qualify, your company must be a pre-seed or seed stage startup founded within the last five years and must not have raised more than $5m.</p>
<p>Submit the online application form and our team will review your approval within two weeks.</p>
</body></html>`

func TestExtract(t *testing.T) {
	doc, err := Extract([]byte(`<html><head>
<title> Plain  title </title>
<meta property="og:title" content="OG title">
<meta property="og:description" content="OG description">
</head><body><p>One &amp; two</p><style>.x{}</style><div>Three</div><br>Four</body></html>`))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if doc.Title != "OG title" {
		t.Errorf("Title = %q, want og:title", doc.Title)
	}
	if doc.Description != "OG description" {
		t.Errorf("Description = %q", doc.Description)
	}
	if doc.Text != "One & two. Three. . Four" {
		t.Errorf("Text = %q", doc.Text)
	}
}

func TestSplitSentences(t *testing.T) {
	text := "Short one. This sentence is long enough to keep! Is this one long enough too? tail.with.dots stays joined here"
	got := SplitSentences(text)
	want := []string{
		"This sentence is long enough to keep!",
		"Is this one long enough too?",
		"tail.with.dots stays joined here",
	}
	if len(got) != len(want) {
		t.Fatalf("SplitSentences() = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitSentences()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	long := strings.Repeat("a", 301) + "."
	if got := SplitSentences(long); len(got) != 0 {
		t.Errorf("SplitSentences(301 chars) kept %d sentences", len(got))
	}
}

func TestScoreSentence(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		want     int
	}{
		{name: "nothing", sentence: "The weather was lovely all week long.", want: 0},
		{name: "keyword", sentence: "Receive a grant for your research.", want: 3},
		{name: "money", sentence: "Get $5,000 for your research team.", want: 2},
		{name: "thousands", sentence: "Up to 10k of hosting each year.", want: 2},
		{name: "percent", sentence: "Members get 20% off every month.", want: 2},
		{name: "program word", sentence: "Every founder is welcome here today.", want: 1},
		{name: "combined", sentence: "The program awards a $10,000 grant.", want: 3 + 3 + 2 + 1},
	}
	kw := keywords.New("grant", "award")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreSentence(tt.sentence, kw); got != tt.want {
				t.Errorf("ScoreSentence(%q) = %d, want %d", tt.sentence, got, tt.want)
			}
		})
	}
}

func TestPickTop(t *testing.T) {
	text := "Free credits for every early startup team. " +
		"Free credits for every early startup team. " +
		"This grant offers $50,000 in free credits to founders. " +
		"Nothing relevant is mentioned in this sentence."

	got := PickTop(text, WhatYouGetKeywords, DefaultBudget)
	want := "This grant offers $50,000 in free credits to founders. Free credits for every early startup team."
	if got != want {
		t.Errorf("PickTop() = %q, want %q", got, want)
	}

	if got := PickTop(text, WhatYouGetKeywords, 60); got != "This grant offers $50,000 in free credits to founders." {
		t.Errorf("PickTop(budget 60) = %q", got)
	}
	if got := PickTop("Nothing relevant is mentioned in this sentence.", WhatYouGetKeywords, DefaultBudget); got != "" {
		t.Errorf("PickTop(no hits) = %q, want empty", got)
	}
}

func TestIsBoilerplate(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "", want: true},
		{text: "Please enable cookies and sign in to continue.", want: true},
		{text: "Read our privacy policy.", want: false},
		{text: "Grants for founders.", want: false},
	}
	for _, tt := range tests {
		if got := IsBoilerplate(tt.text); got != tt.want {
			t.Errorf("IsBoilerplate(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	t.Run("rich page", func(t *testing.T) {
		r := Analyze(&fetch.Page{
			Status:      200,
			FinalURL:    "https://boost.example/startups",
			ContentType: "text/html; charset=utf-8",
			Body:        []byte(programHTML),
		})
		if r.Blocked || r.PDF {
			t.Fatalf("Analyze() blocked=%v pdf=%v", r.Blocked, r.PDF)
		}
		if r.Confidence != domain.ConfidenceHigh {
			t.Errorf("Confidence = %s, want High", r.Confidence)
		}
		if !strings.HasPrefix(r.WhatYouGet, "Eligible startups receive up to $100,000") {
			t.Errorf("WhatYouGet = %q", r.WhatYouGet)
		}
		if !strings.HasPrefix(r.Eligibility, "To qualify") {
			t.Errorf("Eligibility = %q", r.Eligibility)
		}
		if !strings.HasPrefix(r.HowToApply, "Submit the online application form") {
			t.Errorf("HowToApply = %q", r.HowToApply)
		}
		if r.SourceSummary != "Cloud Boost gives early startups free cloud credits." {
			t.Errorf("SourceSummary = %q", r.SourceSummary)
		}
		if strings.Contains(r.WhatYouGet+r.Eligibility, "secret") {
			t.Errorf("script content leaked into extraction")
		}
		if !strings.HasPrefix(r.AutoSummary, "HTTP: 200 | Final URL: https://boost.example/startups | Type: text/html") ||
			!strings.Contains(r.AutoSummary, "Title: Cloud Boost") {
			t.Errorf("AutoSummary = %q", r.AutoSummary)
		}
	})

	t.Run("blocked page", func(t *testing.T) {
		r := Analyze(&fetch.Page{Status: 403, FinalURL: "https://x.example", Body: []byte("<p>Access denied</p>")})
		if !r.Blocked || r.Confidence != domain.ConfidenceLow {
			t.Errorf("blocked=%v confidence=%s", r.Blocked, r.Confidence)
		}
		if r.HowToApply != defaultHowToApply {
			t.Errorf("HowToApply = %q", r.HowToApply)
		}
		if !strings.Contains(r.AutoSummary, "Blocked/low-content response detected") ||
			!strings.Contains(r.AutoSummary, "Type: unknown") {
			t.Errorf("AutoSummary = %q", r.AutoSummary)
		}
	})

	t.Run("pdf", func(t *testing.T) {
		r := Analyze(&fetch.Page{Status: 200, FinalURL: "https://x.example/guide.pdf", Body: []byte("%PDF-1.7")})
		if !r.PDF || r.HowToApply != pdfHowToApply || r.Confidence != domain.ConfidenceLow {
			t.Errorf("pdf=%v how=%q confidence=%s", r.PDF, r.HowToApply, r.Confidence)
		}
		if r.Blocked || strings.Contains(r.AutoSummary, "Blocked/low-content") {
			t.Errorf("pdf reported as blocked: %q", r.AutoSummary)
		}
		if !strings.Contains(r.AutoSummary, "PDF detected (manual review suggested)") {
			t.Errorf("AutoSummary = %q", r.AutoSummary)
		}
	})

	t.Run("pdf error status", func(t *testing.T) {
		r := Analyze(&fetch.Page{Status: 404, FinalURL: "https://x.example/guide.pdf", ContentType: "application/pdf"})
		if !r.Blocked || !strings.Contains(r.AutoSummary, "Blocked/low-content") {
			t.Errorf("blocked=%v summary=%q", r.Blocked, r.AutoSummary)
		}
	})
}

// ─────────────────────────────
// Enricher
// ─────────────────────────────

type fakeStore struct {
	mapping  propmap.Mapping
	programs []*domain.Program
	listOpts directory.ListOptions
	patches  map[string]propmap.Patch
}

func (f *fakeStore) ProgramMapping(context.Context) (propmap.Mapping, error) { return f.mapping, nil }

func (f *fakeStore) ListPrograms(_ context.Context, opts directory.ListOptions) ([]*domain.Program, error) {
	f.listOpts = opts
	return f.programs, nil
}

func (f *fakeStore) UpdateProgram(_ context.Context, id string, patch propmap.Patch) error {
	f.patches[id] = patch
	return nil
}

type fakeFetcher map[string]*fetch.Page

func (f fakeFetcher) Get(_ context.Context, rawURL string) (*fetch.Page, error) {
	if p, ok := f[rawURL]; ok {
		return p, nil
	}
	return nil, errors.New("dial tcp: no such host")
}

func enrichSchema() map[string]notion.PropertySchema {
	confidence := &notion.OptionSet{Options: []notion.Option{{Name: "High"}, {Name: "Medium"}, {Name: "Low"}}}
	return map[string]notion.PropertySchema{
		"Name":                  {Type: notion.TypeTitle},
		"Application Link":      {Type: notion.TypeURL},
		"What you get":          {Type: notion.TypeRichText},
		"Eligibility Summary":   {Type: notion.TypeRichText},
		"How to apply":          {Type: notion.TypeRichText},
		"Auto summary":          {Type: notion.TypeRichText},
		"Source Summary":        {Type: notion.TypeRichText},
		"Extraction confidence": {Type: notion.TypeSelect, Select: confidence},
		"Final URL":             {Type: notion.TypeURL},
		"Last Verified":         {Type: notion.TypeDate},
		"Needs Review":          {Type: notion.TypeCheckbox},
	}
}

func TestEnricherRun(t *testing.T) {
	store := &fakeStore{
		mapping: propmap.ResolveTable(enrichSchema(), domain.ProgramTable, nil),
		programs: []*domain.Program{
			{ID: "good", Name: "Cloud Boost", ApplyURL: "https://boost.example"},
			{ID: "blocked", Name: "Walled", SourceURL: "https://walled.example"},
			{ID: "down", Name: "Down", ApplyURL: "https://down.example"},
			{ID: "nourl", Name: "No URL"},
		},
		patches: map[string]propmap.Patch{},
	}
	fetcher := fakeFetcher{
		"https://boost.example":  {Status: 200, FinalURL: "https://boost.example", ContentType: "text/html", Body: []byte(programHTML)},
		"https://walled.example": {Status: 403, FinalURL: "https://walled.example", Body: []byte("denied")},
	}
	cfg := config.Enrich{OnlyApproved: true, ActiveValue: "Active", Max: 50}

	e := NewEnricher(store, fetcher, cfg, logger.New("error", false), nil)
	e.now = func() time.Time { return time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC) }

	sum, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := Summary{Processed: 3, Enriched: 1, Failed: 1, Skipped: 1, High: 1, Low: 1}
	if sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
	if store.listOpts.ActiveValue != "Active" || !store.listOpts.ExcludeNeedsReview || store.listOpts.Max != 50 {
		t.Errorf("list options = %+v", store.listOpts)
	}

	good := store.patches["good"]
	if got := propmap.Text(good["Extraction confidence"]); got != "High" {
		t.Errorf("good confidence = %q", got)
	}
	if _, ok := good["Needs Review"]; ok {
		t.Errorf("high-confidence page flagged for review")
	}
	if got := propmap.Text(good["Last Verified"]); got != "2026-02-03" {
		t.Errorf("Last Verified = %q", got)
	}

	blocked := store.patches["blocked"]
	if !propmap.Bool(blocked["Needs Review"]) {
		t.Errorf("blocked page not flagged for review")
	}
	if got := propmap.Text(blocked["How to apply"]); got != defaultHowToApply {
		t.Errorf("blocked How to apply = %q", got)
	}
	if _, ok := store.patches["down"]; ok {
		t.Errorf("failed fetch wrote a patch")
	}
}

func TestEnricherFlagsPageWithoutEligibility(t *testing.T) {
	page := `<html><body><p>Our team offers free cloud credits to every new customer joining this year.</p>
<p>Additional perks include discounted support plans and training sessions for twelve months.</p></body></html>`
	store := &fakeStore{
		mapping:  propmap.ResolveTable(enrichSchema(), domain.ProgramTable, nil),
		programs: []*domain.Program{{ID: "p", Name: "P", ApplyURL: "https://p.example"}},
		patches:  map[string]propmap.Patch{},
	}
	fetcher := fakeFetcher{"https://p.example": {Status: 200, FinalURL: "https://p.example", Body: []byte(page)}}
	e := NewEnricher(store, fetcher, config.Enrich{}, logger.New("error", false), nil)
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	patch := store.patches["p"]
	if got := propmap.Text(patch["Eligibility Summary"]); got != "" {
		t.Fatalf("Eligibility Summary = %q, want nothing extracted", got)
	}
	if got := propmap.Text(patch["Extraction confidence"]); got != "Low" {
		t.Errorf("confidence = %q, want Low", got)
	}
	if !propmap.Bool(patch["Needs Review"]) {
		t.Errorf("page without eligibility not flagged for review")
	}
}
