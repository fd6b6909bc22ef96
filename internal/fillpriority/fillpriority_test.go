package fillpriority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

func TestFieldPenalty(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{length: 150, want: 0},
		{length: 120, want: 0},
		{length: 119, want: 1},
		{length: 60, want: 1},
		{length: 59, want: 2},
		{length: 1, want: 2},
		{length: 0, want: 3},
	}
	for _, tt := range tests {
		if got := FieldPenalty(tt.length, 120, 60); got != tt.want {
			t.Errorf("FieldPenalty(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name      string
		program   domain.Program
		priority  int
		readiness int
		gaps      []string
	}{
		{
			name: "complete",
			program: domain.Program{
				Name:        "Complete",
				WhatYouGet:  strings.Repeat("a", 120),
				Eligibility: strings.Repeat("b", 100),
				HowToApply:  strings.Repeat("c", 90),
			},
			priority:  0,
			readiness: 3,
			gaps:      []string{},
		},
		{
			name:      "empty",
			program:   domain.Program{Name: "Empty"},
			priority:  3 + 3 + 3 + 2,
			readiness: 0,
			gaps:      []string{GapWhatYouGet, GapEligibility, GapHowToApply},
		},
		{
			name: "partial with flags",
			program: domain.Program{
				Name:        "Partial",
				WhatYouGet:  strings.Repeat("a", 70),
				Eligibility: "short",
				HowToApply:  strings.Repeat("c", 95),
				NeedsReview: true,
				Confidence:  domain.ConfidenceLow,
				LinkStatus:  domain.LinkBroken,
			},
			priority:  1 + 2 + 0 + 2 + 2 + 2,
			readiness: 1,
			gaps:      []string{GapWhatYouGet, GapEligibility},
		},
		{
			name: "whitespace does not count",
			program: domain.Program{
				Name:        "Spaces",
				WhatYouGet:  strings.Repeat("a ", 40) + "          ",
				Eligibility: strings.Repeat("b", 100),
				HowToApply:  strings.Repeat("c", 90),
			},
			priority:  1,
			readiness: 2,
			gaps:      []string{GapWhatYouGet},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(&tt.program)
			if got.Priority != tt.priority {
				t.Errorf("Priority = %d, want %d", got.Priority, tt.priority)
			}
			if got.Readiness != tt.readiness {
				t.Errorf("Readiness = %d, want %d", got.Readiness, tt.readiness)
			}
			if strings.Join(got.Gaps, "|") != strings.Join(tt.gaps, "|") {
				t.Errorf("Gaps = %v, want %v", got.Gaps, tt.gaps)
			}
		})
	}
}

func TestAssessDefaults(t *testing.T) {
	got := Assess(&domain.Program{})
	if got.Name != "Untitled" || got.Provider != "Unknown" {
		t.Errorf("defaults = %q / %q", got.Name, got.Provider)
	}
}

// TestShorteningNeverLowersPriority trims each field step by step and checks
// the priority only ever grows.
func TestShorteningNeverLowersPriority(t *testing.T) {
	full := domain.Program{
		Name:        "Mono",
		WhatYouGet:  strings.Repeat("w", 150),
		Eligibility: strings.Repeat("e", 130),
		HowToApply:  strings.Repeat("h", 110),
	}

	fields := []func(p *domain.Program) *string{
		func(p *domain.Program) *string { return &p.WhatYouGet },
		func(p *domain.Program) *string { return &p.Eligibility },
		func(p *domain.Program) *string { return &p.HowToApply },
	}

	for i, field := range fields {
		p := full
		prev := Assess(&p).Priority
		for n := len(*field(&p)); n >= 0; n-- {
			*field(&p) = (*field(&full))[:n]
			got := Assess(&p).Priority
			if got < prev {
				t.Fatalf("field %d: priority dropped from %d to %d at length %d", i, prev, got, n)
			}
			prev = got
		}
	}
}

func TestRankOrder(t *testing.T) {
	programs := []*domain.Program{
		{Name: "beta"},
		{Name: "Ready", WhatYouGet: strings.Repeat("a", 120), Eligibility: strings.Repeat("b", 100), HowToApply: strings.Repeat("c", 90)},
		{Name: "Alpha"},
		{Name: "Flagged", NeedsReview: true},
	}
	ranked := Rank(programs)

	var names []string
	for _, it := range ranked {
		names = append(names, it.Name)
	}
	if got := strings.Join(names, ","); got != "Flagged,Alpha,beta,Ready" {
		t.Errorf("order = %s", got)
	}
}

func TestBuildAndWrite(t *testing.T) {
	programs := []*domain.Program{
		{ID: "1", Name: "Gap | pipe", Provider: "Acme"},
		{ID: "2", Name: "Ready", WhatYouGet: strings.Repeat("a", 120), Eligibility: strings.Repeat("b", 100), HowToApply: strings.Repeat("c", 90)},
		{ID: "3", Name: "Half", WhatYouGet: strings.Repeat("a", 120)},
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := Build(programs, 1, now)

	want := Totals{Programs: 3, NeedFill: 2, ReadyAll: 1}
	if r.Totals != want {
		t.Fatalf("totals = %+v, want %+v", r.Totals, want)
	}
	if len(r.Items) != 1 || r.Items[0].ID != "1" {
		t.Fatalf("items = %+v, want only the top item", r.Items)
	}

	var md bytes.Buffer
	if err := r.WriteMarkdown(&md); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md.String(), `| 11 | Gap \| pipe | Acme | 0/3 | What you get, Eligibility, How to apply |`) {
		t.Errorf("markdown row missing:\n%s", md.String())
	}

	dir := filepath.Join(t.TempDir(), "reports")
	jsonPath, mdPath, err := r.WriteFiles(dir)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		GeneratedAt string `json:"generatedAt"`
		Totals      Totals `json:"totals"`
		Items       []Item `json:"items"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report json: %v", err)
	}
	if decoded.GeneratedAt != "2026-03-01T00:00:00Z" || decoded.Totals != want {
		t.Errorf("decoded = %+v", decoded)
	}
	if _, err := os.Stat(mdPath); err != nil {
		t.Errorf("markdown not written: %v", err)
	}
}

type fakeLister struct {
	programs []*domain.Program
	opts     directory.ListOptions
}

func (f *fakeLister) ListPrograms(_ context.Context, opts directory.ListOptions) ([]*domain.Program, error) {
	f.opts = opts
	return f.programs, nil
}

func TestRun(t *testing.T) {
	lister := &fakeLister{programs: []*domain.Program{{Name: "Only"}}}
	cfg := config.FillAudit{Max: 500, OnlyActive: true, ActiveValue: "Active", TopN: 100, ReportsDir: t.TempDir()}

	r, err := Run(context.Background(), lister, cfg, logger.New("error", false))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lister.opts.ActiveValue != "Active" || lister.opts.Max != 500 {
		t.Errorf("list options = %+v", lister.opts)
	}
	if r.Totals.NeedFill != 1 {
		t.Errorf("NeedFill = %d", r.Totals.NeedFill)
	}
	if _, err := os.Stat(filepath.Join(cfg.ReportsDir, MarkdownFile)); err != nil {
		t.Errorf("markdown missing: %v", err)
	}
}

type failingClose struct{ bytes.Buffer }

func (f *failingClose) Close() error { return errors.New("disk full") }

func TestWriteFilesReportsCloseError(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })
	createFile = func(string) (io.WriteCloser, error) { return &failingClose{}, nil }

	r := Build(nil, 10, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	_, _, err := r.WriteFiles(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("WriteFiles() err = %v, want close error", err)
	}
}
