package enrich

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/fetch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

const (
	defaultHowToApply = "Apply via the official program page."
	pdfHowToApply     = "PDF resource. Review manually and apply via linked source."

	minBodyText    = 120
	autoSummaryMax = 1800
)

// Result is what enrichment derives from one fetched page.
type Result struct {
	Fields
	SourceSummary string
	AutoSummary   string
	Confidence    domain.Confidence
	FinalURL      string
	Blocked       bool
	PDF           bool
}

// Analyze turns a fetched page into the fields written back to a program.
func Analyze(page *fetch.Page) Result {
	var doc Document
	if !page.IsPDF() {
		// a parse failure leaves an empty document, which reads as blocked
		doc, _ = Extract(page.Body)
	}

	ok := page.Status >= 200 && page.Status < 300
	r := Result{
		FinalURL: page.FinalURL,
		PDF:      page.IsPDF(),
	}
	// PDF text is never extracted, so only the status can block one.
	r.Blocked = !ok
	if !r.PDF {
		r.Blocked = r.Blocked || utf8.RuneCountInString(doc.Text) < minBodyText || IsBoilerplate(doc.Text)
	}

	corpus := doc.Corpus()
	r.WhatYouGet = PickTop(corpus, WhatYouGetKeywords, DefaultBudget)
	r.Eligibility = PickTop(corpus, EligibilityKeywords, DefaultBudget)
	switch {
	case r.PDF:
		r.HowToApply = pdfHowToApply
	default:
		r.HowToApply = PickTop(corpus, HowToApplyKeywords, DefaultBudget)
		if r.HowToApply == "" {
			r.HowToApply = defaultHowToApply
		}
	}

	r.SourceSummary = doc.Description
	if r.SourceSummary == "" {
		r.SourceSummary = PickTop(corpus, summaryKeywords, summaryBudget)
	}

	r.Confidence = Confidence(r.Fields, r.Blocked, r.PDF)
	r.AutoSummary = autoSummary(page, doc, r)
	return r
}

func autoSummary(page *fetch.Page, doc Document, r Result) string {
	contentType := page.ContentType
	if contentType == "" {
		contentType = "unknown"
	}
	parts := []string{
		"HTTP: " + strconv.Itoa(page.Status),
		"Final URL: " + page.FinalURL,
		"Type: " + contentType,
	}
	if r.Blocked {
		parts = append(parts, "Blocked/low-content response detected")
	}
	if r.PDF {
		parts = append(parts, "PDF detected (manual review suggested)")
	}
	if doc.Title != "" {
		parts = append(parts, "Title: "+doc.Title)
	}
	if doc.Description != "" {
		parts = append(parts, "Meta: "+doc.Description)
	}
	s := strings.Join(parts, " | ")
	if utf8.RuneCountInString(s) > autoSummaryMax {
		s = string([]rune(s)[:autoSummaryMax])
	}
	return s
}

// ─────────────────────────────
// Batch
// ─────────────────────────────

type Store interface {
	ProgramMapping(ctx context.Context) (propmap.Mapping, error)
	ListPrograms(ctx context.Context, opts directory.ListOptions) ([]*domain.Program, error)
	UpdateProgram(ctx context.Context, id string, patch propmap.Patch) error
}

type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Page, error)
}

type Summary struct {
	Processed int  `json:"processed"`
	Enriched  int  `json:"enriched"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	High      int  `json:"high"`
	Medium    int  `json:"medium"`
	Low       int  `json:"low"`
	DryRun    bool `json:"dryRun"`
}

type Enricher struct {
	store   Store
	fetcher Fetcher
	cfg     config.Enrich
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewEnricher(store Store, fetcher Fetcher, cfg config.Enrich, log logger.Logger, m *metrics.Metrics) *Enricher {
	return &Enricher{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

func (e *Enricher) Run(ctx context.Context) (Summary, error) {
	sum := Summary{DryRun: e.cfg.DryRun}

	m, err := e.store.ProgramMapping(ctx)
	if err != nil {
		return sum, fmt.Errorf("resolve program schema: %w", err)
	}
	if !m.Has(domain.FieldApplyURL) && !m.Has(domain.FieldSourceURL) {
		return sum, fmt.Errorf("no URL property found in programs database")
	}

	opts := directory.ListOptions{Max: e.cfg.Max}
	if e.cfg.OnlyApproved {
		opts.ActiveValue = e.cfg.ActiveValue
		opts.ExcludeNeedsReview = true
	}
	programs, err := e.store.ListPrograms(ctx, opts)
	if err != nil {
		return sum, err
	}
	e.log.Info("📝 Enrichment started",
		logger.Int("programs", len(programs)),
		logger.Bool("dry_run", e.cfg.DryRun),
	)

	today := e.now().Format(propmap.DateLayout)
	for _, p := range programs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		target := p.URL()
		if target == "" {
			sum.Skipped++
			e.log.Info("Skipping program without URL", logger.String("program", p.Name))
			continue
		}

		sum.Processed++
		page, err := e.fetcher.Get(ctx, target)
		if page == nil {
			sum.Failed++
			e.log.Warn("Failed to fetch program page",
				logger.String("program", p.Name),
				logger.String("url", target),
				logger.Error(err),
			)
			continue
		}

		r := Analyze(page)
		e.metrics.PageEnriched(string(r.Confidence))
		switch r.Confidence {
		case domain.ConfidenceHigh:
			sum.High++
		case domain.ConfidenceMedium:
			sum.Medium++
		default:
			sum.Low++
		}
		if r.WhatYouGet != "" || r.Eligibility != "" || r.SourceSummary != "" {
			sum.Enriched++
		}

		patch := e.patch(m, r, today)
		if !e.cfg.DryRun {
			if err := e.store.UpdateProgram(ctx, p.ID, patch); err != nil {
				sum.Failed++
				e.log.Error("Failed to write enrichment",
					logger.String("program", p.Name),
					logger.Error(err),
				)
				continue
			}
		}

		e.log.Info("Program enriched",
			logger.String("program", p.Name),
			logger.Int("http", page.Status),
			logger.Bool("what", r.WhatYouGet != ""),
			logger.Bool("eligibility", r.Eligibility != ""),
			logger.Bool("blocked", r.Blocked),
			logger.String("confidence", string(r.Confidence)),
			logger.Bool("dry_run", e.cfg.DryRun),
		)
	}

	e.log.Info("✅ Enrichment finished",
		logger.Int("processed", sum.Processed),
		logger.Int("enriched", sum.Enriched),
		logger.Int("failed", sum.Failed),
	)
	return sum, nil
}

func (e *Enricher) patch(m propmap.Mapping, r Result, today string) propmap.Patch {
	patch := propmap.Patch{}
	patch.Set(m.Get(domain.FieldWhatYouGet), r.WhatYouGet)
	patch.Set(m.Get(domain.FieldEligibility), r.Eligibility)
	patch.Set(m.Get(domain.FieldHowToApply), r.HowToApply)
	patch.Set(m.Get(domain.FieldAutoSummary), r.AutoSummary)
	patch.Set(m.Get(domain.FieldSourceSummary), r.SourceSummary)
	patch.Set(m.Get(domain.FieldConfidence), string(r.Confidence))
	patch.Set(m.Get(domain.FieldFinalURL), r.FinalURL)
	patch.Set(m.Get(domain.FieldLastVerified), today)

	unparsed := r.WhatYouGet == "" || r.Eligibility == "" || r.HowToApply == ""
	if r.Confidence == domain.ConfidenceLow || r.Blocked || (e.cfg.FlagUnparsed && unparsed) {
		patch.Set(m.Get(domain.FieldNeedsReview), true)
	}
	return patch
}
