package discovery

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/fetch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/sources"
)

const (
	notesMax    = 1800
	providerMax = 160
	// suggestionTitleMax caps filed titles. Duplicate lookups use the same
	// cap so a long title still matches its stored copy.
	suggestionTitleMax = 180
)

// ─────────────────────────────
// Collaborators
// ─────────────────────────────

type SourceLoader interface {
	Sources() ([]sources.Source, error)
}

type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Page, error)
}

type Checker interface {
	Check(ctx context.Context, rawURL string) fetch.Result
}

// Store is the directory subset needed to dedupe and file suggestions.
type Store interface {
	SuggestionExists(ctx context.Context, rawURL, title string) (bool, error)
	ProgramExists(ctx context.Context, rawURL, name string) (bool, error)
	CreateSuggestion(ctx context.Context, sg *domain.Suggestion) (string, error)
}

// SeenSet remembers candidate keys between runs. It only short-circuits;
// the directory stays the source of truth.
type SeenSet interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string) error
}

type Summary struct {
	Sources       int  `json:"sources"`
	SourcesFailed int  `json:"sourcesFailed"`
	Candidates    int  `json:"candidates"`
	Created       int  `json:"created"`
	Skipped       int  `json:"skipped"`
	Seen          int  `json:"seen"`
	Errors        int  `json:"errors"`
	DryRun        bool `json:"dryRun"`
}

type Scanner struct {
	loader  SourceLoader
	fetcher Fetcher
	checker Checker
	store   Store
	seen    SeenSet
	cfg     config.Discovery
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewScanner(loader SourceLoader, fetcher Fetcher, checker Checker, store Store, cfg config.Discovery, log logger.Logger, m *metrics.Metrics) *Scanner {
	return &Scanner{
		loader:  loader,
		fetcher: fetcher,
		checker: checker,
		store:   store,
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// WithSeenSet enables the cross-run candidate cache.
func (s *Scanner) WithSeenSet(seen SeenSet) *Scanner {
	s.seen = seen
	return s
}

// ─────────────────────────────
// Run
// ─────────────────────────────

func (s *Scanner) Run(ctx context.Context) (Summary, error) {
	sum := Summary{DryRun: s.cfg.DryRun}

	srcs, err := s.loader.Sources()
	if err != nil {
		return sum, fmt.Errorf("load discovery sources: %w", err)
	}
	sum.Sources = len(srcs)
	s.log.Info("🔎 Discovery started",
		logger.Int("sources", len(srcs)),
		logger.Bool("dry_run", s.cfg.DryRun),
	)

	var all []Candidate
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		found, err := s.collect(ctx, src)
		if err != nil {
			sum.SourcesFailed++
			s.log.Warn("Failed to scan source",
				logger.String("source", src.Name),
				logger.String("url", src.URL),
				logger.Error(err),
			)
			continue
		}
		all = append(all, found...)
	}

	candidates := s.rank(all)
	sum.Candidates = len(candidates)

	for i := range candidates {
		if sum.Created >= s.cfg.MaxItems {
			break
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		s.consider(ctx, &candidates[i], &sum)
	}

	s.log.Info("✅ Discovery finished",
		logger.Int("candidates", sum.Candidates),
		logger.Int("created", sum.Created),
		logger.Int("skipped", sum.Skipped),
		logger.Int("errors", sum.Errors),
	)
	return sum, nil
}

func (s *Scanner) collect(ctx context.Context, src sources.Source) ([]Candidate, error) {
	page, err := s.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if src.Kind == sources.KindRSS {
		return ParseFeed(page.Body, src)
	}
	return ParseLinks(page.Body, src)
}

// rank keeps recent, relevant, distinct candidates, best first.
func (s *Scanner) rank(all []Candidate) []Candidate {
	now := s.now()
	keys := make(map[string]bool, len(all))
	out := make([]Candidate, 0, len(all))
	for _, c := range all {
		key := c.Key()
		if keys[key] {
			continue
		}
		keys[key] = true

		if !IsRecent(c.Published, now, s.cfg.LookbackDays) {
			continue
		}
		c.Score = Score(&c)
		if c.Score < s.cfg.MinScore {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (s *Scanner) consider(ctx context.Context, c *Candidate, sum *Summary) {
	key := c.Key()
	if s.seen != nil {
		seen, err := s.seen.Seen(ctx, key)
		if err != nil {
			s.log.Warn("Seen-set lookup failed", logger.String("key", key), logger.Error(err))
		}
		if seen {
			sum.Seen++
			s.metrics.DiscoveryOutcome("seen")
			return
		}
	}

	title := domain.CompactText(c.Title, suggestionTitleMax)
	dup, err := exists(ctx, s.store, c.URL, title)
	if err != nil {
		sum.Errors++
		s.metrics.DiscoveryOutcome("error")
		s.log.Error("Failed to check existing entries",
			logger.String("title", c.Title),
			logger.Error(err),
		)
		return
	}
	if dup {
		sum.Skipped++
		s.metrics.DiscoveryOutcome("duplicate")
		s.markSeen(ctx, key)
		s.log.Debug("Candidate already known", logger.String("title", c.Title))
		return
	}

	check := s.checker.Check(ctx, c.URL)
	sg := &domain.Suggestion{
		Title:          title,
		Type:           domain.SuggestNewProgram,
		ProgramURL:     c.URL,
		Provider:       domain.CompactText(c.ProviderHint, providerMax),
		Category:       c.Category,
		Stage:          c.Stage,
		EvidenceURL:    firstNonEmpty(c.SourceURL, c.URL),
		SubmitterEmail: s.cfg.SubmitterEmail,
		Notes:          AppendCheck(candidateNotes(c), "Auto-discovery URL check", check),
		Status:         s.cfg.Status,
	}

	if s.cfg.DryRun {
		sum.Created++
		s.log.Info("Would create suggestion",
			logger.String("title", c.Title),
			logger.String("url", c.URL),
			logger.Int("score", c.Score),
			logger.Int("http", check.Status),
		)
		return
	}

	id, err := s.store.CreateSuggestion(ctx, sg)
	if err != nil {
		sum.Errors++
		s.metrics.DiscoveryOutcome("error")
		s.log.Error("Failed to create suggestion",
			logger.String("title", c.Title),
			logger.Error(err),
		)
		return
	}
	sum.Created++
	s.metrics.DiscoveryOutcome("created")
	s.metrics.Suggestion("created")
	s.markSeen(ctx, key)
	s.log.Info("Suggestion created",
		logger.String("id", id),
		logger.String("title", c.Title),
		logger.Int("score", c.Score),
		logger.Int("http", check.Status),
	)
}

func (s *Scanner) markSeen(ctx context.Context, key string) {
	if s.seen == nil || s.cfg.DryRun {
		return
	}
	if err := s.seen.MarkSeen(ctx, key); err != nil {
		s.log.Warn("Seen-set write failed", logger.String("key", key), logger.Error(err))
	}
}

// exists is the shared dedupe rule: any suggestion or program with the same
// URL or normalized title.
func exists(ctx context.Context, store Store, rawURL, title string) (bool, error) {
	dup, err := store.SuggestionExists(ctx, rawURL, title)
	if err != nil || dup {
		return dup, err
	}
	return store.ProgramExists(ctx, rawURL, title)
}

func candidateNotes(c *Candidate) string {
	parts := []string{
		"Auto-discovery candidate from curated source.",
		"Source: " + c.SourceName,
	}
	if c.SourceURL != "" {
		parts = append(parts, "Source URL: "+c.SourceURL)
	}
	if c.Published != nil {
		parts = append(parts, "Published: "+c.Published.UTC().Format(time.RFC3339))
	}
	parts = append(parts, "Score: "+strconv.Itoa(c.Score))
	if c.Summary != "" {
		parts = append(parts, "Summary: "+c.Summary)
	}
	return domain.CompactText(strings.Join(parts, " | "), notesMax)
}

// AppendCheck adds a reachability line to notes.
func AppendCheck(notes, label string, r fetch.Result) string {
	parts := []string{label + ": HTTP " + strconv.Itoa(r.Status)}
	if r.FinalURL != "" {
		parts = append(parts, "Final URL: "+r.FinalURL)
	}
	if r.Err != nil {
		parts = append(parts, "Error: "+r.Err.Error())
	}
	line := strings.Join(parts, " | ")
	if strings.TrimSpace(notes) == "" {
		return domain.CompactText(line, notesMax)
	}
	return domain.CompactText(notes+" | "+line, notesMax)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
