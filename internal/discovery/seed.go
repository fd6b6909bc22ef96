package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/sources"
)

const seedURLMax = 800

type SeedLoader interface {
	Seeds() ([]sources.Seed, error)
}

type SeedSummary struct {
	Seeds   int  `json:"seeds"`
	Created int  `json:"created"`
	Skipped int  `json:"skipped"`
	Errors  int  `json:"errors"`
	DryRun  bool `json:"dryRun"`
}

// Seeder files hand-curated seeds as suggestions with the same dedupe rules
// as discovery.
type Seeder struct {
	loader  SeedLoader
	checker Checker
	store   Store
	cfg     config.Seeds
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewSeeder(loader SeedLoader, checker Checker, store Store, cfg config.Seeds, log logger.Logger, m *metrics.Metrics) *Seeder {
	return &Seeder{loader: loader, checker: checker, store: store, cfg: cfg, log: log, metrics: m}
}

func (s *Seeder) Run(ctx context.Context) (SeedSummary, error) {
	sum := SeedSummary{DryRun: s.cfg.DryRun}

	seeds, err := s.loader.Seeds()
	if err != nil {
		return sum, fmt.Errorf("load seeds: %w", err)
	}
	sum.Seeds = len(seeds)
	s.log.Info("🌱 Seeding started", logger.Int("seeds", len(seeds)), logger.Bool("dry_run", s.cfg.DryRun))

	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		title := domain.CompactText(seed.Title, suggestionTitleMax)
		link := domain.CompactText(seed.ProgramURL, seedURLMax)
		if title == "" {
			sum.Skipped++
			continue
		}

		dup, err := exists(ctx, s.store, link, title)
		if err != nil {
			sum.Errors++
			s.log.Error("Failed to check existing entries", logger.String("title", title), logger.Error(err))
			continue
		}
		if dup {
			sum.Skipped++
			s.log.Info("Seed already present", logger.String("title", title))
			continue
		}

		notes := domain.CompactText(seed.Notes, notesMax)
		if link != "" {
			checkCtx, cancel := context.WithTimeout(ctx, s.timeout())
			notes = AppendCheck(notes, "Auto-add check", s.checker.Check(checkCtx, link))
			cancel()
		}

		sg := &domain.Suggestion{
			Title:          title,
			Type:           domain.ParseSuggestionType(seed.SuggestionType),
			ProgramURL:     link,
			Provider:       domain.CompactText(seed.Provider, providerMax),
			Category:       seed.Category,
			Stage:          seed.Stage,
			EvidenceURL:    seed.EvidenceURL,
			SubmitterEmail: s.cfg.SubmitterEmail,
			Notes:          notes,
			Status:         s.cfg.Status,
		}

		if s.cfg.DryRun {
			sum.Created++
			s.log.Info("Would create suggestion", logger.String("title", title), logger.String("url", link))
			continue
		}
		id, err := s.store.CreateSuggestion(ctx, sg)
		if err != nil {
			sum.Errors++
			s.log.Error("Failed to create suggestion", logger.String("title", title), logger.Error(err))
			continue
		}
		sum.Created++
		s.metrics.Suggestion("seeded")
		s.log.Info("Suggestion created", logger.String("id", id), logger.String("title", title))
	}

	s.log.Info("✅ Seeding finished",
		logger.Int("created", sum.Created),
		logger.Int("skipped", sum.Skipped),
		logger.Int("errors", sum.Errors),
	)
	return sum, nil
}

func (s *Seeder) timeout() time.Duration {
	if s.cfg.Timeout > 0 {
		return s.cfg.Timeout
	}
	return 15 * time.Second
}
