package app

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/discovery"
	"github.com/MrSnakeDoc/launchpad/internal/enrich"
	"github.com/MrSnakeDoc/launchpad/internal/fetch"
	"github.com/MrSnakeDoc/launchpad/internal/linkaudit"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/redis"
	"github.com/MrSnakeDoc/launchpad/internal/sources"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
	redisstore "github.com/MrSnakeDoc/launchpad/internal/store/redis"
)

// Toolkit holds the clients every entry point builds from config and hands
// out the maintenance jobs wired to them. The server and the CLI share it.
type Toolkit struct {
	Config    *config.Config
	Logger    logger.Logger
	Metrics   *metrics.Metrics // nil outside the server
	Directory *directory.Store
	Redis     *redisstore.Store // nil when disabled or unreachable

	redisClient *goredis.Client
}

// NewToolkit builds the database store and, when configured, connects Redis.
// An unreachable Redis is logged and skipped; everything works without it.
func NewToolkit(ctx context.Context, cfg *config.Config, log logger.Logger, m *metrics.Metrics) *Toolkit {
	api := notion.NewClient(notion.Options{
		BaseURL: cfg.NotionBaseURL,
		Token:   cfg.NotionToken,
		Version: cfg.NotionVersion,
		Timeout: cfg.NotionTimeout,
	})
	t := &Toolkit{
		Config:  cfg,
		Logger:  log,
		Metrics: m,
		Directory: directory.NewStore(api, directory.Options{
			ProgramsDB:       cfg.NotionProgramsDB,
			SuggestionsDB:    cfg.NotionSuggestionsDB,
			ProgramOverrides: cfg.ProgramOverrides,
		}),
	}

	client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), log)
	switch {
	case errors.Is(err, redis.ErrDisabled):
		log.Info("redis not configured, running without snapshot cache")
	case err != nil:
		log.Warn("redis unavailable, running without snapshot cache",
			logger.Error(err))
	default:
		t.redisClient = client
		t.Redis = redisstore.NewStore(client)
	}
	return t
}

// Close releases the Redis connection.
func (t *Toolkit) Close() {
	if t.redisClient == nil {
		return
	}
	if err := t.redisClient.Close(); err != nil {
		t.Logger.Warnf("failed to close redis: %v", err)
		return
	}
	t.Logger.Info("✅ Redis closed cleanly")
}

// LinkAuditor checks every listed program's apply link.
func (t *Toolkit) LinkAuditor() *linkaudit.Auditor {
	cfg := config.LoadLinkAudit()
	return linkaudit.NewAuditor(t.Directory, fetch.New(fetch.Options{Timeout: cfg.Timeout}), cfg, t.Logger, t.Metrics)
}

// Enricher rewrites offer text from program pages.
func (t *Toolkit) Enricher() *enrich.Enricher {
	cfg := config.LoadEnrich()
	return enrich.NewEnricher(t.Directory, fetch.New(fetch.Options{Timeout: cfg.Timeout}), cfg, t.Logger, t.Metrics)
}

// Scanner files new program suggestions from the curated sources.
func (t *Toolkit) Scanner() (*discovery.Scanner, error) {
	if err := t.Config.RequireSuggestionsDB(); err != nil {
		return nil, err
	}
	cfg := config.LoadDiscovery()
	client := fetch.New(fetch.Options{Timeout: cfg.Timeout})
	s := discovery.NewScanner(sources.NewLoader(cfg.SourcesFile), client, client, t.Directory, cfg, t.Logger, t.Metrics)
	if t.Redis != nil {
		s = s.WithSeenSet(t.Redis)
	}
	return s, nil
}

// Seeder files the hand-curated suggestion seeds.
func (t *Toolkit) Seeder() (*discovery.Seeder, error) {
	if err := t.Config.RequireSuggestionsDB(); err != nil {
		return nil, err
	}
	cfg := config.LoadSeeds()
	client := fetch.New(fetch.Options{Timeout: cfg.Timeout})
	return discovery.NewSeeder(sources.NewLoader(cfg.File), client, t.Directory, cfg, t.Logger, t.Metrics), nil
}

// PendingChecker re-checks the links of suggestions awaiting review.
func (t *Toolkit) PendingChecker() (*linkaudit.PendingChecker, error) {
	if err := t.Config.RequireSuggestionsDB(); err != nil {
		return nil, err
	}
	cfg := config.LoadPendingCheck()
	return linkaudit.NewPendingChecker(t.Directory, fetch.New(fetch.Options{Timeout: cfg.Timeout}), cfg, t.Logger), nil
}
