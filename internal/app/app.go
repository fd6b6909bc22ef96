package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/index"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
	"github.com/MrSnakeDoc/launchpad/internal/version"
)

// Job names accepted by the runner and the admin trigger route.
const (
	JobCatalog   = "catalog"
	JobLinkAudit = "link-audit"
	JobEnrich    = "enrich"
	JobDiscover  = "discover"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	tk       *Toolkit
	server   *httpserver.Server
	memIndex *index.MemoryIndex
	reloader *scheduler.CatalogReloader
	runner   *scheduler.JobRunner
}

func New() *App {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	m := metrics.New(prometheus.DefaultRegisterer)

	tk := NewToolkit(context.Background(), cfg, loggerClient, m)

	memIndex := index.NewMemoryIndex()

	// Warm the index from the last snapshot so a database outage at boot
	// still serves something.
	var snapshot scheduler.SnapshotWriter
	var history scheduler.RunRecorder
	var redisPing deps.Pinger
	if tk.Redis != nil {
		syncer := scheduler.NewRedisSyncer(tk.Redis, memIndex, loggerClient)
		if err := syncer.Sync(context.Background()); err != nil {
			loggerClient.Warn("failed to sync from redis on startup, will load from database",
				logger.Error(err))
		}
		snapshot, history, redisPing = tk.Redis, tk.Redis, tk.Redis
	}

	reloader := scheduler.NewCatalogReloader(
		tk.Directory,
		snapshot,
		memIndex,
		loggerClient,
		m,
		cfg.CatalogReloadInterval,
		cfg.ActiveStatusValue,
	)

	runner := scheduler.NewJobRunner(history, loggerClient, m)
	if err := registerJobs(runner, tk, reloader); err != nil {
		loggerClient.Errorf("Failed to register jobs: %v", err)
		os.Exit(1)
	}

	var suggestions deps.SuggestionWriter
	if tk.Directory.HasSuggestions() {
		suggestions = tk.Directory
	} else {
		loggerClient.Info("suggestions database not configured, suggestion intake disabled")
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		SuggestLimit:  cfg.SuggestLimit,
		FeedbackLimit: cfg.FeedbackLimit,
		Catalog:       memIndex,
		Suggestions:   suggestions,
		Jobs:          runner,
		Redis:         redisPing,
		Metrics:       m,
		Gatherer:      prometheus.DefaultGatherer,
		FillTop:       config.LoadFillAudit().TopN,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		tk:       tk,
		server:   httpserver.New(cfg, loggerClient, d),
		memIndex: memIndex,
		reloader: reloader,
		runner:   runner,
	}
}

// registerJobs wires the maintenance jobs. The catalog job has no cron entry;
// the reloader's own ticker refreshes it.
func registerJobs(runner *scheduler.JobRunner, tk *Toolkit, reloader *scheduler.CatalogReloader) error {
	jobs := []scheduler.Job{
		{Name: JobCatalog, Run: reloader.RunJob},
		{Name: JobLinkAudit, Schedule: tk.Config.LinkAuditSchedule, Run: func(ctx context.Context) (any, error) {
			return tk.LinkAuditor().Run(ctx)
		}},
		{Name: JobEnrich, Schedule: tk.Config.EnrichSchedule, Run: func(ctx context.Context) (any, error) {
			return tk.Enricher().Run(ctx)
		}},
	}
	if tk.Directory.HasSuggestions() {
		jobs = append(jobs, scheduler.Job{Name: JobDiscover, Schedule: tk.Config.DiscoverySchedule, Run: func(ctx context.Context) (any, error) {
			scanner, err := tk.Scanner()
			if err != nil {
				return nil, err
			}
			return scanner.Run(ctx)
		}})
	}

	for _, job := range jobs {
		if err := runner.Register(job); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Launchpad v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Launchpad %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start catalog reloader (loads programs and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.Duration("interval", a.cfg.CatalogReloadInterval))

	a.runner.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.runner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.tk.Close()

	a.logger.Info("✅ Launchpad stopped cleanly")
	return nil
}
