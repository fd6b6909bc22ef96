package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/index"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

// ProgramSource lists programs from the authoritative database.
type ProgramSource interface {
	ListPrograms(ctx context.Context, opts directory.ListOptions) ([]*domain.Program, error)
}

// SnapshotWriter persists the catalog snapshot for warm starts.
type SnapshotWriter interface {
	SaveCatalog(ctx context.Context, programs []*domain.Program, reloadedAt time.Time) error
}

// CatalogReloader periodically rebuilds the catalog snapshot
type CatalogReloader struct {
	source      ProgramSource
	store       SnapshotWriter
	index       *index.MemoryIndex
	logger      logger.Logger
	metrics     *metrics.Metrics
	interval    time.Duration
	activeValue string
	stopCh      chan struct{}
	reloadMu    sync.Mutex
	now         func() time.Time
}

// NewCatalogReloader creates a new catalog reloader. store may be nil.
func NewCatalogReloader(
	source ProgramSource,
	store SnapshotWriter,
	idx *index.MemoryIndex,
	log logger.Logger,
	m *metrics.Metrics,
	interval time.Duration,
	activeValue string,
) *CatalogReloader {
	return &CatalogReloader{
		source:      source,
		store:       store,
		index:       idx,
		logger:      log,
		metrics:     m,
		interval:    interval,
		activeValue: activeValue,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}
}

// Start reloads once, then on every tick. A failed first reload is fatal
// only when no warm snapshot was installed beforehand.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		if !cr.index.Loaded() {
			return fmt.Errorf("initial reload failed: %w", err)
		}
		cr.logger.Warn("initial reload failed, serving warm snapshot",
			logger.Int("programs", cr.index.Count()),
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// CatalogSummary is what a reload reports to the job runner.
type CatalogSummary struct {
	Programs int  `json:"programs"`
	Saved    bool `json:"savedToRedis"`
}

// Reload lists listed programs and installs them as the new snapshot.
// Concurrent calls are serialized.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	_, err := cr.reload(ctx)
	return err
}

// schemaInvalidator is implemented by sources that cache database schemas.
type schemaInvalidator interface {
	InvalidateSchema()
}

// RunJob adapts Reload to the job runner. A triggered reload also drops any
// cached schema so renamed properties are picked up without a restart.
func (cr *CatalogReloader) RunJob(ctx context.Context) (any, error) {
	if inv, ok := cr.source.(schemaInvalidator); ok {
		inv.InvalidateSchema()
	}
	return cr.reload(ctx)
}

func (cr *CatalogReloader) reload(ctx context.Context) (CatalogSummary, error) {
	cr.reloadMu.Lock()
	defer cr.reloadMu.Unlock()

	cr.logger.Info("reloading catalog from database")

	programs, err := cr.source.ListPrograms(ctx, directory.ListOptions{
		ActiveValue:        cr.activeValue,
		ExcludeNeedsReview: true,
	})
	cr.metrics.RecordCatalogReload(len(programs), err)
	if err != nil {
		return CatalogSummary{}, fmt.Errorf("failed to list programs: %w", err)
	}

	at := cr.now()
	cr.index.Replace(programs, at)
	cr.logger.Info("catalog reloaded",
		logger.Int("count", len(programs)))

	sum := CatalogSummary{Programs: len(programs)}

	// Redis is best effort; the memory index is what the API serves
	if cr.store != nil {
		if err := cr.store.SaveCatalog(ctx, programs, at); err != nil {
			cr.logger.Warn("failed to save catalog to redis",
				logger.Error(err))
		} else {
			sum.Saved = true
		}
	}
	return sum, nil
}
