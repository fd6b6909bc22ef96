package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/index"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
	redisstore "github.com/MrSnakeDoc/launchpad/internal/store/redis"
)

// ─────────────────────────────
// Catalog reload
// ─────────────────────────────

type fakeSource struct {
	programs []*domain.Program
	err      error
	opts     directory.ListOptions
	calls    int
	resets   int
}

func (f *fakeSource) InvalidateSchema() { f.resets++ }

func (f *fakeSource) ListPrograms(_ context.Context, opts directory.ListOptions) ([]*domain.Program, error) {
	f.calls++
	f.opts = opts
	return f.programs, f.err
}

type fakeSnapshot struct {
	saved    []*domain.Program
	programs []*domain.Program
	at       time.Time
	err      error
}

func (f *fakeSnapshot) SaveCatalog(_ context.Context, programs []*domain.Program, _ time.Time) error {
	f.saved = programs
	return f.err
}

func (f *fakeSnapshot) LoadCatalog(context.Context) ([]*domain.Program, time.Time, error) {
	return f.programs, f.at, f.err
}

func TestCatalogReloaderReload(t *testing.T) {
	source := &fakeSource{programs: []*domain.Program{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}
	snap := &fakeSnapshot{}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(source, snap, idx, logger.New("error", false), nil, time.Hour, "Active")

	sum, err := cr.RunJob(context.Background())
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if got := sum.(CatalogSummary); got.Programs != 2 || !got.Saved {
		t.Errorf("summary = %+v", got)
	}
	if idx.Count() != 2 || len(snap.saved) != 2 {
		t.Errorf("index %d, redis %d; want 2 and 2", idx.Count(), len(snap.saved))
	}
	if source.opts.ActiveValue != "Active" || !source.opts.ExcludeNeedsReview {
		t.Errorf("list options = %+v", source.opts)
	}
	if source.resets != 1 {
		t.Errorf("schema resets = %d, want 1", source.resets)
	}
}

func TestCatalogReloaderRedisFailureIsNotFatal(t *testing.T) {
	source := &fakeSource{programs: []*domain.Program{{ID: "a", Name: "A"}}}
	snap := &fakeSnapshot{err: errors.New("redis down")}
	idx := index.NewMemoryIndex()
	cr := NewCatalogReloader(source, snap, idx, logger.New("error", false), nil, time.Hour, "Active")

	if err := cr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if idx.Count() != 1 {
		t.Errorf("index not updated")
	}
}

func TestCatalogReloaderStart(t *testing.T) {
	log := logger.New("error", false)

	t.Run("cold start failure", func(t *testing.T) {
		source := &fakeSource{err: errors.New("database unreachable")}
		cr := NewCatalogReloader(source, nil, index.NewMemoryIndex(), log, nil, time.Hour, "Active")
		if err := cr.Start(context.Background()); err == nil {
			t.Fatal("expected error without a warm snapshot")
		}
	})

	t.Run("warm start survives failure", func(t *testing.T) {
		idx := index.NewMemoryIndex()
		idx.Replace([]*domain.Program{{ID: "w", Name: "Warm"}}, time.Now())

		source := &fakeSource{err: errors.New("database unreachable")}
		cr := NewCatalogReloader(source, nil, idx, log, nil, time.Hour, "Active")
		if err := cr.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		defer cr.Stop()
		if idx.Count() != 1 {
			t.Error("warm snapshot lost")
		}
	})
}

func TestRedisSyncer(t *testing.T) {
	log := logger.New("error", false)
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("warms index", func(t *testing.T) {
		idx := index.NewMemoryIndex()
		snap := &fakeSnapshot{programs: []*domain.Program{{ID: "a", Name: "A"}}, at: at}
		if err := NewRedisSyncer(snap, idx, log).Sync(context.Background()); err != nil {
			t.Fatal(err)
		}
		if idx.Count() != 1 || !idx.GetLastReload().Equal(at) {
			t.Errorf("index = %d programs at %v", idx.Count(), idx.GetLastReload())
		}
	})

	t.Run("no snapshot", func(t *testing.T) {
		idx := index.NewMemoryIndex()
		snap := &fakeSnapshot{err: redisstore.ErrNoSnapshot}
		if err := NewRedisSyncer(snap, idx, log).Sync(context.Background()); err != nil {
			t.Fatalf("missing snapshot should not fail: %v", err)
		}
		if idx.Loaded() {
			t.Error("index should stay empty")
		}
	})

	t.Run("redis error", func(t *testing.T) {
		snap := &fakeSnapshot{err: errors.New("timeout")}
		if err := NewRedisSyncer(snap, index.NewMemoryIndex(), log).Sync(context.Background()); err == nil {
			t.Error("expected error")
		}
	})
}

// ─────────────────────────────
// Job runner
// ─────────────────────────────

type memoryHistory struct {
	mu   sync.Mutex
	runs []*domain.JobRun
}

func (m *memoryHistory) RecordRun(_ context.Context, run *domain.JobRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryHistory) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestJobRunnerRegister(t *testing.T) {
	r := NewJobRunner(nil, logger.New("error", false), nil)
	noop := func(context.Context) (any, error) { return nil, nil }

	if err := r.Register(Job{Name: "a", Run: noop}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Job{Name: "a", Run: noop}); err == nil {
		t.Error("duplicate name accepted")
	}
	if err := r.Register(Job{Name: "b", Schedule: "not a cron", Run: noop}); err == nil {
		t.Error("invalid schedule accepted")
	}
	if err := r.Register(Job{Name: "c", Schedule: "0 3 * * *", Run: noop}); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}
	if err := r.Register(Job{Name: "d"}); err == nil {
		t.Error("job without func accepted")
	}
	if !r.Has("c") || r.Has("b") {
		t.Error("Has() disagrees with registrations")
	}
}

func TestJobRunnerTrigger(t *testing.T) {
	history := &memoryHistory{}
	r := NewJobRunner(history, logger.New("error", false), nil)

	type result struct {
		Processed int `json:"processed"`
	}
	if err := r.Register(Job{Name: "link-audit", Run: func(context.Context) (any, error) {
		return result{Processed: 3}, nil
	}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Job{Name: "enrich", Run: func(context.Context) (any, error) {
		return nil, errors.New("notion 502")
	}}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(Job{Name: "boom", Run: func(context.Context) (any, error) {
		panic("bad input")
	}}); err != nil {
		t.Fatal(err)
	}

	r.Start(context.Background())
	defer r.Stop()

	if err := r.Trigger("missing"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("Trigger(missing) = %v, want ErrUnknownJob", err)
	}
	for _, name := range []string{"link-audit", "enrich", "boom"} {
		if err := r.Trigger(name); err != nil {
			t.Fatalf("Trigger(%s): %v", name, err)
		}
	}
	waitFor(t, func() bool { return history.count() == 3 })

	runs, err := r.Runs("link-audit")
	if err != nil || len(runs) != 1 {
		t.Fatalf("Runs() = %v, %v", runs, err)
	}
	run := runs[0]
	if run.Status != domain.RunSucceeded || run.Trigger != TriggerManual || run.ID == "" {
		t.Errorf("unexpected run: %+v", run)
	}
	if string(run.Summary) != `{"processed":3}` {
		t.Errorf("summary = %s", run.Summary)
	}

	failed, _ := r.Runs("enrich")
	if failed[0].Status != domain.RunFailed || failed[0].Error != "notion 502" {
		t.Errorf("failed run = %+v", failed[0])
	}
	panicked, _ := r.Runs("boom")
	if panicked[0].Status != domain.RunFailed {
		t.Errorf("panic not recorded as failure: %+v", panicked[0])
	}

	status := r.Status()
	if len(status) != 3 || status[0].Name != "boom" || status[2].Last == nil {
		t.Errorf("Status() = %+v", status)
	}
}

func TestJobRunnerNeverOverlaps(t *testing.T) {
	r := NewJobRunner(nil, logger.New("error", false), nil)

	var active, maxActive, total int32
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	if err := r.Register(Job{Name: "discover", Run: func(context.Context) (any, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		started <- struct{}{}
		<-release
		atomic.AddInt32(&active, -1)
		atomic.AddInt32(&total, 1)
		return nil, nil
	}}); err != nil {
		t.Fatal(err)
	}
	r.Start(context.Background())
	defer r.Stop()

	if err := r.Trigger("discover"); err != nil {
		t.Fatal(err)
	}
	<-started

	// one run in flight: the next trigger queues, the one after is refused
	if err := r.Trigger("discover"); err != nil {
		t.Fatalf("second trigger: %v", err)
	}
	if err := r.Trigger("discover"); !errors.Is(err, ErrJobQueued) {
		t.Fatalf("third trigger = %v, want ErrJobQueued", err)
	}

	close(release)
	waitFor(t, func() bool { return atomic.LoadInt32(&total) == 2 })

	if maxActive != 1 {
		t.Errorf("max concurrent runs = %d, want 1", maxActive)
	}
}

func TestJobRunnerStopCancelsRun(t *testing.T) {
	r := NewJobRunner(nil, logger.New("error", false), nil)
	started := make(chan struct{})
	if err := r.Register(Job{Name: "enrich", Run: func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}); err != nil {
		t.Fatal(err)
	}
	r.Start(context.Background())
	if err := r.Trigger("enrich"); err != nil {
		t.Fatal(err)
	}
	<-started

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop() did not cancel the running job")
	}

	runs, _ := r.Runs("enrich")
	if len(runs) != 1 || runs[0].Error != context.Canceled.Error() {
		t.Errorf("runs = %+v", runs)
	}
}
