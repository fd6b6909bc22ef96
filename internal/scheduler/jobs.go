package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
)

// Trigger kinds recorded on each run.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"

	recentRuns      = 20
	historyTimeout  = 5 * time.Second
	cronParserFlags = cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow
)

var (
	ErrUnknownJob = errors.New("unknown job")
	ErrJobQueued  = errors.New("job already queued")
)

// JobFunc runs one job to completion and returns its summary.
type JobFunc func(ctx context.Context) (any, error)

// Job is a named maintenance task.
type Job struct {
	Name     string
	Schedule string // cron expression, empty = manual only
	Run      JobFunc
}

// RunRecorder keeps run history outside the process.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *domain.JobRun) error
}

// JobStatus is the runner's view of one job.
type JobStatus struct {
	Name     string         `json:"name"`
	Schedule string         `json:"schedule,omitempty"`
	Running  bool           `json:"running"`
	Queued   bool           `json:"queued"`
	Last     *domain.JobRun `json:"last,omitempty"`
}

type jobSlot struct {
	job   Job
	queue chan string // holds at most one pending trigger

	mu      sync.Mutex
	running bool
	recent  []*domain.JobRun // newest first
}

// JobRunner executes jobs on cron schedules and manual triggers. Each job has
// its own worker, so a job never overlaps with itself.
type JobRunner struct {
	mu      sync.RWMutex
	jobs    map[string]*jobSlot
	cron    *cron.Cron
	history RunRecorder
	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
}

// NewJobRunner creates a runner. history may be nil.
func NewJobRunner(history RunRecorder, log logger.Logger, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		jobs: make(map[string]*jobSlot),
		cron: cron.New(
			cron.WithParser(cron.NewParser(cronParserFlags)),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		history: history,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

// Register adds a job. It must be called before Start.
func (r *JobRunner) Register(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("register %s: runner already started", job.Name)
	}
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job needs a name and a func")
	}
	if _, dup := r.jobs[job.Name]; dup {
		return fmt.Errorf("job %s registered twice", job.Name)
	}

	slot := &jobSlot{job: job, queue: make(chan string, 1)}
	if job.Schedule != "" {
		name := job.Name
		if _, err := r.cron.AddFunc(job.Schedule, func() {
			if err := r.enqueue(slot, TriggerSchedule); err != nil {
				r.logger.Warn("scheduled run skipped",
					logger.String("job", name),
					logger.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q for %s: %w", job.Schedule, job.Name, err)
		}
	}
	r.jobs[job.Name] = slot
	return nil
}

// Start launches the workers and the cron scheduler.
func (r *JobRunner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, slot := range r.jobs {
		r.wg.Add(1)
		go r.worker(ctx, slot)
	}
	r.cron.Start()

	r.logger.Info("⏱️ Job runner started", logger.Int("jobs", len(r.jobs)))
}

// Stop halts the schedule, cancels running jobs and waits for workers.
func (r *JobRunner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	cancel := r.cancel
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	cancel()
	r.wg.Wait()
}

// Trigger queues a manual run. It fails with ErrUnknownJob or, when a run is
// already pending, ErrJobQueued.
func (r *JobRunner) Trigger(name string) error {
	r.mu.RLock()
	slot, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return ErrUnknownJob
	}
	return r.enqueue(slot, TriggerManual)
}

func (r *JobRunner) enqueue(slot *jobSlot, trigger string) error {
	select {
	case slot.queue <- trigger:
		return nil
	default:
		return ErrJobQueued
	}
}

func (r *JobRunner) worker(ctx context.Context, slot *jobSlot) {
	defer r.wg.Done()
	for {
		select {
		case trigger := <-slot.queue:
			r.execute(ctx, slot, trigger)
		case <-ctx.Done():
			return
		}
	}
}

func (r *JobRunner) execute(ctx context.Context, slot *jobSlot, trigger string) {
	run := &domain.JobRun{
		ID:        uuid.NewString(),
		Job:       slot.job.Name,
		Trigger:   trigger,
		Status:    domain.RunRunning,
		StartedAt: r.now(),
	}

	slot.mu.Lock()
	slot.running = true
	slot.mu.Unlock()
	r.metrics.JobStarted(run.Job)
	r.logger.Info("job started",
		logger.String("job", run.Job),
		logger.String("run_id", run.ID),
		logger.String("trigger", trigger))

	summary, err := r.call(ctx, slot.job.Run)

	run.FinishedAt = r.now()
	run.Status = domain.RunSucceeded
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
	}
	if summary != nil {
		if data, mErr := json.Marshal(summary); mErr == nil {
			run.Summary = data
		}
	}

	slot.mu.Lock()
	slot.running = false
	slot.recent = append([]*domain.JobRun{run}, slot.recent...)
	if len(slot.recent) > recentRuns {
		slot.recent = slot.recent[:recentRuns]
	}
	slot.mu.Unlock()

	r.metrics.JobFinished(run.Job, run.Duration(), err)
	if err != nil {
		r.logger.Error("job failed",
			logger.String("job", run.Job),
			logger.String("run_id", run.ID),
			logger.Duration("took", run.Duration()),
			logger.Error(err))
	} else {
		r.logger.Info("job finished",
			logger.String("job", run.Job),
			logger.String("run_id", run.ID),
			logger.Duration("took", run.Duration()))
	}

	if r.history != nil {
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
		defer cancel()
		if err := r.history.RecordRun(hctx, run); err != nil {
			r.logger.Warn("failed to record run in redis",
				logger.String("job", run.Job),
				logger.Error(err))
		}
	}
}

// call runs fn and turns a panic into an error.
func (r *JobRunner) call(ctx context.Context, fn JobFunc) (summary any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(ctx)
}

// Runs returns recent runs of a job, newest first.
func (r *JobRunner) Runs(name string) ([]*domain.JobRun, error) {
	r.mu.RLock()
	slot, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownJob
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	out := make([]*domain.JobRun, len(slot.recent))
	copy(out, slot.recent)
	return out, nil
}

// Status lists every job, sorted by name.
func (r *JobRunner) Status() []JobStatus {
	r.mu.RLock()
	slots := make([]*jobSlot, 0, len(r.jobs))
	for _, s := range r.jobs {
		slots = append(slots, s)
	}
	r.mu.RUnlock()

	out := make([]JobStatus, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		st := JobStatus{
			Name:     s.job.Name,
			Schedule: s.job.Schedule,
			Running:  s.running,
			Queued:   len(s.queue) > 0,
		}
		if len(s.recent) > 0 {
			st.Last = s.recent[0]
		}
		s.mu.Unlock()
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether a job is registered.
func (r *JobRunner) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.jobs[name]
	return ok
}
