package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

const (
	// DefaultSnapshotTTL bounds how stale a warm-start snapshot may be (48 hours)
	DefaultSnapshotTTL = 48 * time.Hour
	// DefaultRunHistory is how many runs are kept per job
	DefaultRunHistory = 20
)

// ErrNoSnapshot is returned when Redis holds no catalog snapshot.
var ErrNoSnapshot = errors.New("no catalog snapshot")

// Store handles the Redis read model: catalog snapshot, job runs and the
// discovery seen-set.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ─────────────────────────────
// Catalog snapshot
// ─────────────────────────────

// SaveCatalog replaces the snapshot with programs (bulk operation).
func (s *Store) SaveCatalog(ctx context.Context, programs []*domain.Program, reloadedAt time.Time) error {
	old, err := s.client.SMembers(ctx, KeyAllPrograms).Result()
	if err != nil {
		return fmt.Errorf("failed to get snapshot IDs: %w", err)
	}

	keep := make(map[string]bool, len(programs))
	pipe := s.client.TxPipeline()
	for _, p := range programs {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal program %s: %w", p.ID, err)
		}
		keep[p.ID] = true
		pipe.Set(ctx, ProgramKey(p.ID), data, DefaultSnapshotTTL)
		pipe.SAdd(ctx, KeyAllPrograms, p.ID)
	}

	// programs gone from the database leave the snapshot too
	for _, id := range old {
		if !keep[id] {
			pipe.Del(ctx, ProgramKey(id))
			pipe.SRem(ctx, KeyAllPrograms, id)
		}
	}

	pipe.HSet(ctx, KeyCatalogMeta,
		"count", len(programs),
		"reloadedAt", reloadedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, KeyCatalogMeta, DefaultSnapshotTTL)
	pipe.Expire(ctx, KeyAllPrograms, DefaultSnapshotTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// LoadCatalog returns the snapshot and when it was taken. Programs whose key
// expired are skipped.
func (s *Store) LoadCatalog(ctx context.Context) ([]*domain.Program, time.Time, error) {
	meta, err := s.client.HGetAll(ctx, KeyCatalogMeta).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get catalog meta: %w", err)
	}
	if len(meta) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}
	reloadedAt, _ := time.Parse(time.RFC3339Nano, meta["reloadedAt"])

	ids, err := s.client.SMembers(ctx, KeyAllPrograms).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get snapshot IDs: %w", err)
	}
	if len(ids) == 0 {
		if n, _ := strconv.Atoi(meta["count"]); n == 0 {
			return []*domain.Program{}, reloadedAt, nil
		}
		return nil, time.Time{}, ErrNoSnapshot
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProgramKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get programs: %w", err)
	}

	programs := make([]*domain.Program, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var p domain.Program
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		programs = append(programs, &p)
	}
	return programs, reloadedAt, nil
}

// ─────────────────────────────
// Job runs
// ─────────────────────────────

// RecordRun pushes a run onto its job's history, keeping the newest entries.
func (s *Store) RecordRun(ctx context.Context, run *domain.JobRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	key := RunsKey(run.Job)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, DefaultRunHistory-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Runs returns up to n recent runs of a job, newest first.
func (s *Store) Runs(ctx context.Context, job string, n int) ([]*domain.JobRun, error) {
	if n <= 0 || n > DefaultRunHistory {
		n = DefaultRunHistory
	}
	values, err := s.client.LRange(ctx, RunsKey(job), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	runs := make([]*domain.JobRun, 0, len(values))
	for _, v := range values {
		var r domain.JobRun
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			continue
		}
		runs = append(runs, &r)
	}
	return runs, nil
}

// ─────────────────────────────
// Discovery seen-set
// ─────────────────────────────

// Seen reports whether discovery already handled a candidate key.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, KeyDiscoverySeen, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen-set: %w", err)
	}
	return ok, nil
}

// MarkSeen adds a candidate key to the seen-set.
func (s *Store) MarkSeen(ctx context.Context, key string) error {
	if err := s.client.SAdd(ctx, KeyDiscoverySeen, key).Err(); err != nil {
		return fmt.Errorf("failed to mark seen: %w", err)
	}
	return nil
}

// ForgetSeen empties the seen-set so the next scan re-checks the database.
func (s *Store) ForgetSeen(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyDiscoverySeen).Err(); err != nil {
		return fmt.Errorf("failed to clear seen-set: %w", err)
	}
	return nil
}
