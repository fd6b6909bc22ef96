package domain

import (
	"encoding/json"
	"time"
)

// Job run outcomes.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// JobRun records one execution of a maintenance job.
type JobRun struct {
	ID         string          `json:"id"`
	Job        string          `json:"job"`
	Trigger    string          `json:"trigger"` // "schedule" | "manual"
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt,omitempty"`
	Error      string          `json:"error,omitempty"`
	Summary    json.RawMessage `json:"summary,omitempty"`
}

// Duration is zero while the run is in flight.
func (r *JobRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
