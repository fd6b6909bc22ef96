package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/fillpriority"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/scheduler"
)

type triggerResponse struct {
	OK  bool   `json:"ok"`
	Job string `json:"job"`
}

type runsResponse struct {
	OK   bool             `json:"ok"`
	Job  string           `json:"job"`
	Runs []*domain.JobRun `json:"runs"`
}

type jobsResponse struct {
	OK   bool                  `json:"ok"`
	Jobs []scheduler.JobStatus `json:"jobs"`
}

// FillPriority computes the fill-priority report from the snapshot.
// ?format=md returns the Markdown table.
func FillPriority(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := fillpriority.Build(d.Catalog.All(), d.FillTop, d.Now())

		if r.URL.Query().Get("format") == "md" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			if err := report.WriteMarkdown(w); err != nil {
				d.Logger.Debug("failed to write report", logger.Error(err))
			}
			return
		}
		writeJSON(w, http.StatusOK, report, d.Logger)
	}
}

// TriggerJob queues a manual run of a maintenance job.
func TriggerJob(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")

		err := d.Jobs.Trigger(name)
		switch {
		case errors.Is(err, scheduler.ErrUnknownJob):
			writeError(w, http.StatusNotFound, "Unknown job", d.Logger)
		case errors.Is(err, scheduler.ErrJobQueued):
			d.Logger.Warn("job already queued",
				logger.String("job", name),
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "Job already queued, please wait", d.Logger)
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error(), d.Logger)
		default:
			d.Logger.Info("manual job triggered via endpoint",
				logger.String("job", name),
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, triggerResponse{OK: true, Job: name}, d.Logger)
		}
	}
}

// Jobs lists every job with its last run.
func Jobs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, jobsResponse{OK: true, Jobs: d.Jobs.Status()}, d.Logger)
	}
}

// JobRuns lists the recent runs of one job, newest first.
func JobRuns(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		runs, err := d.Jobs.Runs(name)
		if errors.Is(err, scheduler.ErrUnknownJob) {
			writeError(w, http.StatusNotFound, "Unknown job", d.Logger)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error(), d.Logger)
			return
		}
		if runs == nil {
			runs = []*domain.JobRun{}
		}
		writeJSON(w, http.StatusOK, runsResponse{OK: true, Job: name, Runs: runs}, d.Logger)
	}
}
