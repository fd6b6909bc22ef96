// Package metrics holds the Prometheus collectors for the web service and the
// maintenance jobs.
//
// A nil *Metrics is valid: every record method is a no-op, so jobs run from
// the CLI do not need a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "launchpad"

type Metrics struct {
	// Catalog snapshot
	CatalogPrograms   prometheus.Gauge
	CatalogReloads    *prometheus.CounterVec
	CatalogLastReload prometheus.Gauge

	// Jobs
	JobRuns     *prometheus.CounterVec
	JobDuration *prometheus.HistogramVec
	JobsRunning *prometheus.GaugeVec

	// Job items
	LinksChecked        *prometheus.CounterVec
	PagesEnriched       *prometheus.CounterVec
	DiscoveryCandidates *prometheus.CounterVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
	Suggestions  *prometheus.CounterVec
	RateLimited  *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{}

	m.initCatalogMetrics(factory)
	m.initJobMetrics(factory)
	m.initItemMetrics(factory)
	m.initHTTPMetrics(factory)

	return m
}

func (m *Metrics) initCatalogMetrics(factory promauto.Factory) {
	m.CatalogPrograms = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "catalog",
		Name:      "programs",
		Help:      "Number of programs in the served catalog",
	})
	m.CatalogReloads = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "catalog",
		Name:      "reloads_total",
		Help:      "Catalog reloads by result",
	}, []string{"result"})
	m.CatalogLastReload = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "catalog",
		Name:      "last_reload_timestamp_seconds",
		Help:      "Unix time of the last successful catalog reload",
	})
}

func (m *Metrics) initJobMetrics(factory promauto.Factory) {
	m.JobRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "jobs",
		Name:      "runs_total",
		Help:      "Maintenance job runs by job and result",
	}, []string{"job", "result"})
	m.JobDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "jobs",
		Name:      "duration_seconds",
		Help:      "Maintenance job duration",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14), // 0.5s to ~70min
	}, []string{"job"})
	m.JobsRunning = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "jobs",
		Name:      "running",
		Help:      "1 while a job is running",
	}, []string{"job"})
}

func (m *Metrics) initItemMetrics(factory promauto.Factory) {
	m.LinksChecked = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "link_audit",
		Name:      "links_checked_total",
		Help:      "Program links checked by resulting link status",
	}, []string{"status"})
	m.PagesEnriched = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "enrich",
		Name:      "pages_total",
		Help:      "Pages processed by enrichment, by confidence",
	}, []string{"confidence"})
	m.DiscoveryCandidates = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "discovery",
		Name:      "candidates_total",
		Help:      "Discovery candidates by outcome",
	}, []string{"outcome"})
}

func (m *Metrics) initHTTPMetrics(factory promauto.Factory) {
	m.HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status code",
	}, []string{"method", "code"})
	m.Suggestions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "suggestions_total",
		Help:      "Suggestion submissions by result",
	}, []string{"result"})
	m.RateLimited = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-IP limiter, by route scope",
	}, []string{"scope"})
}

// ─────────────────────────────
// Record helpers (nil-safe)
// ─────────────────────────────

func (m *Metrics) RecordCatalogReload(count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloads.WithLabelValues("ok").Inc()
	m.CatalogPrograms.Set(float64(count))
	m.CatalogLastReload.SetToCurrentTime()
}

func (m *Metrics) JobStarted(job string) {
	if m == nil {
		return
	}
	m.JobsRunning.WithLabelValues(job).Set(1)
}

func (m *Metrics) JobFinished(job string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobsRunning.WithLabelValues(job).Set(0)
	m.JobRuns.WithLabelValues(job, result).Inc()
	m.JobDuration.WithLabelValues(job).Observe(took.Seconds())
}

func (m *Metrics) LinkChecked(status string) {
	if m == nil {
		return
	}
	m.LinksChecked.WithLabelValues(status).Inc()
}

func (m *Metrics) PageEnriched(confidence string) {
	if m == nil {
		return
	}
	m.PagesEnriched.WithLabelValues(confidence).Inc()
}

func (m *Metrics) DiscoveryOutcome(outcome string) {
	if m == nil {
		return
	}
	m.DiscoveryCandidates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) HTTPRequest(method, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, code).Inc()
}

func (m *Metrics) Suggestion(result string) {
	if m == nil {
		return
	}
	m.Suggestions.WithLabelValues(result).Inc()
}

func (m *Metrics) RequestLimited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}
