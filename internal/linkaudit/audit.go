package linkaudit

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/fetch"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/metrics"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

// Store is the part of the directory store the auditor needs.
type Store interface {
	ProgramMapping(ctx context.Context) (propmap.Mapping, error)
	ListPrograms(ctx context.Context, opts directory.ListOptions) ([]*domain.Program, error)
	UpdateProgram(ctx context.Context, id string, patch propmap.Patch) error
}

// Checker reports where a URL lands.
type Checker interface {
	Check(ctx context.Context, rawURL string) fetch.Result
}

// Summary counts the outcomes of one audit run.
type Summary struct {
	Processed int  `json:"processed"`
	OK        int  `json:"ok"`
	Redirect  int  `json:"redirect"`
	Broken    int  `json:"broken"`
	Unknown   int  `json:"unknown"`
	Errors    int  `json:"errors"`
	DryRun    bool `json:"dryRun"`
}

func (s *Summary) count(st domain.LinkStatus) {
	s.Processed++
	switch st {
	case domain.LinkOK:
		s.OK++
	case domain.LinkRedirect:
		s.Redirect++
	case domain.LinkBroken:
		s.Broken++
	default:
		s.Unknown++
	}
}

type Auditor struct {
	store   Store
	checker Checker
	cfg     config.LinkAudit
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAuditor(store Store, checker Checker, cfg config.LinkAudit, log logger.Logger, m *metrics.Metrics) *Auditor {
	return &Auditor{
		store:   store,
		checker: checker,
		cfg:     cfg,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Run audits every active program not already flagged for review.
// A failure on one program is logged and the batch continues.
func (a *Auditor) Run(ctx context.Context) (Summary, error) {
	sum := Summary{DryRun: a.cfg.DryRun}

	m, err := a.store.ProgramMapping(ctx)
	if err != nil {
		return sum, fmt.Errorf("resolve program schema: %w", err)
	}
	if !m.Has(domain.FieldApplyURL) {
		return sum, fmt.Errorf("no link property found, set LINK_AUDIT_URL_PROP to the canonical URL column")
	}

	programs, err := a.store.ListPrograms(ctx, directory.ListOptions{
		ActiveValue:        a.cfg.ActiveValue,
		ExcludeNeedsReview: true,
		Max:                a.cfg.Max,
	})
	if err != nil {
		return sum, err
	}
	a.log.Info("🔗 Link audit started",
		logger.Int("programs", len(programs)),
		logger.Bool("dry_run", a.cfg.DryRun),
	)

	today := a.now().Format(propmap.DateLayout)
	for _, p := range programs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		patch, st, res := a.audit(ctx, m, p, today)
		sum.count(st)
		a.metrics.LinkChecked(string(st))

		fields := []logger.Field{
			logger.String("program", p.Name),
			logger.String("id", p.ID),
			logger.String("link_status", string(st)),
			logger.Int("http", res.Status),
			logger.String("final_url", res.FinalURL),
			logger.Bool("dry_run", a.cfg.DryRun),
		}
		if res.Err != nil {
			fields = append(fields, logger.Error(res.Err))
		}

		if !a.cfg.DryRun {
			if err := a.store.UpdateProgram(ctx, p.ID, patch); err != nil {
				sum.Errors++
				a.log.Error("Failed to write link audit result", append(fields, logger.Error(err))...)
				continue
			}
		}
		a.log.Info("Link checked", fields...)
	}

	a.log.Info("✅ Link audit finished",
		logger.Int("processed", sum.Processed),
		logger.Int("broken", sum.Broken),
		logger.Int("errors", sum.Errors),
	)
	return sum, nil
}

// audit checks one program and builds its write-back patch.
func (a *Auditor) audit(ctx context.Context, m propmap.Mapping, p *domain.Program, today string) (propmap.Patch, domain.LinkStatus, fetch.Result) {
	patch := propmap.Patch{}

	if p.ApplyURL == "" {
		patch.Set(m.Get(domain.FieldNeedsReview), true)
		patch.Set(m.Get(domain.FieldLinkStatus), string(domain.LinkBroken))
		patch.Set(m.Get(domain.FieldHTTPStatus), 0)
		patch.Set(m.Get(domain.FieldLastVerified), today)
		return patch, domain.LinkBroken, fetch.Result{Err: fmt.Errorf("missing url")}
	}

	res := a.checker.Check(ctx, p.ApplyURL)
	if res.FinalURL == "" {
		res.FinalURL = p.ApplyURL
	}
	st := Classify(p.ApplyURL, res.FinalURL, res.Status, res.Err)

	patch.Set(m.Get(domain.FieldLinkStatus), string(st))
	patch.Set(m.Get(domain.FieldHTTPStatus), res.Status)
	patch.Set(m.Get(domain.FieldFinalURL), res.FinalURL)
	patch.Set(m.Get(domain.FieldLastVerified), today)

	if st == domain.LinkBroken || (st == domain.LinkRedirect && a.cfg.FlagRedirectReview) {
		patch.Set(m.Get(domain.FieldNeedsReview), true)
	}
	if st == domain.LinkBroken && a.cfg.SetStatusOnBroken {
		// silently skipped when the status column has no such option
		patch.Set(m.Get(domain.FieldStatus), a.cfg.BrokenStatusValue)
	}
	return patch, st, res
}
