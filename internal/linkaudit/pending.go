package linkaudit

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
)

const (
	pendingPrefix  = "Pending check:"
	notesMax       = 1700
	brokenProposal = "Auto-check flagged this suggestion URL as broken. Verify source before approval."
)

// SuggestionStore is the part of the directory store the pending check needs.
type SuggestionStore interface {
	SuggestionMapping(ctx context.Context) (propmap.Mapping, error)
	ListSuggestions(ctx context.Context, status string, max int) ([]*domain.Suggestion, error)
	UpdateSuggestion(ctx context.Context, id string, patch propmap.Patch) error
}

type PendingSummary struct {
	Checked int  `json:"checked"`
	Flagged int  `json:"flagged"`
	Skipped int  `json:"skipped"`
	Errors  int  `json:"errors"`
	DryRun  bool `json:"dryRun"`
}

// PendingChecker verifies the program URL of each pending suggestion and
// records the result in its notes.
type PendingChecker struct {
	store   SuggestionStore
	checker Checker
	cfg     config.PendingCheck
	log     logger.Logger
}

func NewPendingChecker(store SuggestionStore, checker Checker, cfg config.PendingCheck, log logger.Logger) *PendingChecker {
	return &PendingChecker{store: store, checker: checker, cfg: cfg, log: log}
}

func (c *PendingChecker) Run(ctx context.Context) (PendingSummary, error) {
	sum := PendingSummary{DryRun: c.cfg.DryRun}

	m, err := c.store.SuggestionMapping(ctx)
	if err != nil {
		return sum, err
	}
	rows, err := c.store.ListSuggestions(ctx, c.cfg.Status, c.cfg.Max)
	if err != nil {
		return sum, err
	}

	for _, sg := range rows {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if sg.ProgramURL == "" {
			sum.Skipped++
			continue
		}

		res := c.checker.Check(ctx, sg.ProgramURL)
		label := pendingLabel(res.Status)
		sum.Checked++
		if label != domain.LinkOK {
			sum.Flagged++
		}

		line := fmt.Sprintf("%s %s (%d)", pendingPrefix, label, res.Status)
		parts := []string{line}
		if res.FinalURL != "" {
			parts = append(parts, "Final URL: "+res.FinalURL)
		}
		if res.Err != nil {
			parts = append(parts, "Error: "+res.Err.Error())
		}

		patch := propmap.Patch{}
		patch.Set(m.Get(domain.FieldNotes), MergeNotes(sg.Notes, strings.Join(parts, " | ")))
		if label == domain.LinkBroken {
			patch.Set(m.Get(domain.FieldProposedChange), brokenProposal)
		}

		if !c.cfg.DryRun {
			if err := c.store.UpdateSuggestion(ctx, sg.ID, patch); err != nil {
				sum.Errors++
				c.log.Error("Failed to update suggestion",
					logger.String("suggestion", sg.Title),
					logger.Error(err),
				)
				continue
			}
		}
		c.log.Info("Pending suggestion checked",
			logger.String("suggestion", sg.Title),
			logger.String("result", string(label)),
			logger.Int("http", res.Status),
			logger.Bool("dry_run", c.cfg.DryRun),
		)
	}
	return sum, nil
}

// pendingLabel buckets a raw status. Leftover 3xx counts as Redirect, and no
// response at all as Broken.
func pendingLabel(status int) domain.LinkStatus {
	switch {
	case status >= 200 && status < 300:
		return domain.LinkOK
	case status >= 300 && status < 400:
		return domain.LinkRedirect
	}
	return domain.LinkBroken
}

// MergeNotes appends a check result to existing notes, replacing the result
// of an earlier check together with its Final URL and Error segments.
func MergeNotes(old, check string) string {
	var kept []string
	inCheck := false
	for _, seg := range strings.Split(old, " | ") {
		seg = strings.TrimSpace(seg)
		switch {
		case seg == "":
			continue
		case strings.HasPrefix(seg, pendingPrefix):
			inCheck = true
			continue
		case inCheck && (strings.HasPrefix(seg, "Final URL:") || strings.HasPrefix(seg, "Error:")):
			continue
		}
		inCheck = false
		kept = append(kept, seg)
	}
	kept = append(kept, check)
	return domain.CompactText(strings.Join(kept, " | "), notesMax)
}
