// Package fillpriority ranks programs by how much editorial work their offer
// description still needs.
package fillpriority

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// Gap labels, in display order.
const (
	GapWhatYouGet  = "What you get"
	GapEligibility = "Eligibility"
	GapHowToApply  = "How to apply"
)

type threshold struct{ strong, weak int }

var (
	whatYouGetMin  = threshold{strong: 120, weak: 60}
	eligibilityMin = threshold{strong: 100, weak: 50}
	howToApplyMin  = threshold{strong: 90, weak: 45}
)

// Penalties per field, 0 (complete) to 3 (missing).
type Penalties struct {
	WhatYouGet  int `json:"whatYouGet"`
	Eligibility int `json:"eligibility"`
	HowToApply  int `json:"howToApply"`
}

// Item is one program's assessment.
type Item struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Provider   string            `json:"provider"`
	Status     string            `json:"status,omitempty"`
	ApplyURL   string            `json:"applyUrl,omitempty"`
	LinkStatus domain.LinkStatus `json:"linkStatus,omitempty"`
	Confidence domain.Confidence `json:"confidence,omitempty"`
	Readiness  int               `json:"readiness"`
	Priority   int               `json:"priority"`
	Gaps       []string          `json:"gaps"`
	Penalties  Penalties         `json:"penalties"`
}

// NeedsFill reports whether any field is short of its strong threshold.
func (i Item) NeedsFill() bool { return i.Readiness < 3 }

// FieldPenalty is 0 when length reaches strong, 1 when it reaches weak,
// 2 when non-empty and 3 when empty.
func FieldPenalty(length, strong, weak int) int {
	switch {
	case length >= strong:
		return 0
	case length >= weak:
		return 1
	case length > 0:
		return 2
	}
	return 3
}

func textLen(s string) int {
	return utf8.RuneCountInString(domain.CompactText(s, 0))
}

// Assess scores one program.
func Assess(p *domain.Program) Item {
	whatLen := textLen(p.WhatYouGet)
	eligLen := textLen(p.Eligibility)
	applyLen := textLen(p.HowToApply)

	pen := Penalties{
		WhatYouGet:  FieldPenalty(whatLen, whatYouGetMin.strong, whatYouGetMin.weak),
		Eligibility: FieldPenalty(eligLen, eligibilityMin.strong, eligibilityMin.weak),
		HowToApply:  FieldPenalty(applyLen, howToApplyMin.strong, howToApplyMin.weak),
	}

	item := Item{
		ID:         p.ID,
		Name:       p.Name,
		Provider:   p.Provider,
		Status:     p.Status,
		ApplyURL:   p.ApplyURL,
		LinkStatus: p.LinkStatus,
		Confidence: p.Confidence,
		Penalties:  pen,
		Gaps:       []string{},
	}
	if item.Name == "" {
		item.Name = "Untitled"
	}
	if item.Provider == "" {
		item.Provider = "Unknown"
	}

	missing := 0
	for _, f := range []struct {
		label   string
		penalty int
	}{
		{GapWhatYouGet, pen.WhatYouGet},
		{GapEligibility, pen.Eligibility},
		{GapHowToApply, pen.HowToApply},
	} {
		item.Priority += f.penalty
		switch {
		case f.penalty == 0:
			item.Readiness++
		default:
			item.Gaps = append(item.Gaps, f.label)
		}
		if f.penalty == 3 {
			missing++
		}
	}

	if missing >= 2 {
		item.Priority += 2
	}
	if p.NeedsReview {
		item.Priority += 2
	}
	if strings.EqualFold(string(p.Confidence), string(domain.ConfidenceLow)) {
		item.Priority += 2
	}
	if strings.EqualFold(string(p.LinkStatus), string(domain.LinkBroken)) {
		item.Priority += 2
	}
	return item
}

// Rank assesses every program and orders them by priority, then name.
func Rank(programs []*domain.Program) []Item {
	items := make([]Item, 0, len(programs))
	for _, p := range programs {
		items = append(items, Assess(p))
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}
