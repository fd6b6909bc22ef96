// Package perksgap compares a saved perks marketplace page against the
// program directory and reports the deals the directory is missing.
package perksgap

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/launchpad/internal/config"
	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
	"github.com/MrSnakeDoc/launchpad/internal/store/directory"
)

// Deal is one perk card.
type Deal struct {
	Name        string
	Slug        string
	URL         string
	Offer       string
	Description string
	SaveUpTo    string
}

// Match reasons.
const (
	ReasonExactName     = "exact-name"
	ReasonProvider      = "provider-match"
	ReasonNameContains  = "name-contains"
	ReasonContainsName  = "contains-name"
	minContainmentRunes = 6
)

var (
	parenRe    = regexp.MustCompile(`\(.*?\)`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Normalize lowercases, drops parenthesised asides and collapses anything
// that is not a letter or digit.
func Normalize(s string) string {
	s = strings.ToLower(domain.CompactText(s, 0))
	s = parenRe.ReplaceAllString(s, "")
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(s, " "))
}

// ParseDeals reads deal cards from the page. Deals without a name or slug are
// dropped; duplicates by normalized name keep the first card.
func ParseDeals(body []byte, baseURL string) ([]Deal, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse perks page: %w", err)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	var deals []Deal
	seen := make(map[string]bool)
	doc.Find("div.grid-view").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Find("a.absolute.inset-0").First().Attr("href")
		slug := slugFromHref(href)
		name := text(card.Find("p.text-md.font-semibold"))
		if name == "" || slug == "" {
			return
		}

		key := Normalize(name)
		if key == "" {
			key = Normalize(slug)
		}
		if seen[key] {
			return
		}
		seen[key] = true

		save := ""
		card.Find("p.text-gray-500").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			t := text(p)
			if rest, ok := strings.CutPrefix(t, "Save up to"); ok {
				save = strings.TrimSpace(rest)
				return false
			}
			return true
		})

		deals = append(deals, Deal{
			Name:        name,
			Slug:        slug,
			URL:         baseURL + "/" + slug,
			Offer:       text(card.Find(`p[class*="text-success-hover"]`)),
			Description: text(card.Find("p.line-clamp-2")),
			SaveUpTo:    save,
		})
	})
	return deals, nil
}

// slugFromHref takes "/slug#anchor" or "/slug?x" and returns "slug".
func slugFromHref(href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "#?"); i >= 0 {
		href = href[:i]
	}
	return strings.Trim(href, "/")
}

func text(s *goquery.Selection) string {
	return domain.CompactText(s.First().Text(), 0)
}

// MatchResult links a deal to the program that covers it.
type MatchResult struct {
	Deal    Deal
	Program *domain.Program
	Reason  string
}

// MatchDeal finds the first program that plausibly covers the deal.
func MatchDeal(d Deal, programs []*domain.Program) (MatchResult, bool) {
	dn := Normalize(d.Name)
	if dn == "" {
		return MatchResult{}, false
	}
	for _, p := range programs {
		pn := Normalize(p.Name)
		pp := Normalize(p.Provider)
		if pn == "" && pp == "" {
			continue
		}
		reason := ""
		switch {
		case pn == dn:
			reason = ReasonExactName
		case pp == dn:
			reason = ReasonProvider
		case len([]rune(dn)) >= minContainmentRunes && strings.Contains(pn, dn):
			reason = ReasonNameContains
		case len([]rune(pn)) >= minContainmentRunes && strings.Contains(dn, pn):
			reason = ReasonContainsName
		default:
			continue
		}
		return MatchResult{Deal: d, Program: p, Reason: reason}, true
	}
	return MatchResult{}, false
}

var (
	cloudRe = regexp.MustCompile(`(?i)cloud|aws|gcp|azure|digitalocean|supabase`)
	llmRe   = regexp.MustCompile(`(?i)\bai\b|openai|anthropic|hugging face|perplexity|elevenlabs`)
	salesRe = regexp.MustCompile(`(?i)hubspot|intercom|zendesk|sales|crm`)
)

// SuggestCategory guesses a directory category for a missing deal.
func SuggestCategory(d Deal) string {
	s := d.Name + " " + d.Offer
	switch {
	case cloudRe.MatchString(s):
		return "Cloud Credits"
	case llmRe.MatchString(s):
		return "LLM/API Credits"
	case salesRe.MatchString(s):
		return "Sales/Customer"
	}
	return "Needs review"
}

// ─────────────────────────────
// Report
// ─────────────────────────────

type Report struct {
	Date     string
	Source   string
	Deals    int
	Programs int
	Matched  []MatchResult
	Missing  []Deal
}

// Compare splits deals into matched and missing, missing sorted by name.
func Compare(deals []Deal, programs []*domain.Program, source string, now time.Time) Report {
	r := Report{
		Date:     now.Format("2006-01-02"),
		Source:   source,
		Deals:    len(deals),
		Programs: len(programs),
	}
	for _, d := range deals {
		if m, ok := MatchDeal(d, programs); ok {
			r.Matched = append(r.Matched, m)
			continue
		}
		r.Missing = append(r.Missing, d)
	}
	sort.SliceStable(r.Missing, func(i, j int) bool {
		return strings.ToLower(r.Missing[i].Name) < strings.ToLower(r.Missing[j].Name)
	})
	return r
}

func escape(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Perks Gap Report (%s)\n\n", r.Date)
	fmt.Fprintf(&b, "- Source file: `%s`\n", r.Source)
	fmt.Fprintf(&b, "- Perks deals parsed: **%d**\n", r.Deals)
	fmt.Fprintf(&b, "- Existing programs in directory: **%d**\n", r.Programs)
	fmt.Fprintf(&b, "- Matched deals: **%d**\n", len(r.Matched))
	fmt.Fprintf(&b, "- Missing deals to review/add: **%d**\n\n", len(r.Missing))
	b.WriteString("## Missing Deals\n\n")
	b.WriteString("| Deal | Save up to | URL | Suggested category |\n")
	b.WriteString("|---|---:|---|---|\n")
	for _, d := range r.Missing {
		save := d.SaveUpTo
		if save == "" {
			save = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | [link](%s) | %s |\n", escape(d.Name), escape(save), d.URL, SuggestCategory(d))
	}
	b.WriteString("\n## Notes\n\n")
	b.WriteString("- Matching is heuristic (name/provider containment). Review before import.\n")
	b.WriteString("- Enrich each missing row with its apply URL and eligibility before setting it Active.\n")
	return b.String()
}

// FileName is perks-gap-report-YYYY-MM-DD.md.
func (r Report) FileName() string {
	return "perks-gap-report-" + r.Date + ".md"
}

type Lister interface {
	ListPrograms(ctx context.Context, opts directory.ListOptions) ([]*domain.Program, error)
}

// Run parses the input page, compares it to every program and writes the
// report. It returns the report path.
func Run(ctx context.Context, store Lister, cfg config.PerksGap, log logger.Logger) (Report, string, error) {
	body, err := os.ReadFile(cfg.Input)
	if err != nil {
		return Report{}, "", fmt.Errorf("read perks page: %w", err)
	}
	deals, err := ParseDeals(body, cfg.BaseURL)
	if err != nil {
		return Report{}, "", err
	}
	programs, err := store.ListPrograms(ctx, directory.ListOptions{})
	if err != nil {
		return Report{}, "", err
	}

	r := Compare(deals, programs, filepath.Base(cfg.Input), time.Now())
	if err := os.MkdirAll(cfg.ReportsDir, 0o755); err != nil {
		return r, "", fmt.Errorf("create reports dir: %w", err)
	}
	out := filepath.Join(cfg.ReportsDir, r.FileName())
	if err := os.WriteFile(out, []byte(r.Markdown()), 0o644); err != nil {
		return r, "", fmt.Errorf("write %s: %w", out, err)
	}

	log.Info("🎁 Perks gap report written",
		logger.Int("deals", r.Deals),
		logger.Int("missing", len(r.Missing)),
		logger.String("path", out),
	)
	return r, out, nil
}
