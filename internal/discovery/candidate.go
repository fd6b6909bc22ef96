// Package discovery scans curated feeds and pages for new startup programs and
// files them as suggestions for human review.
package discovery

import (
	"regexp"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/keywords"
	"github.com/MrSnakeDoc/launchpad/internal/sources"
)

// Candidate is one link found on a source.
type Candidate struct {
	SourceName   string
	SourceURL    string
	Title        string
	URL          string
	Summary      string
	Published    *time.Time
	ProviderHint string
	Category     []string
	Stage        []string
	Score        int
}

// Key identifies a candidate across sources and runs.
func (c *Candidate) Key() string {
	return normalize(c.Title) + "::" + normalize(c.URL)
}

var (
	positiveKeywords = keywords.New(
		"startup", "startups", "credits", "credit", "grant", "grants", "perk", "perks",
		"accelerator", "incubator", "founder", "founders", "program", "funding",
		"non-dilutive", "student founder",
	)
	negativeKeywords = keywords.New(
		"privacy", "terms", "cookie", "job", "careers", "contact us", "login", "sign in", "unsubscribe",
	)
)

const (
	maxCategories = 5
	maxStages     = 4
	normalizeMax  = 300
)

func normalize(s string) string {
	return strings.ToLower(domain.CompactText(s, normalizeMax))
}

// Score is positive keyword hits minus negative keyword hits over title,
// summary, url and source name.
func Score(c *Candidate) int {
	body := normalize(strings.Join(nonEmpty(c.Title, c.Summary, c.URL, c.SourceName), " "))
	return positiveKeywords.Count(body) - negativeKeywords.Count(body)
}

type categoryRule struct {
	category string
	match    *regexp.Regexp
}

// Short tokens need word boundaries: "ai" would otherwise hit "email" or "maintain".
var categoryRules = []categoryRule{
	{category: "Non-Dilutive Funding", match: regexp.MustCompile(`grant|funding`)},
	{category: "Cloud Credits", match: regexp.MustCompile(`credit|cloud`)},
	{category: "LLM/API Credits", match: regexp.MustCompile(`\b(ai|llm|llms|api|apis)\b`)},
	{category: "Accelerator", match: regexp.MustCompile(`accelerator|cohort`)},
	{category: "Iowa Programs", match: regexp.MustCompile(`iowa|\bisu\b`)},
}

// InferCategory merges the source's categories with those implied by the
// candidate's text, keeping at most five.
func InferCategory(title, summary string, src sources.Source) []string {
	out := make([]string, 0, maxCategories)
	seen := make(map[string]bool, maxCategories)
	add := func(c string) {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(c))
	}

	for _, c := range src.Category {
		add(c)
	}
	body := normalize(title + " " + summary)
	for _, r := range categoryRules {
		if r.match.MatchString(body) {
			add(r.category)
		}
	}

	if len(out) > maxCategories {
		out = out[:maxCategories]
	}
	return out
}

// InferStage takes the source's stages, at most four.
func InferStage(src sources.Source) []string {
	if len(src.Stage) > maxStages {
		return append([]string(nil), src.Stage[:maxStages]...)
	}
	return append([]string(nil), src.Stage...)
}

// IsRecent reports whether published falls inside the lookback window.
// Undated candidates count as recent.
func IsRecent(published *time.Time, now time.Time, lookbackDays int) bool {
	if published == nil || published.IsZero() {
		return true
	}
	cutoff := now.Add(-time.Duration(lookbackDays) * 24 * time.Hour)
	return !published.Before(cutoff)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
