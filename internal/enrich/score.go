package enrich

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/keywords"
)

// Keyword lists per extracted field.
var (
	WhatYouGetKeywords  = keywords.New("credit", "credits", "grant", "funding", "free", "discount", "save", "perk", "award", "stipend", "benefit")
	EligibilityKeywords = keywords.New("eligible", "eligibility", "qualify", "qualifies", "must", "requires", "requirement", "startup", "founder", "student", "company")
	HowToApplyKeywords  = keywords.New("apply", "application", "submit", "sign up", "join", "enroll", "form", "review", "approval")
	summaryKeywords     = keywords.New("program", "startup", "apply")
)

const (
	minSentence = 25
	maxSentence = 300

	// DefaultBudget caps the combined length of picked sentences.
	DefaultBudget = 380
	summaryBudget = 260
	maxPicked     = 2
)

var (
	moneyRe       = regexp.MustCompile(`(?i)\$[\d,]+|\b\d+[km]\b|\d+%`)
	programWordRe = regexp.MustCompile(`(?i)\b(apply|application|program|startup|founder|company)\b`)

	valueSignalRe      = regexp.MustCompile(`(?i)\$[\d,]+|\b\d+[km]\b|\d+%|\b(credits?|grant|funding|discount|save)\b`)
	constraintSignalRe = regexp.MustCompile(`(?i)\b(iowa|us|u\.s|student|startup|founder|company|cohort|must|requires|requirement|eligible)\b`)
	applySignalRe      = regexp.MustCompile(`(?i)\b(apply|application|submit|form|join|enroll|approval)\b`)
)

var boilerplate = keywords.New(
	"privacy policy", "terms of service", "cookie", "sign in", "create account",
	"subscribe", "all rights reserved", "javascript", "enable cookies", "menu",
)

// SplitSentences breaks text after '.', '!' or '?' followed by whitespace and
// keeps sentences of 25 to 300 characters.
func SplitSentences(text string) []string {
	var out []string
	keep := func(s string) {
		s = strings.TrimSpace(s)
		if n := utf8.RuneCountInString(s); n >= minSentence && n <= maxSentence {
			out = append(out, s)
		}
	}

	start := 0
	prevEnd := false
	for i, r := range text {
		if prevEnd && unicode.IsSpace(r) {
			keep(text[start:i])
			start = i
		}
		prevEnd = r == '.' || r == '!' || r == '?'
	}
	keep(text[start:])
	return out
}

// ScoreSentence weighs a sentence: 3 per keyword, 2 for money or numbers,
// 1 for program vocabulary.
func ScoreSentence(sentence string, kw *keywords.Matcher) int {
	score := 3 * kw.Count(strings.ToLower(sentence))
	if moneyRe.MatchString(sentence) {
		score += 2
	}
	if programWordRe.MatchString(sentence) {
		score++
	}
	return score
}

// PickTop returns up to two distinct positive-scoring sentences, best first,
// whose combined length fits the budget.
func PickTop(text string, kw *keywords.Matcher, budget int) string {
	type scored struct {
		s     string
		score int
	}
	var candidates []scored
	for _, s := range SplitSentences(text) {
		if sc := ScoreSentence(s, kw); sc > 0 {
			candidates = append(candidates, scored{s: s, score: sc})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var chosen []string
	seen := make(map[string]bool, maxPicked)
	total := 0
	for _, c := range candidates {
		key := domain.NormalizeText(c.s)
		if seen[key] {
			continue
		}
		n := utf8.RuneCountInString(c.s)
		if total+n > budget {
			continue
		}
		seen[key] = true
		chosen = append(chosen, c.s)
		total += n + 1
		if len(chosen) >= maxPicked {
			break
		}
	}
	return strings.TrimSpace(strings.Join(chosen, " "))
}

// IsBoilerplate reports empty text or text with at least two site-chrome
// phrases.
func IsBoilerplate(text string) bool {
	s := domain.NormalizeText(text)
	if s == "" {
		return true
	}
	return boilerplate.Count(s) >= 2
}

// Fields are the three extracted offer texts.
type Fields struct {
	WhatYouGet  string
	Eligibility string
	HowToApply  string
}

// Confidence rates an extraction. Blocked pages and PDFs are always Low.
func Confidence(f Fields, blocked, isPDF bool) domain.Confidence {
	if blocked || isPDF {
		return domain.ConfidenceLow
	}

	score := 0
	if utf8.RuneCountInString(f.WhatYouGet) >= 120 {
		score += 2
	}
	if valueSignalRe.MatchString(f.WhatYouGet) {
		score += 2
	}
	if utf8.RuneCountInString(f.Eligibility) >= 80 {
		score += 2
	}
	if constraintSignalRe.MatchString(f.Eligibility) {
		score += 2
	}
	if utf8.RuneCountInString(f.HowToApply) >= 40 {
		score++
	}
	if applySignalRe.MatchString(f.HowToApply) {
		score++
	}
	if IsBoilerplate(f.WhatYouGet) || IsBoilerplate(f.Eligibility) || IsBoilerplate(f.HowToApply) {
		score -= 4
	}

	switch {
	case score >= 7:
		return domain.ConfidenceHigh
	case score >= 4:
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}
