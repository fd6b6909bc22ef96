// Package keywords counts keyword hits in text with an Aho-Corasick automaton.
package keywords

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Matcher counts how many distinct words of a fixed list occur in a text.
// Words are matched as lowercase substrings.
type Matcher struct {
	mu      sync.Mutex // ahocorasick.Matcher mutates state on Match
	matcher *ahocorasick.Matcher
	words   []string
}

// New builds a matcher over words.
func New(words ...string) *Matcher {
	lower := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lower = append(lower, w)
		}
	}
	return &Matcher{
		matcher: ahocorasick.NewStringMatcher(lower),
		words:   lower,
	}
}

// Count returns the number of distinct words found in text. The caller
// lowercases text.
func (m *Matcher) Count(text string) int {
	if m == nil || len(m.words) == 0 || text == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matcher.Match([]byte(text)))
}

// Matched lists the distinct words found in text, in list order.
func (m *Matcher) Matched(text string) []string {
	if m == nil || len(m.words) == 0 || text == "" {
		return nil
	}
	m.mu.Lock()
	hits := m.matcher.Match([]byte(text))
	m.mu.Unlock()

	seen := make(map[int]bool, len(hits))
	for _, i := range hits {
		seen[i] = true
	}
	out := make([]string, 0, len(seen))
	for i, w := range m.words {
		if seen[i] {
			out = append(out, w)
		}
	}
	return out
}

// Words returns the matcher's list.
func (m *Matcher) Words() []string {
	return append([]string(nil), m.words...)
}
