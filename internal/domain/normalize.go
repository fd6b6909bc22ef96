package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeText lowercases, trims and collapses whitespace.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(s, " ")))
}

// CompactText collapses whitespace and caps the result at max runes.
func CompactText(s string, max int) string {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if max > 0 {
		r := []rune(s)
		if len(r) > max {
			return strings.TrimSpace(string(r[:max]))
		}
	}
	return s
}

// NormalizeURL gives a comparison key for a URL: lowercase scheme and host,
// no fragment, no trailing slash. Unparseable input is trimmed and lowercased.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return strings.TrimRight(u.String(), "/")
}

// SameURL compares two URLs by their normalized form.
func SameURL(a, b string) bool {
	return NormalizeURL(a) == NormalizeURL(b)
}

// Slugify builds a filename-safe slug.
func Slugify(s string) string {
	slug := strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	if slug == "" {
		return "program"
	}
	return slug
}
