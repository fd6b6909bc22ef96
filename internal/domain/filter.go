package domain

import (
	"sort"
	"strings"
)

// Sort orders for directory listings.
const (
	SortName     = "name"
	SortProvider = "provider"
	SortValue    = "value"
)

// Query is a directory listing request.
type Query struct {
	Q        string // free text over name, provider, classification and offer text
	Category string
	Stage    string
	OnlyIowa bool
	Sort     string
}

// FilterPrograms returns the programs matching q, in the requested order.
// The input slice is not modified.
func FilterPrograms(programs []*Program, q Query) []*Program {
	needle := NormalizeText(q.Q)
	category := NormalizeText(q.Category)
	stage := NormalizeText(q.Stage)

	out := make([]*Program, 0, len(programs))
	for _, p := range programs {
		if needle != "" && !strings.Contains(haystack(p), needle) {
			continue
		}
		if category != "" && !containsFold(p.Category, category) {
			continue
		}
		if stage != "" && !containsFold(p.Stage, stage) {
			continue
		}
		if q.OnlyIowa && !isIowa(p) {
			continue
		}
		out = append(out, p)
	}

	SortPrograms(out, q.Sort)
	return out
}

// SortPrograms sorts in place. Ties always fall back to name.
func SortPrograms(programs []*Program, by string) {
	sort.SliceStable(programs, func(i, j int) bool {
		a, b := programs[i], programs[j]
		switch by {
		case SortProvider:
			pa, pb := strings.ToLower(a.Provider), strings.ToLower(b.Provider)
			if pa != pb {
				return pa < pb
			}
		case SortValue:
			if a.ValueUSD != b.ValueUSD {
				return a.ValueUSD > b.ValueUSD
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// Facets returns the sorted distinct categories and stages.
func Facets(programs []*Program) (categories, stages []string) {
	cats := map[string]bool{}
	stgs := map[string]bool{}
	for _, p := range programs {
		for _, c := range p.Category {
			cats[c] = true
		}
		for _, s := range p.Stage {
			stgs[s] = true
		}
	}
	return sortedKeys(cats), sortedKeys(stgs)
}

func haystack(p *Program) string {
	parts := []string{p.Name, p.Provider, p.OfferType, p.WhatYouGet, p.Eligibility, p.HowToApply, p.SourceSummary}
	parts = append(parts, p.Category...)
	parts = append(parts, p.Stage...)
	return NormalizeText(strings.Join(parts, " "))
}

func isIowa(p *Program) bool {
	if strings.Contains(strings.ToLower(p.Geo), "iowa") {
		return true
	}
	for _, c := range p.Category {
		if strings.Contains(strings.ToLower(c), "iowa") {
			return true
		}
	}
	return false
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if NormalizeText(v) == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
