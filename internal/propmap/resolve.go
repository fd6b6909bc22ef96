// Package propmap maps logical record fields onto whatever columns a
// human-edited Notion database actually has.
//
// A Table lists, per field, the column names to try (in order) and the
// column types the field accepts. Resolution is case-insensitive on trimmed
// names; the first candidate present with an accepted type wins.
package propmap

import (
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/notion"
)

// Field is a logical field name such as "apply_url".
type Field string

// Rule describes where a field may live.
type Rule struct {
	Candidates []string
	Types      []string
}

// Table is the declarative field lookup for one database.
type Table map[Field]Rule

// Property is a resolved column.
type Property struct {
	Name   string
	Type   string
	Schema notion.PropertySchema
}

// HasOption reports whether a select/status/multi-select column already
// offers the named option. Matching is case-insensitive.
func (p *Property) HasOption(name string) bool {
	_, ok := p.option(name)
	return ok
}

func (p *Property) option(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	want := normalizeName(name)
	for _, o := range p.Schema.Options() {
		if normalizeName(o.Name) == want {
			return o.Name, true
		}
	}
	return "", false
}

// Mapping is a Table resolved against one database schema.
type Mapping map[Field]*Property

// Get returns the resolved property or nil.
func (m Mapping) Get(f Field) *Property {
	if m == nil {
		return nil
	}
	return m[f]
}

// Has reports whether the field resolved to a column.
func (m Mapping) Has(f Field) bool {
	return m.Get(f) != nil
}

// Resolve finds the first candidate column with an accepted type.
// An empty types list accepts any type.
func Resolve(schema map[string]notion.PropertySchema, candidates []string, types ...string) *Property {
	byName := make(map[string]string, len(schema))
	for name := range schema {
		byName[normalizeName(name)] = name
	}

	for _, cand := range candidates {
		name, ok := byName[normalizeName(cand)]
		if !ok {
			continue
		}
		ps := schema[name]
		if len(types) > 0 && !contains(types, ps.Type) {
			continue
		}
		return &Property{Name: name, Type: ps.Type, Schema: ps}
	}
	return nil
}

// PickByType returns the first column of the given type, by name order.
func PickByType(schema map[string]notion.PropertySchema, propType string) *Property {
	var best string
	for name, ps := range schema {
		if ps.Type != propType {
			continue
		}
		if best == "" || name < best {
			best = name
		}
	}
	if best == "" {
		return nil
	}
	ps := schema[best]
	return &Property{Name: best, Type: ps.Type, Schema: ps}
}

// ResolveTable resolves every field in t. Overrides are tried before the
// table's own candidates. A title-typed field that matches nothing falls back
// to the database's title column.
func ResolveTable(schema map[string]notion.PropertySchema, t Table, overrides map[Field]string) Mapping {
	m := make(Mapping, len(t))
	for field, rule := range t {
		candidates := rule.Candidates
		if o := strings.TrimSpace(overrides[field]); o != "" {
			candidates = append([]string{o}, candidates...)
		}

		p := Resolve(schema, candidates, rule.Types...)
		if p == nil && contains(rule.Types, notion.TypeTitle) {
			p = PickByType(schema, notion.TypeTitle)
		}
		if p != nil {
			m[field] = p
		}
	}
	return m
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
