package propmap

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MrSnakeDoc/launchpad/internal/notion"
)

// MaxTextLen caps rich text writes below the API's per-span limit.
const MaxTextLen = 1900

// DateLayout is the calendar-date format written to date columns.
const DateLayout = "2006-01-02"

// Value coerces v into a property value of the column's type.
// It reports false when there is nothing to write: empty input, a select or
// status option the column does not offer, or an unsupported column type.
func (p *Property) Value(v any) (notion.PropertyValue, bool) {
	if p == nil || isEmpty(v) {
		return notion.PropertyValue{}, false
	}

	switch p.Type {
	case notion.TypeTitle:
		return notion.PropertyValue{Title: notion.Text(truncate(toString(v), MaxTextLen))}, true

	case notion.TypeRichText:
		return notion.PropertyValue{RichText: notion.Text(truncate(toString(v), MaxTextLen))}, true

	case notion.TypeURL:
		s := strings.TrimSpace(toString(v))
		return notion.PropertyValue{URL: &s}, true

	case notion.TypeEmail:
		s := strings.TrimSpace(toString(v))
		return notion.PropertyValue{Email: &s}, true

	case notion.TypeSelect:
		name, ok := p.option(toString(v))
		if !ok {
			return notion.PropertyValue{}, false
		}
		return notion.PropertyValue{Select: &notion.Option{Name: name}}, true

	case notion.TypeStatus:
		name, ok := p.option(toString(v))
		if !ok {
			return notion.PropertyValue{}, false
		}
		return notion.PropertyValue{Status: &notion.Option{Name: name}}, true

	case notion.TypeMultiSelect:
		names := toStrings(v)
		opts := make([]notion.Option, 0, len(names))
		seen := make(map[string]bool, len(names))
		for _, n := range names {
			// commas are not allowed in option names
			n = strings.TrimSpace(strings.ReplaceAll(n, ",", " "))
			key := normalizeName(n)
			if n == "" || seen[key] {
				continue
			}
			seen[key] = true
			if existing, ok := p.option(n); ok {
				n = existing
			}
			opts = append(opts, notion.Option{Name: n})
		}
		if len(opts) == 0 {
			return notion.PropertyValue{}, false
		}
		return notion.PropertyValue{MultiSelect: opts}, true

	case notion.TypeCheckbox:
		b, ok := toBool(v)
		if !ok {
			return notion.PropertyValue{}, false
		}
		return notion.PropertyValue{Checkbox: &b}, true

	case notion.TypeNumber:
		n, ok := toNumber(v)
		if !ok {
			return notion.PropertyValue{}, false
		}
		return notion.PropertyValue{Number: &n}, true

	case notion.TypeDate:
		var start string
		if t, ok := v.(time.Time); ok {
			start = t.Format(DateLayout)
		} else {
			start = strings.TrimSpace(toString(v))
		}
		return notion.PropertyValue{Date: &notion.DateValue{Start: start}}, true
	}

	return notion.PropertyValue{}, false
}

// Patch accumulates property writes for one page.
type Patch notion.Properties

// Set writes v into the patch when the column resolved and the value is
// writable. It reports whether anything was set.
func (p Patch) Set(prop *Property, v any) bool {
	pv, ok := prop.Value(v)
	if !ok {
		return false
	}
	p[prop.Name] = pv
	return true
}

// Properties converts the patch for the API client.
func (p Patch) Properties() notion.Properties {
	return notion.Properties(p)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	case *string:
		return x == nil || strings.TrimSpace(*x) == ""
	case time.Time:
		return x.IsZero()
	}
	return false
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case []string:
		return strings.Join(x, ", ")
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(DateLayout)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func toStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case string:
		return splitList(x)
	}
	return []string{toString(v)}
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	}
	return false, false
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(x, ",", "")), 64)
		return f, err == nil
	}
	return 0, false
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
