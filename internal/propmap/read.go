package propmap

import (
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/notion"
)

// Text renders any supported property value as a string.
func Text(v notion.PropertyValue) string {
	switch {
	case v.Title != nil:
		return strings.TrimSpace(notion.PlainText(v.Title))
	case v.RichText != nil:
		return strings.TrimSpace(notion.PlainText(v.RichText))
	case v.URL != nil:
		return strings.TrimSpace(*v.URL)
	case v.Email != nil:
		return strings.TrimSpace(*v.Email)
	case v.Select != nil:
		return v.Select.Name
	case v.Status != nil:
		return v.Status.Name
	case v.MultiSelect != nil:
		return strings.Join(Strings(v), ", ")
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.Date != nil:
		return v.Date.Start
	case v.Checkbox != nil:
		return strconv.FormatBool(*v.Checkbox)
	}
	return ""
}

// Strings returns multi-select names, or splits a text value on , and ;.
func Strings(v notion.PropertyValue) []string {
	if v.MultiSelect != nil {
		out := make([]string, 0, len(v.MultiSelect))
		for _, o := range v.MultiSelect {
			if o.Name != "" {
				out = append(out, o.Name)
			}
		}
		return out
	}
	if v.Select != nil {
		return []string{v.Select.Name}
	}
	return splitList(Text(v))
}

// Number reads a number column or parses a numeric text value.
func Number(v notion.PropertyValue) (float64, bool) {
	if v.Number != nil {
		return *v.Number, true
	}
	return toNumber(Text(v))
}

// Bool reads a checkbox, or parses a boolean text value.
func Bool(v notion.PropertyValue) bool {
	if v.Checkbox != nil {
		return *v.Checkbox
	}
	b, _ := toBool(Text(v))
	return b
}

// Reader reads logical fields from a page through a Mapping.
type Reader struct {
	m     Mapping
	props notion.Properties
}

func (m Mapping) Reader(props notion.Properties) Reader {
	return Reader{m: m, props: props}
}

func (r Reader) value(f Field) (notion.PropertyValue, bool) {
	p := r.m.Get(f)
	if p == nil {
		return notion.PropertyValue{}, false
	}
	v, ok := r.props[p.Name]
	return v, ok
}

func (r Reader) Text(f Field) string {
	v, ok := r.value(f)
	if !ok {
		return ""
	}
	return Text(v)
}

func (r Reader) Strings(f Field) []string {
	v, ok := r.value(f)
	if !ok {
		return nil
	}
	return Strings(v)
}

func (r Reader) Number(f Field) (float64, bool) {
	v, ok := r.value(f)
	if !ok {
		return 0, false
	}
	return Number(v)
}

func (r Reader) Bool(f Field) bool {
	v, ok := r.value(f)
	if !ok {
		return false
	}
	return Bool(v)
}
