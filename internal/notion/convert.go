package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// ─────────────────────────────────────────────
// notionapi -> value model
// ─────────────────────────────────────────────

func fromAPIDatabase(db *notionapi.Database) *Database {
	out := &Database{
		ID:         string(db.ID),
		Title:      fromAPIRichText(db.Title),
		Properties: make(map[string]PropertySchema, len(db.Properties)),
	}
	for name, cfg := range db.Properties {
		if cfg == nil {
			continue
		}
		schema := PropertySchema{Name: name, Type: string(cfg.GetType())}
		if withID, ok := cfg.(interface{ GetID() notionapi.PropertyID }); ok {
			schema.ID = string(withID.GetID())
		}
		switch c := cfg.(type) {
		case *notionapi.SelectPropertyConfig:
			schema.Select = &OptionSet{Options: fromAPIOptions(c.Select.Options)}
		case *notionapi.StatusPropertyConfig:
			schema.Status = &OptionSet{Options: fromAPIOptions(c.Status.Options)}
		case *notionapi.MultiSelectPropertyConfig:
			schema.MultiSelect = &OptionSet{Options: fromAPIOptions(c.MultiSelect.Options)}
		}
		out.Properties[name] = schema
	}
	return out
}

func fromAPIPage(p *notionapi.Page) Page {
	out := Page{
		Object:         string(p.Object),
		ID:             string(p.ID),
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
		Archived:       p.Archived,
		URL:            p.URL,
		Properties:     make(Properties, len(p.Properties)),
	}
	for name, prop := range p.Properties {
		if v, ok := fromAPIProperty(prop); ok {
			out.Properties[name] = v
		}
	}
	return out
}

// fromAPIProperty keeps the column types the mapping layer understands and
// drops formulas, relations and the rest.
func fromAPIProperty(prop notionapi.Property) (PropertyValue, bool) {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return PropertyValue{ID: string(p.ID), Type: TypeTitle, Title: fromAPIRichText(p.Title)}, true
	case *notionapi.RichTextProperty:
		return PropertyValue{ID: string(p.ID), Type: TypeRichText, RichText: fromAPIRichText(p.RichText)}, true
	case *notionapi.URLProperty:
		u := p.URL
		return PropertyValue{ID: string(p.ID), Type: TypeURL, URL: &u}, true
	case *notionapi.EmailProperty:
		e := p.Email
		return PropertyValue{ID: string(p.ID), Type: TypeEmail, Email: &e}, true
	case *notionapi.SelectProperty:
		v := PropertyValue{ID: string(p.ID), Type: TypeSelect}
		if p.Select.Name != "" {
			v.Select = &Option{ID: string(p.Select.ID), Name: p.Select.Name, Color: string(p.Select.Color)}
		}
		return v, true
	case *notionapi.StatusProperty:
		v := PropertyValue{ID: string(p.ID), Type: TypeStatus}
		if p.Status.Name != "" {
			v.Status = &Option{ID: string(p.Status.ID), Name: p.Status.Name, Color: string(p.Status.Color)}
		}
		return v, true
	case *notionapi.MultiSelectProperty:
		return PropertyValue{ID: string(p.ID), Type: TypeMultiSelect, MultiSelect: fromAPIOptions(p.MultiSelect)}, true
	case *notionapi.CheckboxProperty:
		b := p.Checkbox
		return PropertyValue{ID: string(p.ID), Type: TypeCheckbox, Checkbox: &b}, true
	case *notionapi.NumberProperty:
		n := p.Number
		return PropertyValue{ID: string(p.ID), Type: TypeNumber, Number: &n}, true
	case *notionapi.DateProperty:
		v := PropertyValue{ID: string(p.ID), Type: TypeDate}
		if p.Date != nil && p.Date.Start != nil {
			v.Date = &DateValue{Start: formatDate(time.Time(*p.Date.Start))}
			if p.Date.End != nil {
				end := formatDate(time.Time(*p.Date.End))
				v.Date.End = &end
			}
		}
		return v, true
	}
	return PropertyValue{}, false
}

func fromAPIRichText(spans []notionapi.RichText) []RichText {
	out := make([]RichText, 0, len(spans))
	for _, s := range spans {
		rt := RichText{Type: string(s.Type), PlainText: s.PlainText}
		if s.Text != nil {
			rt.Text = &TextContent{Content: s.Text.Content}
		}
		if s.Href != "" {
			href := s.Href
			rt.Href = &href
		}
		out = append(out, rt)
	}
	return out
}

func fromAPIOptions(opts []notionapi.Option) []Option {
	out := make([]Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, Option{ID: string(o.ID), Name: o.Name, Color: string(o.Color)})
	}
	return out
}

// formatDate keeps calendar dates short and full timestamps in RFC 3339.
func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// ─────────────────────────────────────────────
// value model -> notionapi
// ─────────────────────────────────────────────

func toAPIProperties(props Properties) notionapi.Properties {
	out := make(notionapi.Properties, len(props))
	for name, v := range props {
		if p, ok := toAPIProperty(v); ok {
			out[name] = p
		}
	}
	return out
}

func toAPIProperty(v PropertyValue) (notionapi.Property, bool) {
	switch {
	case v.Title != nil:
		return &notionapi.TitleProperty{Title: toAPIRichText(v.Title)}, true
	case v.RichText != nil:
		return &notionapi.RichTextProperty{RichText: toAPIRichText(v.RichText)}, true
	case v.URL != nil:
		return &notionapi.URLProperty{URL: *v.URL}, true
	case v.Email != nil:
		return &notionapi.EmailProperty{Email: *v.Email}, true
	case v.Select != nil:
		return &notionapi.SelectProperty{Select: notionapi.Option{Name: v.Select.Name}}, true
	case v.Status != nil:
		return &notionapi.StatusProperty{Status: notionapi.Status{Name: v.Status.Name}}, true
	case v.MultiSelect != nil:
		opts := make([]notionapi.Option, 0, len(v.MultiSelect))
		for _, o := range v.MultiSelect {
			opts = append(opts, notionapi.Option{Name: o.Name})
		}
		return &notionapi.MultiSelectProperty{MultiSelect: opts}, true
	case v.Checkbox != nil:
		return &notionapi.CheckboxProperty{Checkbox: *v.Checkbox}, true
	case v.Number != nil:
		return &notionapi.NumberProperty{Number: *v.Number}, true
	case v.Date != nil:
		start, ok := parseDate(v.Date.Start)
		if !ok {
			return nil, false
		}
		return &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}, true
	}
	return nil, false
}

func toAPIRichText(spans []RichText) []notionapi.RichText {
	out := make([]notionapi.RichText, 0, len(spans))
	for _, s := range spans {
		content := s.PlainText
		if s.Text != nil {
			content = s.Text.Content
		}
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectType("text"),
			Text: &notionapi.Text{Content: content},
		})
	}
	return out
}

func parseDate(s string) (notionapi.Date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return notionapi.Date(t), true
		}
	}
	return notionapi.Date{}, false
}
