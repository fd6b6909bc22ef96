package notion

import "time"

// Property types the mapping layer knows how to read and write.
const (
	TypeTitle       = "title"
	TypeRichText    = "rich_text"
	TypeURL         = "url"
	TypeEmail       = "email"
	TypeSelect      = "select"
	TypeStatus      = "status"
	TypeMultiSelect = "multi_select"
	TypeCheckbox    = "checkbox"
	TypeNumber      = "number"
	TypeDate        = "date"
)

// Option is a select, status or multi-select choice.
type Option struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// OptionSet lists the choices configured on a select-like column.
type OptionSet struct {
	Options []Option `json:"options"`
}

// PropertySchema describes one database column.
type PropertySchema struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Select      *OptionSet `json:"select,omitempty"`
	Status      *OptionSet `json:"status,omitempty"`
	MultiSelect *OptionSet `json:"multi_select,omitempty"`
}

// Options returns the configured choices for select, status and multi-select columns.
func (p PropertySchema) Options() []Option {
	switch {
	case p.Type == TypeSelect && p.Select != nil:
		return p.Select.Options
	case p.Type == TypeStatus && p.Status != nil:
		return p.Status.Options
	case p.Type == TypeMultiSelect && p.MultiSelect != nil:
		return p.MultiSelect.Options
	}
	return nil
}

// Database is the subset of the database object used here.
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
}

// RichText is one span of a title or rich_text value.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
	Href      *string      `json:"href,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

// Text builds a single plain text span.
func Text(s string) []RichText {
	return []RichText{{Type: "text", Text: &TextContent{Content: s}}}
}

// PlainText concatenates spans, preferring the server-rendered plain_text.
func PlainText(spans []RichText) string {
	var out string
	for _, s := range spans {
		switch {
		case s.PlainText != "":
			out += s.PlainText
		case s.Text != nil:
			out += s.Text.Content
		}
	}
	return out
}

type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// PropertyValue is a page property. Exactly one typed field is set.
type PropertyValue struct {
	ID          string     `json:"id,omitempty"`
	Type        string     `json:"type,omitempty"`
	Title       []RichText `json:"title,omitempty"`
	RichText    []RichText `json:"rich_text,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Select      *Option    `json:"select,omitempty"`
	Status      *Option    `json:"status,omitempty"`
	MultiSelect []Option   `json:"multi_select,omitempty"`
	Checkbox    *bool      `json:"checkbox,omitempty"`
	Number      *float64   `json:"number,omitempty"`
	Date        *DateValue `json:"date,omitempty"`
}

// Properties maps column name to value.
type Properties map[string]PropertyValue

// Page is a database row.
type Page struct {
	Object         string     `json:"object"`
	ID             string     `json:"id"`
	CreatedTime    time.Time  `json:"created_time"`
	LastEditedTime time.Time  `json:"last_edited_time"`
	Archived       bool       `json:"archived"`
	URL            string     `json:"url"`
	Properties     Properties `json:"properties"`
}

// Filter is a database query filter object.
type Filter map[string]any

// Sort orders query results by a property.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      Filter `json:"filter,omitempty"`
	Sorts       []Sort `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryResponse is one page of query results.
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}
