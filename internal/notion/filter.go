package notion

import (
	"fmt"

	"github.com/jomei/notionapi"
)

// Equals matches a property of the given type against value.
func Equals(property, propType string, value any) Filter {
	return Filter{
		"property": property,
		propType:   map[string]any{"equals": value},
	}
}

// Contains matches text-like and multi-select properties.
func Contains(property, propType, value string) Filter {
	return Filter{
		"property": property,
		propType:   map[string]any{"contains": value},
	}
}

// And combines filters, skipping nil entries. A single filter is returned as is.
func And(filters ...Filter) Filter {
	kept := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Filter{"and": kept}
}

// apiFilter converts a filter built here into the typed notionapi form.
// Text conditions go through rich_text, which the API accepts for title,
// url and email columns too.
func apiFilter(f Filter) (notionapi.Filter, error) {
	if f == nil {
		return nil, nil
	}
	if list, ok := f["and"].([]Filter); ok {
		out := make(notionapi.AndCompoundFilter, 0, len(list))
		for _, sub := range list {
			af, err := apiFilter(sub)
			if err != nil {
				return nil, err
			}
			if af != nil {
				out = append(out, af)
			}
		}
		return out, nil
	}

	prop, _ := f["property"].(string)
	for key, raw := range f {
		if key == "property" {
			continue
		}
		cond, _ := raw.(map[string]any)
		return propertyFilter(prop, key, cond)
	}
	return nil, fmt.Errorf("filter on %q has no condition", prop)
}

func propertyFilter(prop, propType string, cond map[string]any) (notionapi.Filter, error) {
	equals, _ := cond["equals"].(string)
	contains, _ := cond["contains"].(string)

	pf := &notionapi.PropertyFilter{Property: prop}
	switch propType {
	case TypeTitle, TypeRichText, TypeURL, TypeEmail:
		pf.RichText = &notionapi.TextFilterCondition{Equals: equals, Contains: contains}
	case TypeSelect:
		pf.Select = &notionapi.SelectFilterCondition{Equals: equals}
	case TypeStatus:
		pf.Status = &notionapi.StatusFilterCondition{Equals: equals}
	case TypeMultiSelect:
		pf.MultiSelect = &notionapi.MultiSelectFilterCondition{Contains: firstNonEmpty(contains, equals)}
	case TypeCheckbox:
		want, _ := cond["equals"].(bool)
		if want {
			pf.Checkbox = &notionapi.CheckboxFilterCondition{Equals: true}
		} else {
			// equals:false is dropped by omitempty
			pf.Checkbox = &notionapi.CheckboxFilterCondition{DoesNotEqual: true}
		}
	default:
		return nil, fmt.Errorf("unsupported filter type %q on %q", propType, prop)
	}
	return pf, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
