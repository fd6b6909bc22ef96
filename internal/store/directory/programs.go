package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
)

// ListOptions narrows a program listing.
type ListOptions struct {
	// ActiveValue restricts to programs whose status equals it. Empty = all.
	ActiveValue string
	// ExcludeNeedsReview drops programs with the review checkbox set.
	ExcludeNeedsReview bool
	// Max caps the number of programs returned. 0 = all.
	Max int
}

// ListPrograms queries the Programs database.
func (s *Store) ListPrograms(ctx context.Context, opts ListOptions) ([]*domain.Program, error) {
	m, err := s.ProgramMapping(ctx)
	if err != nil {
		return nil, err
	}

	var filters []notion.Filter
	if opts.ActiveValue != "" {
		if p := m.Get(domain.FieldStatus); p != nil {
			filters = append(filters, notion.Equals(p.Name, p.Type, opts.ActiveValue))
		}
	}
	if opts.ExcludeNeedsReview {
		if p := m.Get(domain.FieldNeedsReview); p != nil {
			filters = append(filters, notion.Equals(p.Name, notion.TypeCheckbox, false))
		}
	}

	var sorts []notion.Sort
	if p := m.Get(domain.FieldName); p != nil {
		sorts = []notion.Sort{{Property: p.Name, Direction: "ascending"}}
	}

	pages, err := s.api.QueryAll(ctx, s.opts.ProgramsDB, notion.And(filters...), sorts, opts.Max)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	programs := make([]*domain.Program, 0, len(pages))
	for i := range pages {
		if pages[i].Archived {
			continue
		}
		programs = append(programs, ProgramFromPage(m, &pages[i]))
	}
	return programs, nil
}

// GetProgram retrieves one program by page ID.
func (s *Store) GetProgram(ctx context.Context, id string) (*domain.Program, error) {
	m, err := s.ProgramMapping(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.api.RetrievePage(ctx, id)
	if err != nil {
		if notion.IsNotFound(err) {
			return nil, fmt.Errorf("program %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return ProgramFromPage(m, page), nil
}

// UpdateProgram writes a patch to a program page. An empty patch is a no-op.
func (s *Store) UpdateProgram(ctx context.Context, id string, patch propmap.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	if _, err := s.api.UpdatePage(ctx, id, patch.Properties()); err != nil {
		return fmt.Errorf("failed to update program: %w", err)
	}
	return nil
}

// ProgramExists reports whether a program already uses this apply URL or
// normalized name.
func (s *Store) ProgramExists(ctx context.Context, rawURL, name string) (bool, error) {
	m, err := s.ProgramMapping(ctx)
	if err != nil {
		return false, err
	}
	return s.exists(ctx, s.opts.ProgramsDB, m.Get(domain.FieldApplyURL), m.Get(domain.FieldName), rawURL, name)
}

// exists checks by exact URL first, then by normalized title among
// title-contains matches.
func (s *Store) exists(ctx context.Context, dbID string, urlProp, titleProp *propmap.Property, rawURL, title string) (bool, error) {
	if rawURL = strings.TrimSpace(rawURL); rawURL != "" && urlProp != nil {
		pages, err := s.api.QueryAll(ctx, dbID, notion.Equals(urlProp.Name, urlProp.Type, rawURL), nil, 1)
		if err != nil {
			return false, fmt.Errorf("lookup by url: %w", err)
		}
		if len(pages) > 0 {
			return true, nil
		}
	}

	want := domain.NormalizeText(title)
	if want == "" || titleProp == nil {
		return false, nil
	}
	probe := domain.CompactText(title, 50)
	pages, err := s.api.QueryAll(ctx, dbID, notion.Contains(titleProp.Name, titleProp.Type, probe), nil, 25)
	if err != nil {
		return false, fmt.Errorf("lookup by title: %w", err)
	}
	for _, p := range pages {
		v := p.Properties[titleProp.Name]
		if domain.NormalizeText(propmap.Text(v)) == want {
			return true, nil
		}
	}
	return false, nil
}

// ProgramFromPage maps a page onto a Program.
func ProgramFromPage(m propmap.Mapping, page *notion.Page) *domain.Program {
	r := m.Reader(page.Properties)

	p := &domain.Program{
		ID:               page.ID,
		Name:             r.Text(domain.FieldName),
		Provider:         r.Text(domain.FieldProvider),
		Category:         r.Strings(domain.FieldCategory),
		Stage:            r.Strings(domain.FieldStage),
		OfferType:        r.Text(domain.FieldOfferType),
		Geo:              r.Text(domain.FieldGeo),
		RequiresReferral: r.Bool(domain.FieldRequiresReferral),
		WhatYouGet:       r.Text(domain.FieldWhatYouGet),
		Eligibility:      r.Text(domain.FieldEligibility),
		HowToApply:       r.Text(domain.FieldHowToApply),
		SourceSummary:    r.Text(domain.FieldSourceSummary),
		AutoSummary:      r.Text(domain.FieldAutoSummary),
		ApplyURL:         r.Text(domain.FieldApplyURL),
		SourceURL:        r.Text(domain.FieldSourceURL),
		FinalURL:         r.Text(domain.FieldFinalURL),
		SourceType:       r.Text(domain.FieldSourceType),
		LinkStatus:       domain.LinkStatus(r.Text(domain.FieldLinkStatus)),
		LastVerified:     r.Text(domain.FieldLastVerified),
		Status:           r.Text(domain.FieldStatus),
		Confidence:       domain.Confidence(r.Text(domain.FieldConfidence)),
		NeedsReview:      r.Bool(domain.FieldNeedsReview),
		LastEditedAt:     page.LastEditedTime,
	}
	if v, ok := r.Number(domain.FieldValueUSD); ok {
		p.ValueUSD = v
	}
	if v, ok := r.Number(domain.FieldHTTPStatus); ok {
		p.HTTPStatus = int(v)
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}
	return p
}
