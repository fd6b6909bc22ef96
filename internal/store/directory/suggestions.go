package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
)

// CreateSuggestion inserts a suggestion and returns its page ID.
// Type defaults to New Program and status to Pending.
func (s *Store) CreateSuggestion(ctx context.Context, sg *domain.Suggestion) (string, error) {
	if strings.TrimSpace(sg.Title) == "" {
		return "", fmt.Errorf("suggestion title is required")
	}
	m, err := s.SuggestionMapping(ctx)
	if err != nil {
		return "", err
	}
	if !m.Has(domain.FieldTitle) {
		return "", fmt.Errorf("suggestions database has no title column")
	}

	sgType := sg.Type
	if sgType == "" {
		sgType = domain.SuggestNewProgram
	}
	status := sg.Status
	if status == "" {
		status = domain.SuggestionPending
	}

	patch := propmap.Patch{}
	patch.Set(m.Get(domain.FieldTitle), sg.Title)
	patch.Set(m.Get(domain.FieldSuggestionType), string(sgType))
	patch.Set(m.Get(domain.FieldRelatedProgramID), sg.RelatedProgramID)
	patch.Set(m.Get(domain.FieldProgramURL), sg.ProgramURL)
	patch.Set(m.Get(domain.FieldProvider), sg.Provider)
	patch.Set(m.Get(domain.FieldCategory), sg.Category)
	patch.Set(m.Get(domain.FieldStage), sg.Stage)
	patch.Set(m.Get(domain.FieldWhatYouGet), sg.WhatYouGet)
	patch.Set(m.Get(domain.FieldEligibility), sg.Eligibility)
	patch.Set(m.Get(domain.FieldProposedChange), sg.ProposedChange)
	patch.Set(m.Get(domain.FieldSubmitterEmail), sg.SubmitterEmail)
	patch.Set(m.Get(domain.FieldEvidenceURL), sg.EvidenceURL)
	patch.Set(m.Get(domain.FieldNotes), sg.Notes)
	patch.Set(m.Get(domain.FieldStatus), status)

	page, err := s.api.CreatePage(ctx, s.opts.SuggestionsDB, patch.Properties())
	if err != nil {
		return "", fmt.Errorf("failed to create suggestion: %w", err)
	}
	return page.ID, nil
}

// SuggestionExists reports whether a suggestion already uses this program URL
// or normalized title.
func (s *Store) SuggestionExists(ctx context.Context, rawURL, title string) (bool, error) {
	m, err := s.SuggestionMapping(ctx)
	if err != nil {
		return false, err
	}
	return s.exists(ctx, s.opts.SuggestionsDB, m.Get(domain.FieldProgramURL), m.Get(domain.FieldTitle), rawURL, title)
}

// ListSuggestions returns suggestions with the given status (empty = all).
func (s *Store) ListSuggestions(ctx context.Context, status string, max int) ([]*domain.Suggestion, error) {
	m, err := s.SuggestionMapping(ctx)
	if err != nil {
		return nil, err
	}

	var filter notion.Filter
	if status != "" {
		if p := m.Get(domain.FieldStatus); p != nil {
			filter = notion.Equals(p.Name, p.Type, status)
		}
	}

	pages, err := s.api.QueryAll(ctx, s.opts.SuggestionsDB, filter, nil, max)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}

	out := make([]*domain.Suggestion, 0, len(pages))
	for i := range pages {
		if pages[i].Archived {
			continue
		}
		out = append(out, SuggestionFromPage(m, &pages[i]))
	}
	return out, nil
}

// UpdateSuggestion writes a patch to a suggestion page.
func (s *Store) UpdateSuggestion(ctx context.Context, id string, patch propmap.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	if _, err := s.api.UpdatePage(ctx, id, patch.Properties()); err != nil {
		return fmt.Errorf("failed to update suggestion: %w", err)
	}
	return nil
}

// SuggestionFromPage maps a page onto a Suggestion.
func SuggestionFromPage(m propmap.Mapping, page *notion.Page) *domain.Suggestion {
	r := m.Reader(page.Properties)
	return &domain.Suggestion{
		ID:               page.ID,
		Title:            r.Text(domain.FieldTitle),
		Type:             domain.SuggestionType(r.Text(domain.FieldSuggestionType)),
		RelatedProgramID: r.Text(domain.FieldRelatedProgramID),
		ProgramURL:       r.Text(domain.FieldProgramURL),
		Provider:         r.Text(domain.FieldProvider),
		Category:         r.Strings(domain.FieldCategory),
		Stage:            r.Strings(domain.FieldStage),
		WhatYouGet:       r.Text(domain.FieldWhatYouGet),
		Eligibility:      r.Text(domain.FieldEligibility),
		ProposedChange:   r.Text(domain.FieldProposedChange),
		SubmitterEmail:   r.Text(domain.FieldSubmitterEmail),
		EvidenceURL:      r.Text(domain.FieldEvidenceURL),
		Notes:            r.Text(domain.FieldNotes),
		Status:           r.Text(domain.FieldStatus),
	}
}
