package domain

// SuggestionType classifies what a suggestion proposes.
type SuggestionType string

const (
	SuggestNewProgram SuggestionType = "New Program"
	SuggestUpdate     SuggestionType = "Update"
	SuggestBrokenLink SuggestionType = "Broken Link"
	SuggestOther      SuggestionType = "Other"
)

// Suggestion review states.
const (
	SuggestionPending  = "Pending"
	SuggestionApproved = "Approved"
	SuggestionRejected = "Rejected"
)

// Suggestion is a proposed addition or edit awaiting human review.
type Suggestion struct {
	ID               string         `json:"id,omitempty"`
	Title            string         `json:"title"`
	Type             SuggestionType `json:"suggestionType,omitempty"`
	RelatedProgramID string         `json:"relatedProgramId,omitempty"`
	ProgramURL       string         `json:"programUrl,omitempty"`
	Provider         string         `json:"provider,omitempty"`
	Category         []string       `json:"category,omitempty"`
	Stage            []string       `json:"stage,omitempty"`
	WhatYouGet       string         `json:"whatYouGet,omitempty"`
	Eligibility      string         `json:"eligibility,omitempty"`
	ProposedChange   string         `json:"proposedChange,omitempty"`
	SubmitterEmail   string         `json:"submitterEmail,omitempty"`
	EvidenceURL      string         `json:"evidenceUrl,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	Status           string         `json:"status,omitempty"`
}

// ParseSuggestionType maps free-form input onto a known type, defaulting to
// New Program.
func ParseSuggestionType(s string) SuggestionType {
	switch NormalizeText(s) {
	case "update", "update program", "edit":
		return SuggestUpdate
	case "broken link", "broken-link", "broken":
		return SuggestBrokenLink
	case "other":
		return SuggestOther
	}
	return SuggestNewProgram
}
