package domain

import "time"

// LinkStatus is the outcome of the last link audit.
type LinkStatus string

const (
	LinkOK       LinkStatus = "OK"
	LinkRedirect LinkStatus = "Redirect"
	LinkBroken   LinkStatus = "Broken"
	LinkUnknown  LinkStatus = "Unknown"
)

// Confidence is the enrichment extractor's trust in what it wrote.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Program is one directory entry as read from the Programs database.
//
// The remote database is authoritative; a Program value is a read snapshot.
type Program struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is the database page ID.
	ID string `json:"id"`

	// Name is the program title.
	Name string `json:"name"`

	// Provider is the organisation behind the offer.
	Provider string `json:"provider,omitempty"`

	// ─────────────────────────────
	// Classification
	// ─────────────────────────────

	Category  []string `json:"category,omitempty"`
	Stage     []string `json:"stage,omitempty"`
	OfferType string   `json:"offerType,omitempty"`
	ValueUSD  float64  `json:"valueUsd,omitempty"`
	Geo       string   `json:"geo,omitempty"`

	// RequiresReferral marks offers only reachable through a VC or accelerator.
	RequiresReferral bool `json:"requiresReferral,omitempty"`

	// ─────────────────────────────
	// Offer description
	// (rewritten by enrichment)
	// ─────────────────────────────

	WhatYouGet    string `json:"whatYouGet,omitempty"`
	Eligibility   string `json:"eligibility,omitempty"`
	HowToApply    string `json:"howToApply,omitempty"`
	SourceSummary string `json:"sourceSummary,omitempty"`
	AutoSummary   string `json:"autoSummary,omitempty"`

	// ─────────────────────────────
	// Links
	// ─────────────────────────────

	ApplyURL   string `json:"applyUrl,omitempty"`
	SourceURL  string `json:"sourceUrl,omitempty"`
	FinalURL   string `json:"finalUrl,omitempty"`
	SourceType string `json:"sourceType,omitempty"`

	// ─────────────────────────────
	// Link health
	// (rewritten by link audit)
	// ─────────────────────────────

	LinkStatus   LinkStatus `json:"linkStatus,omitempty"`
	HTTPStatus   int        `json:"httpStatus,omitempty"`
	LastVerified string     `json:"lastVerified,omitempty"`

	// ─────────────────────────────
	// Workflow
	// ─────────────────────────────

	Status      string     `json:"status,omitempty"`
	Confidence  Confidence `json:"confidence,omitempty"`
	NeedsReview bool       `json:"needsReview,omitempty"`

	// LastEditedAt is the database's last edit timestamp.
	LastEditedAt time.Time `json:"lastEditedAt,omitempty"`
}

// Lite is the compact shape used by pickers.
type Lite struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

func (p *Program) Lite() Lite {
	return Lite{ID: p.ID, Title: p.Name, Provider: p.Provider, URL: p.ApplyURL}
}

// URL returns the best outbound link: apply, then source.
func (p *Program) URL() string {
	if p.ApplyURL != "" {
		return p.ApplyURL
	}
	return p.SourceURL
}
