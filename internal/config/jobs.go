package config

import (
	"strings"
	"time"
)

// LinkAudit holds LINK_AUDIT_* settings.
type LinkAudit struct {
	DryRun             bool
	ActiveValue        string
	SetStatusOnBroken  bool
	BrokenStatusValue  string
	FlagRedirectReview bool
	Max                int // 0 = all
	Timeout            time.Duration
}

func LoadLinkAudit() LinkAudit {
	return LinkAudit{
		DryRun:             mustBool("LINK_AUDIT_DRY_RUN", false),
		ActiveValue:        getenv("LINK_AUDIT_ACTIVE_VALUE", "Active"),
		SetStatusOnBroken:  mustBool("LINK_AUDIT_SET_STATUS_ON_BROKEN", true),
		BrokenStatusValue:  getenv("LINK_AUDIT_BROKEN_STATUS_VALUE", "Needs Review"),
		FlagRedirectReview: mustBool("LINK_AUDIT_FLAG_REDIRECT_REVIEW", true),
		Max:                getenvInt("LINK_AUDIT_MAX", 0),
		Timeout:            mustDuration("LINK_AUDIT_TIMEOUT", 15*time.Second),
	}
}

// Enrich holds ENRICH_* settings.
type Enrich struct {
	DryRun       bool
	OnlyApproved bool
	ActiveValue  string
	Max          int
	Timeout      time.Duration
	FlagUnparsed bool
}

func LoadEnrich() Enrich {
	return Enrich{
		DryRun:       mustBool("ENRICH_DRY_RUN", true),
		OnlyApproved: mustBool("ENRICH_ONLY_APPROVED", true),
		ActiveValue:  getenv("LINK_AUDIT_ACTIVE_VALUE", "Active"),
		Max:          getenvInt("ENRICH_MAX", 200),
		Timeout:      mustMillis("ENRICH_TIMEOUT_MS", 15*time.Second),
		FlagUnparsed: mustBool("ENRICH_FLAG_UNPARSED", false),
	}
}

// Discovery holds DISCOVERY_* settings.
type Discovery struct {
	DryRun         bool
	MaxItems       int
	LookbackDays   int
	SourcesFile    string
	Status         string
	SubmitterEmail string
	MinScore       int
	Timeout        time.Duration
}

func LoadDiscovery() Discovery {
	return Discovery{
		DryRun:         mustBool("DISCOVERY_DRY_RUN", true),
		MaxItems:       getenvInt("DISCOVERY_MAX_ITEMS", 40),
		LookbackDays:   getenvInt("DISCOVERY_LOOKBACK_DAYS", 45),
		SourcesFile:    getenv("DISCOVERY_SOURCES_FILE", "data/discovery-sources.yaml"),
		Status:         getenv("DISCOVERY_STATUS", "Pending"),
		SubmitterEmail: getenv("DISCOVERY_SUBMITTER_EMAIL", ""),
		MinScore:       getenvInt("DISCOVERY_MIN_SCORE", 2),
		Timeout:        mustMillis("DISCOVERY_TIMEOUT_MS", 15*time.Second),
	}
}

// Seeds holds SEEDS_* settings for the suggestion seeder.
type Seeds struct {
	DryRun         bool
	File           string
	Status         string
	SubmitterEmail string
	Timeout        time.Duration
}

func LoadSeeds() Seeds {
	return Seeds{
		DryRun:         mustBool("SEEDS_DRY_RUN", true),
		File:           getenv("SEEDS_FILE", "data/suggestion-seeds.yaml"),
		Status:         getenv("SEEDS_STATUS", "Pending"),
		SubmitterEmail: getenv("DISCOVERY_SUBMITTER_EMAIL", ""),
		Timeout:        mustMillis("SEEDS_TIMEOUT_MS", 15*time.Second),
	}
}

// FillAudit holds FILL_AUDIT_* settings.
type FillAudit struct {
	Max         int
	OnlyActive  bool
	ActiveValue string
	TopN        int
	ReportsDir  string
}

func LoadFillAudit() FillAudit {
	return FillAudit{
		Max:         getenvInt("FILL_AUDIT_MAX", 500),
		OnlyActive:  mustBool("FILL_AUDIT_ONLY_ACTIVE", true),
		ActiveValue: getenv("LINK_AUDIT_ACTIVE_VALUE", "Active"),
		TopN:        getenvInt("FILL_AUDIT_TOP", 100),
		ReportsDir:  getenv("REPORTS_DIR", "reports"),
	}
}

// PendingCheck holds SUGGESTIONS_CHECK_* settings.
type PendingCheck struct {
	DryRun  bool
	Max     int
	Status  string
	Timeout time.Duration
}

func LoadPendingCheck() PendingCheck {
	return PendingCheck{
		DryRun:  mustBool("SUGGESTIONS_CHECK_DRY_RUN", false),
		Max:     getenvInt("SUGGESTIONS_CHECK_MAX", 200),
		Status:  getenv("SUGGESTIONS_CHECK_STATUS", "Pending"),
		Timeout: mustMillis("SUGGESTIONS_CHECK_TIMEOUT_MS", 15*time.Second),
	}
}

// PerksGap holds PERKS_GAP_* settings.
type PerksGap struct {
	Input      string // saved HTML perks page
	BaseURL    string // prefix for deal links
	ReportsDir string
}

func LoadPerksGap() PerksGap {
	return PerksGap{
		Input:      getenv("PERKS_GAP_INPUT", "perks-believe.html"),
		BaseURL:    strings.TrimRight(getenv("PERKS_GAP_BASE_URL", "https://perks.believe.app"), "/"),
		ReportsDir: getenv("REPORTS_DIR", "reports"),
	}
}
