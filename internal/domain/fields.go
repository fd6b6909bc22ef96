package domain

import (
	"github.com/MrSnakeDoc/launchpad/internal/notion"
	"github.com/MrSnakeDoc/launchpad/internal/propmap"
)

// Program fields.
const (
	FieldName             propmap.Field = "name"
	FieldProvider         propmap.Field = "provider"
	FieldCategory         propmap.Field = "category"
	FieldStage            propmap.Field = "stage"
	FieldOfferType        propmap.Field = "offer_type"
	FieldValueUSD         propmap.Field = "value_usd"
	FieldWhatYouGet       propmap.Field = "what_you_get"
	FieldEligibility      propmap.Field = "eligibility"
	FieldHowToApply       propmap.Field = "how_to_apply"
	FieldAutoSummary      propmap.Field = "auto_summary"
	FieldSourceSummary    propmap.Field = "source_summary"
	FieldGeo              propmap.Field = "geo"
	FieldRequiresReferral propmap.Field = "requires_referral"
	FieldApplyURL         propmap.Field = "apply_url"
	FieldSourceURL        propmap.Field = "source_url"
	FieldFinalURL         propmap.Field = "final_url"
	FieldSourceType       propmap.Field = "source_type"
	FieldStatus           propmap.Field = "status"
	FieldConfidence       propmap.Field = "confidence"
	FieldLinkStatus       propmap.Field = "link_status"
	FieldHTTPStatus       propmap.Field = "http_status"
	FieldLastVerified     propmap.Field = "last_verified"
	FieldNeedsReview      propmap.Field = "needs_review"
)

// Suggestion fields not shared with programs.
const (
	FieldTitle            propmap.Field = "title"
	FieldSuggestionType   propmap.Field = "suggestion_type"
	FieldRelatedProgramID propmap.Field = "related_program_id"
	FieldProgramURL       propmap.Field = "program_url"
	FieldProposedChange   propmap.Field = "proposed_change"
	FieldSubmitterEmail   propmap.Field = "submitter_email"
	FieldEvidenceURL      propmap.Field = "evidence_url"
	FieldNotes            propmap.Field = "notes"
)

var (
	textTypes   = []string{notion.TypeRichText}
	urlTypes    = []string{notion.TypeURL, notion.TypeRichText}
	choiceTypes = []string{notion.TypeSelect, notion.TypeStatus, notion.TypeRichText}
	multiTypes  = []string{notion.TypeMultiSelect}
)

// ProgramTable maps program fields onto the Programs database.
var ProgramTable = propmap.Table{
	FieldName:             {Candidates: []string{"Program Name", "Name", "Program"}, Types: []string{notion.TypeTitle}},
	FieldProvider:         {Candidates: []string{"Provider", "Company", "Organization"}, Types: []string{notion.TypeRichText, notion.TypeSelect}},
	FieldCategory:         {Candidates: []string{"Category", "Categories"}, Types: multiTypes},
	FieldStage:            {Candidates: []string{"Best For Stage", "Stage", "Stages"}, Types: multiTypes},
	FieldOfferType:        {Candidates: []string{"Offer Type", "Type"}, Types: choiceTypes},
	FieldValueUSD:         {Candidates: []string{"Value (USD est.)", "Value (USD)", "Value"}, Types: []string{notion.TypeNumber}},
	FieldWhatYouGet:       {Candidates: []string{"What you get", "Offer Summary", "Offer"}, Types: textTypes},
	FieldEligibility:      {Candidates: []string{"Eligibility Summary", "Eligibility", "Who qualifies"}, Types: textTypes},
	FieldHowToApply:       {Candidates: []string{"How to apply", "Application Steps"}, Types: textTypes},
	FieldAutoSummary:      {Candidates: []string{"Auto summary", "Notes"}, Types: textTypes},
	FieldSourceSummary:    {Candidates: []string{"Source Summary", "Summary", "Description"}, Types: textTypes},
	FieldGeo:              {Candidates: []string{"Geo Restrictions", "Geo", "Region"}, Types: choiceTypes},
	FieldRequiresReferral: {Candidates: []string{"Requires VC/Accelerator Referral", "Requires Referral", "Referral Required"}, Types: []string{notion.TypeCheckbox}},
	FieldApplyURL:         {Candidates: []string{"Application Link", "Apply URL", "URL", "Website", "Canonical URL", "Canonical Link"}, Types: urlTypes},
	FieldSourceURL:        {Candidates: []string{"Source URL", "Source", "Source Link"}, Types: urlTypes},
	FieldFinalURL:         {Candidates: []string{"Final URL"}, Types: urlTypes},
	FieldSourceType:       {Candidates: []string{"Source Type"}, Types: choiceTypes},
	FieldStatus:           {Candidates: []string{"Status"}, Types: []string{notion.TypeStatus, notion.TypeSelect}},
	FieldConfidence:       {Candidates: []string{"Extraction confidence", "Confidence"}, Types: choiceTypes},
	FieldLinkStatus:       {Candidates: []string{"Link Status"}, Types: choiceTypes},
	FieldHTTPStatus:       {Candidates: []string{"HTTP Status", "HTTP Code"}, Types: []string{notion.TypeNumber, notion.TypeRichText}},
	FieldLastVerified:     {Candidates: []string{"Last Verified", "Last Checked"}, Types: []string{notion.TypeDate}},
	FieldNeedsReview:      {Candidates: []string{"Needs Review", "Needs review", "NeedsReview", "Review Needed", "Needs QA"}, Types: []string{notion.TypeCheckbox}},
}

// SuggestionTable maps suggestion fields onto the Suggestions database.
var SuggestionTable = propmap.Table{
	FieldTitle:            {Candidates: []string{"Title", "Name", "Program Name"}, Types: []string{notion.TypeTitle}},
	FieldSuggestionType:   {Candidates: []string{"Suggestion Type", "Type"}, Types: choiceTypes},
	FieldRelatedProgramID: {Candidates: []string{"Related Program ID", "Program ID"}, Types: textTypes},
	FieldProgramURL:       {Candidates: []string{"Program URL", "URL", "Link"}, Types: urlTypes},
	FieldProvider:         {Candidates: []string{"Provider", "Company"}, Types: []string{notion.TypeRichText, notion.TypeSelect}},
	FieldCategory:         {Candidates: []string{"Category", "Categories"}, Types: multiTypes},
	FieldStage:            {Candidates: []string{"Stage", "Best For Stage"}, Types: multiTypes},
	FieldWhatYouGet:       {Candidates: []string{"What you get", "Offer"}, Types: textTypes},
	FieldEligibility:      {Candidates: []string{"Eligibility", "Who qualifies"}, Types: textTypes},
	FieldProposedChange:   {Candidates: []string{"Proposed change", "Proposed Change", "Change"}, Types: textTypes},
	FieldSubmitterEmail:   {Candidates: []string{"Submitter email", "Submitter Email", "Email"}, Types: []string{notion.TypeEmail, notion.TypeRichText}},
	FieldEvidenceURL:      {Candidates: []string{"Evidence / Source URL", "Evidence URL", "Source URL"}, Types: urlTypes},
	FieldNotes:            {Candidates: []string{"Notes", "Reviewer Notes"}, Types: textTypes},
	FieldStatus:           {Candidates: []string{"Status"}, Types: []string{notion.TypeStatus, notion.TypeSelect}},
}
