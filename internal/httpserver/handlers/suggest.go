package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

const maxSuggestionBody = 64 << 10

type suggestResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// stringList accepts a JSON array or a comma separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = cleanList(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = cleanList(strings.Split(s, ","))
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type suggestRequest struct {
	Title            string     `json:"title"`
	SuggestionType   string     `json:"suggestionType"`
	RelatedProgramID string     `json:"relatedProgramId"`
	ProgramURL       string     `json:"programUrl"`
	Provider         string     `json:"provider"`
	Category         stringList `json:"category"`
	Stage            stringList `json:"stage"`
	WhatYouGet       string     `json:"whatYouGet"`
	Eligibility      string     `json:"eligibility"`
	ProposedChange   string     `json:"proposedChange"`
	SubmitterEmail   string     `json:"submitterEmail"`
	EvidenceURL      string     `json:"evidenceUrl"`
	Notes            string     `json:"notes"`
}

func (s suggestRequest) suggestion() *domain.Suggestion {
	return &domain.Suggestion{
		Title:            domain.CompactText(s.Title, 200),
		Type:             domain.ParseSuggestionType(s.SuggestionType),
		RelatedProgramID: strings.TrimSpace(s.RelatedProgramID),
		ProgramURL:       strings.TrimSpace(s.ProgramURL),
		Provider:         domain.CompactText(s.Provider, 160),
		Category:         s.Category,
		Stage:            s.Stage,
		WhatYouGet:       strings.TrimSpace(s.WhatYouGet),
		Eligibility:      strings.TrimSpace(s.Eligibility),
		ProposedChange:   strings.TrimSpace(s.ProposedChange),
		SubmitterEmail:   strings.TrimSpace(s.SubmitterEmail),
		EvidenceURL:      strings.TrimSpace(s.EvidenceURL),
		Notes:            strings.TrimSpace(s.Notes),
		Status:           domain.SuggestionPending,
	}
}

func formRequest(form url.Values) suggestRequest {
	list := func(key string) stringList {
		var out []string
		for _, v := range form[key] {
			out = append(out, strings.Split(v, ",")...)
		}
		return cleanList(out)
	}
	return suggestRequest{
		Title:            form.Get("title"),
		SuggestionType:   form.Get("suggestionType"),
		RelatedProgramID: form.Get("relatedProgramId"),
		ProgramURL:       form.Get("programUrl"),
		Provider:         form.Get("provider"),
		Category:         list("category"),
		Stage:            list("stage"),
		WhatYouGet:       form.Get("whatYouGet"),
		Eligibility:      form.Get("eligibility"),
		ProposedChange:   form.Get("proposedChange"),
		SubmitterEmail:   form.Get("submitterEmail"),
		EvidenceURL:      form.Get("evidenceUrl"),
		Notes:            form.Get("notes"),
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// Suggest files a reader submission. It takes a JSON or form body.
func Suggest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Suggestions == nil {
			writeError(w, http.StatusServiceUnavailable, "Suggestions are not enabled", d.Logger)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxSuggestionBody)

		var req suggestRequest
		if isJSON(r) {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid JSON body", d.Logger)
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid form body", d.Logger)
				return
			}
			req = formRequest(r.PostForm)
		}

		sg := req.suggestion()
		if sg.Title == "" {
			d.Metrics.Suggestion("invalid")
			writeError(w, http.StatusBadRequest, "Missing title", d.Logger)
			return
		}

		id, err := d.Suggestions.CreateSuggestion(r.Context(), sg)
		if err != nil {
			d.Metrics.Suggestion("error")
			d.Logger.Error("failed to create suggestion",
				logger.String("title", sg.Title),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to save suggestion", d.Logger)
			return
		}

		d.Metrics.Suggestion("created")
		d.Logger.Info("📋 suggestion received",
			logger.String("id", id),
			logger.String("title", sg.Title),
			logger.String("type", string(sg.Type)))
		writeJSON(w, http.StatusOK, suggestResponse{OK: true, ID: id}, d.Logger)
	}
}

// Feedback takes the program page form (program_id, notes, submitter_email)
// and redirects back to the home page.
func Feedback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Suggestions == nil {
			writeError(w, http.StatusServiceUnavailable, "Suggestions are not enabled", d.Logger)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxSuggestionBody)
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form body", d.Logger)
			return
		}

		notes := strings.TrimSpace(r.PostForm.Get("notes"))
		if notes == "" {
			writeError(w, http.StatusBadRequest, "Missing notes", d.Logger)
			return
		}

		programID := strings.TrimSpace(r.PostForm.Get("program_id"))
		title := "Program feedback"
		if p, ok := d.Catalog.Get(programID); ok && programID != "" {
			title = "Feedback: " + p.Name
		}

		sg := &domain.Suggestion{
			Title:            domain.CompactText(title, 200),
			Type:             domain.SuggestUpdate,
			RelatedProgramID: programID,
			Notes:            notes,
			SubmitterEmail:   strings.TrimSpace(r.PostForm.Get("submitter_email")),
			Status:           domain.SuggestionPending,
		}
		if _, err := d.Suggestions.CreateSuggestion(r.Context(), sg); err != nil {
			d.Metrics.Suggestion("error")
			d.Logger.Error("failed to create feedback",
				logger.String("program", programID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to save feedback", d.Logger)
			return
		}

		d.Metrics.Suggestion("feedback")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
