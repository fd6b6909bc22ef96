// Package enrich fetches each program's page and rewrites its offer, eligibility
// and how-to-apply text from the best-scoring sentences on the page.
package enrich

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// Document is the readable content of an HTML page.
type Document struct {
	Title       string
	Description string
	Text        string
}

// Corpus joins title, description and body the way sentences are scored.
func (d Document) Corpus() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{d.Title, d.Description, d.Text} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}

// nonContentSelectors lists elements stripped before extracting text.
const nonContentSelectors = "script, style, noscript, svg, template"

// blockSelectors end a sentence when they close.
const blockSelectors = "p, div, li, h1, h2, h3, h4, h5, h6, br"

// Extract parses HTML into title, description and flattened body text.
func Extract(body []byte) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}

	d := Document{
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
	}

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}
	root.Find(nonContentSelectors).Remove()
	root.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(". ")
	})
	d.Text = domain.CompactText(root.Text(), 0)

	return d, nil
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(og) != "" {
		return domain.CompactText(og, 0)
	}
	return domain.CompactText(doc.Find("title").First().Text(), 0)
}

func extractMetaDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok && strings.TrimSpace(desc) != "" {
		return domain.CompactText(desc, 0)
	}
	if og, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		return domain.CompactText(og, 0)
	}
	return ""
}
