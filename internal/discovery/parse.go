package discovery

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
	"github.com/MrSnakeDoc/launchpad/internal/sources"
)

const (
	titleMax      = 240
	linkTextMax   = 200
	summaryMax    = 1200
	linkMaxLength = 1000
)

// ParseFeed extracts candidates from an RSS or Atom document.
// Entries without a title or link are skipped.
func ParseFeed(body []byte, src sources.Source) ([]Candidate, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := domain.CompactText(item.Title, titleMax)
		link := domain.CompactText(extractLink(item), linkMaxLength)
		if title == "" || link == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}
		summary = domain.CompactText(htmlText(summary), summaryMax)

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		out = append(out, Candidate{
			SourceName:   src.Name,
			SourceURL:    src.URL,
			Title:        title,
			URL:          link,
			Summary:      summary,
			Published:    published,
			ProviderHint: src.ProviderHint,
			Category:     InferCategory(title, summary, src),
			Stage:        InferStage(src),
		})
	}
	return out, nil
}

// extractLink prefers the explicit link, falling back to an http GUID.
func extractLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}

// ParseLinks extracts every anchor with visible text and an absolute http(s)
// target from an HTML page.
func ParseLinks(body []byte, src sources.Source) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, _ := url.Parse(src.URL)

	var out []Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := absolutize(base, href)
		if link == "" {
			return
		}
		text := domain.CompactText(a.Text(), linkTextMax)
		if text == "" {
			return
		}
		out = append(out, Candidate{
			SourceName:   src.Name,
			SourceURL:    src.URL,
			Title:        text,
			URL:          link,
			ProviderHint: src.ProviderHint,
			Category:     InferCategory(text, "", src),
			Stage:        InferStage(src),
		})
	})
	return out, nil
}

func absolutize(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	if ref.Host == "" {
		return ""
	}
	return ref.String()
}

// htmlText flattens an HTML fragment such as a feed description.
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}
