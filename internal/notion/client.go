package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	// MaxPageSize is the largest page the query endpoint returns.
	MaxPageSize = 100

	defaultRetries = 3
)

// Options configures a Client.
type Options struct {
	// BaseURL redirects API calls to another origin (a proxy or a test
	// server). Empty or DefaultBaseURL talks to api.notion.com.
	BaseURL    string
	Token      string
	Version    string
	Timeout    time.Duration
	Retries    int
	HTTPClient *http.Client
}

// Client talks to the Notion REST API through notionapi and converts its
// typed objects into the flat value model used by the mapping layer.
type Client struct {
	api *notionapi.Client
}

func NewClient(opts Options) *Client {
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if base, ok := redirectTarget(opts.BaseURL); ok {
		next := hc.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		redirected := *hc
		redirected.Transport = &rewriteTransport{base: base, next: next}
		hc = &redirected
	}

	return &Client{
		api: notionapi.NewClient(notionapi.Token(opts.Token),
			notionapi.WithVersion(opts.Version),
			notionapi.WithHTTPClient(hc),
			notionapi.WithRetry(opts.Retries),
		),
	}
}

// APIError is the error object returned by the API.
type APIError = notionapi.Error

// IsNotFound reports whether err is an object_not_found response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound || string(apiErr.Code) == "object_not_found"
	}
	return false
}

// RetrieveDatabase fetches a database with its property schema.
func (c *Client) RetrieveDatabase(ctx context.Context, id string) (*Database, error) {
	db, err := c.api.Database.Get(ctx, notionapi.DatabaseID(id))
	if err != nil {
		return nil, fmt.Errorf("retrieve database %s: %w", id, err)
	}
	return fromAPIDatabase(db), nil
}

// QueryDatabase runs a single query page.
func (c *Client) QueryDatabase(ctx context.Context, id string, req QueryRequest) (*QueryResponse, error) {
	filter, err := apiFilter(req.Filter)
	if err != nil {
		return nil, fmt.Errorf("query database %s: %w", id, err)
	}
	sorts := make([]notionapi.SortObject, 0, len(req.Sorts))
	for _, s := range req.Sorts {
		sorts = append(sorts, notionapi.SortObject{
			Property:  s.Property,
			Direction: notionapi.SortOrder(s.Direction),
		})
	}

	resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(id), &notionapi.DatabaseQueryRequest{
		Filter:      filter,
		Sorts:       sorts,
		StartCursor: notionapi.Cursor(req.StartCursor),
		PageSize:    req.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("query database %s: %w", id, err)
	}

	out := &QueryResponse{
		Results: make([]Page, 0, len(resp.Results)),
		HasMore: resp.HasMore,
	}
	for i := range resp.Results {
		out.Results = append(out.Results, fromAPIPage(&resp.Results[i]))
	}
	if next := string(resp.NextCursor); next != "" {
		out.NextCursor = &next
	}
	return out, nil
}

// QueryAll follows next_cursor until the results are exhausted or max pages
// were collected. max <= 0 means no limit.
func (c *Client) QueryAll(ctx context.Context, id string, filter Filter, sorts []Sort, max int) ([]Page, error) {
	var (
		pages  []Page
		cursor string
	)
	for {
		size := MaxPageSize
		if max > 0 {
			remaining := max - len(pages)
			if remaining <= 0 {
				return pages, nil
			}
			if remaining < size {
				size = remaining
			}
		}

		resp, err := c.QueryDatabase(ctx, id, QueryRequest{
			Filter:      filter,
			Sorts:       sorts,
			StartCursor: cursor,
			PageSize:    size,
		})
		if err != nil {
			return pages, err
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		cursor = *resp.NextCursor
	}
}

// RetrievePage fetches one page by ID.
func (c *Client) RetrievePage(ctx context.Context, id string) (*Page, error) {
	page, err := c.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return nil, fmt.Errorf("retrieve page %s: %w", id, err)
	}
	out := fromAPIPage(page)
	return &out, nil
}

// UpdatePage patches the given properties on a page.
func (c *Client) UpdatePage(ctx context.Context, id string, props Properties) (*Page, error) {
	page, err := c.api.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: toAPIProperties(props),
	})
	if err != nil {
		return nil, fmt.Errorf("update page %s: %w", id, err)
	}
	out := fromAPIPage(page)
	return &out, nil
}

// CreatePage inserts a row into a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, props Properties) (*Page, error) {
	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: toAPIProperties(props),
	})
	if err != nil {
		return nil, fmt.Errorf("create page in %s: %w", databaseID, err)
	}
	out := fromAPIPage(page)
	return &out, nil
}

// ─────────────────────────────────────────────
// Base URL redirect
// ─────────────────────────────────────────────

// redirectTarget parses a non-default base URL. The trailing /v1 is dropped
// since notionapi already prefixes it.
func redirectTarget(raw string) (*url.URL, bool) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" || raw == DefaultBaseURL {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	u.Path = strings.TrimSuffix(u.Path, "/v1")
	return u, true
}

type rewriteTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.base.Scheme
	out.URL.Host = t.base.Host
	out.URL.Path = t.base.Path + req.URL.Path
	out.Host = ""
	return t.next.RoundTrip(out)
}
