// Package fetch performs the outbound HTTP requests made by the maintenance
// jobs: reachability checks on program links and page downloads for
// enrichment.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/launchpad/internal/version"
)

const (
	// DefaultTimeout applies when Options.Timeout is zero.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBody caps how much of a page body is read.
	DefaultMaxBody = 2 << 20

	maxRedirects = 10
)

type Options struct {
	Timeout   time.Duration
	MaxBody   int64
	UserAgent string
	// Transport overrides the default transport (tests).
	Transport http.RoundTripper
}

// Client follows redirects and reports where a URL finally lands.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	maxBody   int64
	userAgent string
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: opts.Timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:    10,
			IdleConnTimeout: 30 * time.Second,
		}
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		timeout:   opts.Timeout,
		maxBody:   opts.MaxBody,
		userAgent: opts.UserAgent,
	}
}

// Result is the outcome of a reachability check.
// Status is 0 when no response was received.
type Result struct {
	Status   int
	FinalURL string
	Err      error
}

// Check issues a HEAD request, retrying with GET when the server refuses
// HEAD (403, 405, 501). Redirects are followed.
func (c *Client) Check(ctx context.Context, rawURL string) Result {
	res := c.probe(ctx, http.MethodHead, rawURL)
	switch res.Status {
	case http.StatusForbidden, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return c.probe(ctx, http.MethodGet, rawURL)
	}
	return res
}

func (c *Client) probe(ctx context.Context, method, rawURL string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, rawURL)
	if err != nil {
		return Result{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("%s %s: %w", method, rawURL, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	// drain a little so the connection can be reused
	_, _ = io.CopyN(io.Discard, resp.Body, 4096)

	return Result{Status: resp.StatusCode, FinalURL: resp.Request.URL.String()}
}

// Page is a downloaded document.
type Page struct {
	Status      int
	FinalURL    string
	ContentType string
	Body        []byte
}

// IsPDF reports whether the page is a PDF by content type or URL suffix.
func (p *Page) IsPDF() bool {
	if strings.Contains(strings.ToLower(p.ContentType), "application/pdf") {
		return true
	}
	u := strings.ToLower(p.FinalURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".pdf")
}

// Get downloads a page, reading at most MaxBody bytes. A non-2xx response is
// returned together with an error.
func (c *Client) Get(ctx context.Context, rawURL string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	page := &Page{
		Status:      resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return page, fmt.Errorf("read %s: %w", rawURL, err)
	}
	page.Body = body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return page, fmt.Errorf("GET %s: HTTP %d", rawURL, resp.StatusCode)
	}
	return page, nil
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("empty url")
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	return req, nil
}
