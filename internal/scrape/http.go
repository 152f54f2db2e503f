package scrape

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hotelinfo/internal/model"
)

const (
	userAgent    = "Mozilla/5.0 (compatible; HotelInfoBot/1.0)"
	maxBodyBytes = 512 * 1024
)

// HTTPFetcher retrieves pages with a plain GET. It is the first fetcher in
// the cascade and handles the vast majority of hotel sites.
type HTTPFetcher struct {
	httpClient *http.Client
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPFetcherClient overrides the underlying HTTP client.
func WithHTTPFetcherClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.httpClient = c }
}

// NewHTTPFetcher creates a plain-HTTP fetcher.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) Supports(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Fetch GETs the URL and returns its stripped text plus the raw HTML. A
// blocked response (WAF challenge, captcha, JS shell) is reported as a
// BlockError so the caller can escalate to the browser fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*model.ScrapedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch page")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	if block := DetectBlock(resp, body); block != nil {
		return nil, block
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("scrape: unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	html := string(body)
	text := stripHTML(html)
	if len(text) < 100 {
		// Keep the page; the site scraper decides whether sparse content
		// warrants a browser render.
		text = strings.TrimSpace(text)
	}

	return &model.ScrapedPage{
		URL:         pageURL,
		Title:       extractTitle(html),
		Text:        text,
		HTML:        html,
		FetchMethod: model.FetchHTTP,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
