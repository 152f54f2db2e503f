package scrape

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/hotelinfo/internal/model"
)

// renderGainThreshold is how much more text a browser render must yield
// before it replaces the plain HTTP fetch. Renders cost seconds; a marginal
// gain is not worth keeping.
const renderGainThreshold = 1.5

// ErrParkedDomain means the site is a parked or for-sale domain and cannot
// be the hotel's official website.
var ErrParkedDomain = eris.New("scrape: parked domain")

// SiteConfig tunes the site scraper.
type SiteConfig struct {
	// MaxSubpages caps how many pages beyond the homepage are fetched.
	MaxSubpages int
	// MinTextLen is the text length below which a page counts as sparse
	// and a browser render is attempted.
	MinTextLen int
}

// DefaultSiteConfig returns production defaults.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{MaxSubpages: 3, MinTextLen: 500}
}

// SiteScraper fetches a hotel website's homepage plus the subpages most
// likely to carry contact details and room counts. Plain HTTP comes first;
// a headless render is used when the page is blocked or client-rendered,
// and the reader API is the last resort.
type SiteScraper struct {
	http    Fetcher
	browser Fetcher
	reader  Fetcher
	matcher *PathMatcher
	cfg     SiteConfig
}

// NewSiteScraper wires the fetcher cascade. browser and reader may be nil
// when those rungs are disabled.
func NewSiteScraper(httpF, browserF, readerF Fetcher, cfg SiteConfig) *SiteScraper {
	if cfg.MaxSubpages <= 0 {
		cfg.MaxSubpages = 3
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 500
	}
	return &SiteScraper{
		http:    httpF,
		browser: browserF,
		reader:  readerF,
		matcher: NewPathMatcher(nil),
		cfg:     cfg,
	}
}

// ScrapeSite fetches the homepage and up to MaxSubpages subpages. The
// homepage is always first in the result. Subpage failures are logged and
// skipped; only a total homepage failure returns an error.
func (s *SiteScraper) ScrapeSite(ctx context.Context, siteURL string) ([]*model.ScrapedPage, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: parse site url %s", siteURL)
	}

	home, err := s.fetchPage(ctx, siteURL)
	if err != nil {
		return nil, err
	}
	if IsParkedDomain(home) {
		return nil, ErrParkedDomain
	}

	pages := []*model.ScrapedPage{home}

	subURLs := rankSubpages(base, parseAnchors(home.HTML, base), s.matcher, s.cfg.MaxSubpages)
	if len(subURLs) == 0 {
		return pages, nil
	}

	results := make([]*model.ScrapedPage, len(subURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i, u := range subURLs {
		g.Go(func() error {
			page, err := s.fetchPage(gctx, u)
			if err != nil {
				zap.L().Debug("subpage fetch failed",
					zap.String("url", u),
					zap.Error(err))
				return nil
			}
			results[i] = page
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range results {
		if p != nil {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// ScrapePage fetches a single page through the fetcher cascade, without
// subpage discovery or parked-domain checks. Used for aggregator listings
// in the fallback path.
func (s *SiteScraper) ScrapePage(ctx context.Context, pageURL string) (*model.ScrapedPage, error) {
	return s.fetchPage(ctx, pageURL)
}

// fetchPage runs the cascade for one URL. The browser result only replaces
// a sparse HTTP result when the render yields materially more text.
func (s *SiteScraper) fetchPage(ctx context.Context, pageURL string) (*model.ScrapedPage, error) {
	var httpPage *model.ScrapedPage
	var httpErr error

	if s.http != nil && s.http.Supports(pageURL) {
		httpPage, httpErr = s.http.Fetch(ctx, pageURL)
	} else {
		httpErr = eris.Errorf("scrape: no http fetcher for %s", pageURL)
	}

	if httpErr != nil && ctx.Err() != nil {
		return nil, httpErr
	}

	// Escalate to a render when HTTP was blocked or failed outright, or
	// when it succeeded but the page looks like an empty JS shell.
	needRender := httpErr != nil ||
		LooksClientRendered(httpPage, s.cfg.MinTextLen) ||
		len(httpPage.Text) < s.cfg.MinTextLen

	if needRender && s.browser != nil && s.browser.Supports(pageURL) {
		rendered, err := s.browser.Fetch(ctx, pageURL)
		if err != nil {
			zap.L().Debug("browser render failed",
				zap.String("url", pageURL),
				zap.Error(err))
		} else if httpPage == nil ||
			float64(len(rendered.Text)) >= renderGainThreshold*float64(len(httpPage.Text)) {
			return rendered, nil
		}
	}

	if httpPage != nil {
		return httpPage, nil
	}

	if s.reader != nil && s.reader.Supports(pageURL) {
		page, err := s.reader.Fetch(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		zap.L().Debug("reader fetch failed",
			zap.String("url", pageURL),
			zap.Error(err))
	}

	return nil, eris.Wrapf(httpErr, "scrape: all fetchers failed for %s", pageURL)
}
