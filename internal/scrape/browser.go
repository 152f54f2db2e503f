package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
)

const renderWait = 3 * time.Second

// BrowserFetcher renders pages in headless Chrome. It is only used when the
// plain HTTP fetch came back blocked or looked like a client-rendered shell,
// so each Fetch spins up a fresh browser context and tears it down after.
type BrowserFetcher struct {
	enabled bool
	timeout time.Duration
}

// NewBrowserFetcher creates a headless-browser fetcher. When enabled is
// false, Supports always returns false and the cascade skips it.
func NewBrowserFetcher(enabled bool, timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{enabled: enabled, timeout: timeout}
}

func (f *BrowserFetcher) Name() string { return "browser" }

func (f *BrowserFetcher) Supports(url string) bool {
	return f.enabled && (strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"))
}

// newContext creates a fresh chromedp context (one browser, one tab).
func (f *BrowserFetcher) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// Fetch navigates to the URL, waits for the JS to settle, and returns the
// rendered DOM.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*model.ScrapedPage, error) {
	ctx, cancelTimeout := context.WithTimeout(ctx, f.timeout)
	defer cancelTimeout()

	tabCtx, cancel := f.newContext(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(renderWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: render %s", pageURL)
	}

	zap.L().Debug("rendered page",
		zap.String("url", pageURL),
		zap.Int("html_bytes", len(html)))

	return &model.ScrapedPage{
		URL:         pageURL,
		Title:       extractTitle(html),
		Text:        stripHTML(html),
		HTML:        html,
		FetchMethod: model.FetchBrowser,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

var _ Fetcher = (*BrowserFetcher)(nil)
