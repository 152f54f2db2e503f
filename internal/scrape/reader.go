package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/pkg/jina"
)

// ReaderFetcher proxies fetches through the Jina reader API. It is the last
// rung of the cascade, for sites that block both plain HTTP and the
// headless browser.
type ReaderFetcher struct {
	client jina.Client
}

// NewReaderFetcher creates a reader-API fetcher.
func NewReaderFetcher(client jina.Client) *ReaderFetcher {
	return &ReaderFetcher{client: client}
}

func (f *ReaderFetcher) Name() string { return "jina_reader" }

func (f *ReaderFetcher) Supports(url string) bool {
	return f.client != nil &&
		(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"))
}

// Fetch reads the URL through the reader API. The reader returns markdown
// rather than HTML, so the page carries text only.
func (f *ReaderFetcher) Fetch(ctx context.Context, pageURL string) (*model.ScrapedPage, error) {
	resp, err := f.client.Read(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read %s", pageURL)
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, eris.Errorf("scrape: reader returned code %d for %s", resp.Code, pageURL)
	}

	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < 100 {
		return nil, eris.Errorf("scrape: reader content too short for %s", pageURL)
	}

	return &model.ScrapedPage{
		URL:         pageURL,
		Title:       resp.Data.Title,
		Text:        content,
		FetchMethod: model.FetchReader,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

var _ Fetcher = (*ReaderFetcher)(nil)
