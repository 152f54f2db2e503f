// Package scrape fetches hotel website content: plain HTTP first, a
// headless browser render when the page is blocked or JS-heavy, and a
// reader API as the last resort.
package scrape

import (
	"context"

	"github.com/sells-group/hotelinfo/internal/model"
)

// Fetcher retrieves a single URL and returns its content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.ScrapedPage, error)
	Name() string
	Supports(url string) bool
}
