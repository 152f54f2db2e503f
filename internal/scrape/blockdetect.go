package scrape

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sells-group/hotelinfo/internal/model"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// BlockError marks a response as blocked by anti-bot protection. The site
// scraper treats it as a signal to escalate to a browser render rather
// than a hard failure.
type BlockError struct {
	Type BlockType
	URL  string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("scrape: blocked (%s)", e.Type)
}

// IsBlocked reports whether err is (or wraps) a BlockError.
func IsBlocked(err error) bool {
	var be *BlockError
	return errors.As(err, &be)
}

// DetectBlock checks an HTTP response for signs of anti-bot protection.
// Returns nil when the response looks like a normal page.
func DetectBlock(resp *http.Response, body []byte) *BlockError {
	if resp == nil {
		return nil
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" {
			return &BlockError{Type: BlockCloudflare}
		}
		if resp.Header.Get("server") == "cloudflare" {
			return &BlockError{Type: BlockCloudflare}
		}
	}

	lower := strings.ToLower(string(body))

	// Cloudflare challenge page markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return &BlockError{Type: BlockCloudflare}
	}

	// Captcha markers.
	if strings.Contains(lower, "captcha") ||
		strings.Contains(lower, "recaptcha") ||
		strings.Contains(lower, "hcaptcha") {
		return &BlockError{Type: BlockCaptcha}
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return &BlockError{Type: BlockJSShell}
		}
		if strings.Contains(lower, "meta http-equiv=\"refresh\"") {
			return &BlockError{Type: BlockJSShell}
		}
	}

	return nil
}

// spaMarkers are root-element and framework fingerprints of client-rendered
// sites. Their presence alongside sparse text means the HTML fetch only got
// the app shell.
var spaMarkers = []string{
	`id="root"`,
	`id="app"`,
	`id="__next"`,
	"__next_data__",
	"__nuxt__",
	"ng-app",
	"data-v-",
}

// LooksClientRendered reports whether the page appears to be a JS app shell
// whose real content only exists after a browser render. The heuristic is
// substantial markup with very little visible text, or explicit framework
// markers.
func LooksClientRendered(page *model.ScrapedPage, minTextLen int) bool {
	htmlLen := len(page.HTML)
	textLen := len(page.Text)

	if htmlLen > 5*1024 && textLen < minTextLen {
		return true
	}

	lower := strings.ToLower(page.HTML)
	for _, marker := range spaMarkers {
		if strings.Contains(lower, marker) && textLen < minTextLen {
			return true
		}
	}
	return false
}

// parkedMarkers identify domain-parking and for-sale landing pages, which
// must never be accepted as a hotel's official website.
var parkedMarkers = []string{
	"this domain is for sale",
	"buy this domain",
	"domain parking",
	"parked free",
	"sedoparking",
	"godaddy.com/domainsearch",
	"this web page is parked",
}

// IsParkedDomain reports whether the page is a parked or for-sale domain.
func IsParkedDomain(page *model.ScrapedPage) bool {
	lower := strings.ToLower(page.HTML)
	for _, marker := range parkedMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
