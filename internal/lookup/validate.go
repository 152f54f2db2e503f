package lookup

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hotelinfo/internal/resilience"
)

// ErrUnreachable means the candidate URL answered with a terminal non-2xx
// status. The candidate is skipped, not the lookup failed.
var ErrUnreachable = eris.New("lookup: url unreachable")

const validateTimeout = 5 * time.Second

// URLValidator confirms a candidate URL is alive before any scraping is
// spent on it. HEAD keeps it cheap; redirects are followed and the final
// URL is returned so the record points at the canonical address.
type URLValidator struct {
	client *http.Client
}

// NewURLValidator creates a validator with the given client, defaulting to
// one with the stage timeout.
func NewURLValidator(client *http.Client) *URLValidator {
	if client == nil {
		client = &http.Client{Timeout: validateTimeout}
	}
	return &URLValidator{client: client}
}

// Validate issues a HEAD request and returns the post-redirect URL. A
// transient failure (network error, 429, 5xx) is retried once; a terminal
// non-success status maps to ErrUnreachable. Some servers reject HEAD
// outright, so 405 falls back to a body-free GET.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) (string, error) {
	cfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 300 * time.Millisecond,
		OnRetry:        resilience.RetryLogger("validator", "head"),
	}

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		finalURL, status, err := v.head(ctx, rawURL)
		if err != nil {
			return "", resilience.NewTransientError(eris.Wrapf(err, "lookup: validate %s", rawURL), 0)
		}
		if status == http.StatusMethodNotAllowed {
			finalURL, status, err = v.get(ctx, rawURL)
			if err != nil {
				return "", resilience.NewTransientError(eris.Wrapf(err, "lookup: validate %s", rawURL), 0)
			}
		}

		switch {
		case status >= 200 && status < 400:
			return finalURL, nil
		case resilience.IsTransientHTTPStatus(status):
			return "", resilience.NewTransientError(eris.Errorf("lookup: validate %s: status %d", rawURL, status), status)
		default:
			return "", eris.Wrapf(ErrUnreachable, "status %d for %s", status, rawURL)
		}
	})
}

func (v *URLValidator) head(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	return v.do(req)
}

func (v *URLValidator) get(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	return v.do(req)
}

func (v *URLValidator) do(req *http.Request) (string, int, error) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; HotelInfoBot/1.0)")
	resp, err := v.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	return resp.Request.URL.String(), resp.StatusCode, nil
}
