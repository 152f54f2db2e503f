package scrape

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hotelinfo/internal/model"
)

func TestDetectBlock_Cloudflare403(t *testing.T) {
	resp := &http.Response{
		StatusCode: 403,
		Header:     http.Header{"Cf-Ray": {"abc123"}},
	}
	block := DetectBlock(resp, nil)
	require.NotNil(t, block)
	assert.Equal(t, BlockCloudflare, block.Type)
}

func TestDetectBlock_Cloudflare503Server(t *testing.T) {
	resp := &http.Response{
		StatusCode: 503,
		Header:     http.Header{"Server": {"cloudflare"}},
	}
	block := DetectBlock(resp, nil)
	require.NotNil(t, block)
	assert.Equal(t, BlockCloudflare, block.Type)
}

func TestDetectBlock_CaptchaInBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
	}
	body := []byte("<html><body>Please complete the reCAPTCHA to continue</body></html>")
	block := DetectBlock(resp, body)
	require.NotNil(t, block)
	assert.Equal(t, BlockCaptcha, block.Type)
}

func TestDetectBlock_JSShell(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
	}
	body := []byte("<html><noscript>Enable JavaScript to continue</noscript></html>")
	block := DetectBlock(resp, body)
	require.NotNil(t, block)
	assert.Equal(t, BlockJSShell, block.Type)
}

func TestDetectBlock_NilResponse(t *testing.T) {
	assert.Nil(t, DetectBlock(nil, nil))
}

func TestDetectBlock_CleanPage(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
	}
	body := []byte("<html><body>Welcome to The Grand Hotel. Book direct for the best rates.</body></html>")
	assert.Nil(t, DetectBlock(resp, body))
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, IsBlocked(&BlockError{Type: BlockCaptcha}))
	assert.True(t, IsBlocked(eris.Wrap(&BlockError{Type: BlockCloudflare}, "fetch homepage")))
	assert.False(t, IsBlocked(eris.New("connection refused")))
	assert.False(t, IsBlocked(nil))
}

func makePage(html string) *model.ScrapedPage {
	return &model.ScrapedPage{
		URL:         "https://example.com",
		HTML:        html,
		Text:        stripHTML(html),
		FetchMethod: model.FetchHTTP,
		FetchedAt:   time.Now().UTC(),
	}
}

func TestLooksClientRendered_AppShell(t *testing.T) {
	// Plenty of markup, almost no text.
	html := `<html><body><div id="root"></div><script>` +
		strings.Repeat("window.chunk.push([0]);", 400) +
		`</script></body></html>`
	page := makePage(html)
	assert.True(t, LooksClientRendered(page, 500))
}

func TestLooksClientRendered_NextMarker(t *testing.T) {
	html := `<html><body><div id="__next"></div><script>window.__NEXT_DATA__={}</script></body></html>`
	page := makePage(html)
	assert.True(t, LooksClientRendered(page, 500))
}

func TestLooksClientRendered_ContentfulPage(t *testing.T) {
	body := strings.Repeat("<p>The Grand Hotel has 201 bedrooms and a seafront restaurant.</p>", 100)
	page := makePage("<html><body>" + body + "</body></html>")
	assert.False(t, LooksClientRendered(page, 500))
}

func TestIsParkedDomain(t *testing.T) {
	assert.True(t, IsParkedDomain(makePage("<html><body>This domain is for sale! Contact us.</body></html>")))
	assert.True(t, IsParkedDomain(makePage("<html><head><script src='sedoparking.com/park.js'></script></head></html>")))
	assert.False(t, IsParkedDomain(makePage("<html><body>Welcome to The Grand Hotel Brighton.</body></html>")))
}
