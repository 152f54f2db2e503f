package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatcher_IsExcluded(t *testing.T) {
	t.Parallel()
	m := NewPathMatcher([]string{"/blog/*", "/news/*", "/*.pdf", "/careers/*"})

	tests := []struct {
		name     string
		url      string
		excluded bool
	}{
		{"blog post", "https://grandhotel.co.uk/blog/post1", true},
		{"blog root", "https://grandhotel.co.uk/blog", true},
		{"blog deep path", "https://grandhotel.co.uk/blog/2024/01/post", true},
		{"news article", "https://grandhotel.co.uk/news/article", true},
		{"careers job", "https://grandhotel.co.uk/careers/job1", true},
		{"pdf file", "https://grandhotel.co.uk/report.pdf", true},
		{"about page", "https://grandhotel.co.uk/about", false},
		{"services", "https://grandhotel.co.uk/services", false},
		{"homepage", "https://grandhotel.co.uk/", false},
		{"team", "https://grandhotel.co.uk/team", false},
		{"nested pdf in path", "https://grandhotel.co.uk/docs/report.pdf", false}, // /*.pdf only matches root-level
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.excluded, m.IsExcluded(tt.url))
		})
	}
}

func TestPathMatcher_DefaultPatterns(t *testing.T) {
	m := NewPathMatcher(nil)

	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/blog/post"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/news/article"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/press/release"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/careers/job"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/privacy-policy"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/terms"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/brochure.pdf"))
	assert.False(t, m.IsExcluded("https://grandhotel.co.uk/about"))
	assert.False(t, m.IsExcluded("https://grandhotel.co.uk/rooms"))
	assert.False(t, m.IsExcluded("https://grandhotel.co.uk/contact"))
}

func TestPathMatcher_CaseInsensitive(t *testing.T) {
	m := NewPathMatcher([]string{"/Blog/*"})

	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/blog/post"))
	assert.True(t, m.IsExcluded("https://grandhotel.co.uk/BLOG/POST"))
}

func TestPathMatcher_InvalidURL(t *testing.T) {
	m := NewPathMatcher([]string{"/blog/*"})

	assert.True(t, m.IsExcluded("://invalid"))
}

func TestMatchSegmented(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pattern string
		urlPath string
		match   bool
	}{
		{"exact glob", "/blog/*", "/blog/post", true},
		{"deep path", "/blog/*", "/blog/2024/01/post", true},
		{"root match", "/blog/*", "/blog", true},
		{"no match", "/blog/*", "/about", false},
		{"pdf glob", "/*.pdf", "/report.pdf", true},
		{"nested no match", "/*.pdf", "/docs/report.pdf", false},
		{"root slash", "/blog/*", "/blog/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.match, matchSegmented(tt.pattern, tt.urlPath))
		})
	}
}

func TestPathMatcher_CustomPatterns(t *testing.T) {
	m := NewPathMatcher([]string{"/blog/*", "/news/*"})
	assert.True(t, m.IsExcluded("https://example.co.uk/blog/2024"))
	assert.False(t, m.IsExcluded("https://example.co.uk/rooms"))
}
