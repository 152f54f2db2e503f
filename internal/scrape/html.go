package scrape

import (
	"net/url"
	"regexp"
	"strings"
)

var titleRe = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)

// extractTitle pulls the <title> from HTML.
func extractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// stripHTML removes scripts/styles/nav/footer, strips tags, decodes entities,
// and collapses whitespace. The result is plaintext suitable for extraction.
func stripHTML(html string) string {
	for _, tag := range []string{"script", "style", "noscript", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	// Block-level closings become newlines so phone numbers and room copy
	// don't run together.
	blockRe := regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|td|tr|section|article)>`)
	html = blockRe.ReplaceAllString(html, "\n")

	tagRe := regexp.MustCompile(`<[^>]+>`)
	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	spaceRe := regexp.MustCompile(`[ \t]+`)
	html = spaceRe.ReplaceAllString(html, " ")

	nlRe := regexp.MustCompile(`\n{3,}`)
	html = nlRe.ReplaceAllString(html, "\n\n")

	return strings.TrimSpace(html)
}

// anchor is a link extracted from HTML with its visible text.
type anchor struct {
	URL  string
	Text string
}

var anchorRe = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)

// parseAnchors extracts same-host links with their anchor text. Relative
// URLs are resolved against base; fragments, mailto and javascript links
// are dropped.
func parseAnchors(html string, base *url.URL) []anchor {
	var out []anchor
	seen := make(map[string]bool)

	for _, m := range anchorRe.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			continue
		}

		resolved, err := url.Parse(href)
		if err != nil {
			continue
		}
		absolute := base.ResolveReference(resolved)
		if absolute.Host != base.Host {
			continue
		}

		absolute.Fragment = ""
		normalized := absolute.String()
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		out = append(out, anchor{
			URL:  normalized,
			Text: strings.TrimSpace(stripHTML(m[2])),
		})
	}

	return out
}
