package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/pkg/perplexity"
)

const groundingPrompt = `Find the official website of this UK hotel:

Hotel: %s
Location: %s

Answer with the official website URL first, then the hotel's UK phone
number and number of rooms if you can establish them from the official
site. Do not answer with booking sites, travel agencies, or directories.`

// GroundingProvider asks a search-grounded model directly for the hotel's
// official website. It yields the model's cited sources as candidates and
// forwards the answer text so the extraction stage can use it as context.
type GroundingProvider struct {
	client perplexity.Client
	model  string
}

// NewGroundingProvider creates a provider over the Perplexity client.
func NewGroundingProvider(client perplexity.Client, modelName string) *GroundingProvider {
	return &GroundingProvider{client: client, model: modelName}
}

var _ Provider = (*GroundingProvider)(nil)

func (p *GroundingProvider) Name() string { return "grounding" }

func (p *GroundingProvider) Search(ctx context.Context, query model.HotelQuery) ([]model.CandidateURL, error) {
	loc := query.Address
	if loc == "" {
		loc = query.City
	}
	if query.Postcode != "" {
		loc = strings.TrimSpace(loc + " " + query.Postcode)
	}
	if loc == "" {
		loc = "United Kingdom"
	}

	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: p.model,
		Messages: []perplexity.Message{
			{Role: "user", Content: fmt.Sprintf(groundingPrompt, query.Name, loc)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: grounding completion")
	}

	answer := resp.Answer()
	seen := make(map[string]bool)
	var out []model.CandidateURL

	add := func(raw string) {
		u := normalizeCandidate(raw)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, model.CandidateURL{
			URL:      u,
			Provider: p.Name(),
			Notes:    answer,
		})
	}

	// URLs named in the answer come first; they are the model's actual pick.
	for _, raw := range extractURLs(answer) {
		add(raw)
	}
	for _, raw := range resp.Citations {
		add(raw)
	}

	return out, nil
}

var urlRe = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)

// extractURLs pulls http(s) URLs out of free text.
func extractURLs(text string) []string {
	return urlRe.FindAllString(text, -1)
}

// normalizeCandidate trims trailing punctuation and fragments from a URL
// found in prose.
func normalizeCandidate(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimRight(raw, ".,;:!?")
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ""
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
