package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/pkg/jina"
)

// JinaProvider finds candidates through the Jina web search API, biased
// toward UK results.
type JinaProvider struct {
	client jina.Client
}

// NewJinaProvider creates a provider over the Jina client.
func NewJinaProvider(client jina.Client) *JinaProvider {
	return &JinaProvider{client: client}
}

var _ Provider = (*JinaProvider)(nil)

func (p *JinaProvider) Name() string { return "jina_search" }

func (p *JinaProvider) Search(ctx context.Context, query model.HotelQuery) ([]model.CandidateURL, error) {
	resp, err := p.client.Search(ctx, queryText(query), jina.WithCountry("gb"))
	if err != nil {
		return nil, eris.Wrap(err, "search: jina search")
	}

	out := make([]model.CandidateURL, 0, len(resp.Data))
	for _, r := range resp.Data {
		if r.URL == "" {
			continue
		}
		out = append(out, model.CandidateURL{
			URL:      r.URL,
			Provider: p.Name(),
			Title:    r.Title,
		})
	}
	return out, nil
}
