package search

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/internal/resilience"
)

// minKeepScore drops candidates that score worse than a bare aggregator
// would after filtering.
const minKeepScore = -20

// ResolverConfig tunes candidate resolution.
type ResolverConfig struct {
	// ProviderTimeout bounds each provider call. Default: 15s.
	ProviderTimeout time.Duration
	// MaxCandidates caps the returned slice. Default: 3.
	MaxCandidates int
}

// Resolver runs the provider cascade: providers are tried in priority
// order and the first one that yields usable candidates wins. Provider
// failures trip a per-provider circuit breaker and fall through to the
// next provider; exhausting all providers is not an error.
type Resolver struct {
	providers []Provider
	breakers  *resilience.ServiceBreakers
	cfg       ResolverConfig
}

// NewResolver creates a resolver over the given providers, in priority order.
func NewResolver(cfg ResolverConfig, providers ...Provider) *Resolver {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 15 * time.Second
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 3
	}
	return &Resolver{
		providers: providers,
		breakers:  resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig()),
		cfg:       cfg,
	}
}

// Resolve returns up to MaxCandidates ranked candidate URLs for the query.
// An empty result with a nil error means every provider came up empty.
func (r *Resolver) Resolve(ctx context.Context, query model.HotelQuery) ([]model.CandidateURL, error) {
	log := zap.L().With(zap.String("hotel", query.Name))

	for _, p := range r.providers {
		cb := r.breakers.Get(p.Name())

		pctx, cancel := context.WithTimeout(ctx, r.cfg.ProviderTimeout)
		results, err := resilience.ExecuteVal(pctx, cb, func(ctx context.Context) ([]model.CandidateURL, error) {
			return p.Search(ctx, query)
		})
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("search: provider failed, falling through",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}

		ranked := r.rank(query, results)
		if len(ranked) == 0 {
			log.Debug("search: provider returned nothing usable",
				zap.String("provider", p.Name()),
			)
			continue
		}

		log.Info("search: candidates resolved",
			zap.String("provider", p.Name()),
			zap.Int("count", len(ranked)),
		)
		return ranked, nil
	}

	return nil, nil
}

// Aggregators runs the provider cascade but keeps only booking-aggregator
// results. This inverts the usual denylist: aggregator pages can never be
// the official site, but their listings often carry the room count and
// phone number of hotels whose own sites are parked or down.
func (r *Resolver) Aggregators(ctx context.Context, query model.HotelQuery) ([]model.CandidateURL, error) {
	log := zap.L().With(zap.String("hotel", query.Name))

	for _, p := range r.providers {
		cb := r.breakers.Get(p.Name())

		pctx, cancel := context.WithTimeout(ctx, r.cfg.ProviderTimeout)
		results, err := resilience.ExecuteVal(pctx, cb, func(ctx context.Context) ([]model.CandidateURL, error) {
			return p.Search(ctx, query)
		})
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("search: provider failed, falling through",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}

		seen := make(map[string]bool)
		var kept []model.CandidateURL
		for _, c := range results {
			key := canonicalURL(c.URL)
			if key == "" || seen[key] || !IsAggregator(c.URL) {
				continue
			}
			seen[key] = true
			kept = append(kept, c)
			if len(kept) == r.cfg.MaxCandidates {
				break
			}
		}
		if len(kept) > 0 {
			log.Info("search: aggregator listings resolved",
				zap.String("provider", p.Name()),
				zap.Int("count", len(kept)),
			)
			return kept, nil
		}
	}

	return nil, nil
}

// rank filters denied domains, scores the survivors, and returns the top
// candidates best-first with Rank holding the score.
func (r *Resolver) rank(query model.HotelQuery, candidates []model.CandidateURL) []model.CandidateURL {
	seen := make(map[string]bool)
	var kept []model.CandidateURL

	for _, c := range candidates {
		key := canonicalURL(c.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if IsDenied(c.URL) {
			continue
		}
		c.Rank = scoreCandidate(query, c)
		if c.Rank < minKeepScore {
			continue
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Rank > kept[j].Rank })

	if len(kept) > r.cfg.MaxCandidates {
		kept = kept[:r.cfg.MaxCandidates]
	}
	return kept
}

// scoreCandidate applies the host and title heuristics that favor an
// official hotel site over everything else.
func scoreCandidate(query model.HotelQuery, c model.CandidateURL) int {
	u, err := url.Parse(c.URL)
	if err != nil {
		return minKeepScore - 1
	}
	host := strings.ToLower(u.Hostname())
	score := 0

	// Hotel name tokens appearing in the domain are the strongest signal.
	for _, token := range nameTokens(query.Name) {
		if strings.Contains(host, token) {
			score += 20
		}
	}

	switch {
	case strings.HasSuffix(host, ".co.uk"):
		score += 15
	case strings.HasSuffix(host, ".uk"):
		score += 12
	case strings.HasSuffix(host, ".com"):
		score += 8
	}

	if strings.Contains(strings.ToLower(c.Title), "official") {
		score += 15
	}

	// Deep paths suggest a listing page rather than a homepage.
	if strings.Count(strings.Trim(u.Path, "/"), "/") >= 2 {
		score -= 10
	}

	return score
}

// nameTokens returns the distinctive lowercase words of a hotel name.
func nameTokens(name string) []string {
	var tokens []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Trim(w, ".,&'-")
		if len(w) < 4 || w == "hotel" || w == "the" {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

func canonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}
