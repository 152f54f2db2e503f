package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/hotelinfo/internal/ai"
	"github.com/sells-group/hotelinfo/internal/cache"
	"github.com/sells-group/hotelinfo/internal/lookup"
	"github.com/sells-group/hotelinfo/internal/scrape"
	"github.com/sells-group/hotelinfo/internal/search"
	"github.com/sells-group/hotelinfo/pkg/anthropic"
	"github.com/sells-group/hotelinfo/pkg/jina"
	"github.com/sells-group/hotelinfo/pkg/perplexity"
)

// env bundles the wired pipeline for one command run.
type env struct {
	store cache.Store
	orch  *lookup.Orchestrator
	batch *lookup.Batch
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("cache close", zap.Error(err))
	}
}

// initEnv validates the config for the run mode and wires the pipeline.
// A Redis that is down degrades to a disabled cache rather than failing
// the run.
func initEnv(mode string) (*env, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	var store cache.Store
	if cfg.Cache.Disabled {
		store = &cache.Disabled{}
	} else {
		rs, err := cache.NewRedisStore(cfg.Cache.URL)
		if err != nil {
			zap.L().Warn("cache unavailable, continuing without",
				zap.String("url", cfg.Cache.URL),
				zap.Error(err))
			store = &cache.Disabled{}
		} else {
			store = rs
		}
	}

	var providers []search.Provider
	if cfg.Perplexity.Key != "" {
		pc := perplexity.NewClient(cfg.Perplexity.Key, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
		providers = append(providers, search.NewGroundingProvider(pc, cfg.Perplexity.Model))
	}
	var jinaClient jina.Client
	if cfg.Jina.Key != "" {
		jinaClient = jina.NewClient(cfg.Jina.Key,
			jina.WithBaseURL(cfg.Jina.BaseURL),
			jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		providers = append(providers, search.NewJinaProvider(jinaClient))
	}

	resolver := search.NewResolver(search.ResolverConfig{
		ProviderTimeout: time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		MaxCandidates:   cfg.Search.MaxCandidates,
	}, providers...)

	var readerF scrape.Fetcher
	if jinaClient != nil {
		readerF = scrape.NewReaderFetcher(jinaClient)
	}
	scrapeTimeout := time.Duration(cfg.Scrape.TimeoutSecs) * time.Second
	scraper := scrape.NewSiteScraper(
		scrape.NewHTTPFetcher(),
		scrape.NewBrowserFetcher(cfg.Scrape.BrowserEnabled, scrapeTimeout),
		readerF,
		scrape.SiteConfig{
			MaxSubpages: cfg.Scrape.MaxSubpages,
			MinTextLen:  cfg.Scrape.MinTextLen,
		})

	aiSvc := ai.NewService(
		anthropic.NewClient(cfg.Anthropic.Key),
		ai.Config{Model: cfg.Anthropic.Model, MaxRetries: cfg.Anthropic.MaxRetries})

	orch := lookup.NewOrchestrator(store, resolver, lookup.NewURLValidator(nil), scraper, aiSvc,
		lookup.Config{
			CacheTTL: time.Duration(cfg.Cache.TTLHours) * time.Hour,
			Deadline: time.Duration(cfg.Lookup.DeadlineSecs) * time.Second,
		})

	batch := lookup.NewBatch(orch, lookup.BatchConfig{
		MaxConcurrency:         cfg.Batch.MaxConcurrency,
		MaxProviderConcurrency: cfg.Search.MaxProviderConcurrency,
		RequestsPerMinute:      cfg.Rate.RequestsPerMinute,
	})

	return &env{store: store, orch: orch, batch: batch}, nil
}
