package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Lookup     LookupConfig     `yaml:"lookup" mapstructure:"lookup"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Rate       RateConfig       `yaml:"rate" mapstructure:"rate"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the Redis result cache.
type CacheConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
}

// SearchConfig configures candidate discovery.
type SearchConfig struct {
	TimeoutSecs            int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxCandidates          int `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxProviderConcurrency int `yaml:"max_provider_concurrency" mapstructure:"max_provider_concurrency"`
}

// ScrapeConfig configures page fetching.
type ScrapeConfig struct {
	TimeoutSecs    int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxSubpages    int  `yaml:"max_subpages" mapstructure:"max_subpages"`
	MinTextLen     int  `yaml:"min_text_len" mapstructure:"min_text_len"`
	BrowserEnabled bool `yaml:"browser_enabled" mapstructure:"browser_enabled"`
}

// LookupConfig configures the per-hotel lookup run.
type LookupConfig struct {
	DeadlineSecs int `yaml:"deadline_secs" mapstructure:"deadline_secs"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// RateConfig configures the process-wide outbound request ceiling.
type RateConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	Model      string `yaml:"model" mapstructure:"model"`
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// JinaConfig holds Jina AI Reader and Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.url", "redis://localhost:6379")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.max_candidates", 3)
	v.SetDefault("search.max_provider_concurrency", 15)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.max_subpages", 3)
	v.SetDefault("scrape.min_text_len", 500)
	v.SetDefault("scrape.browser_enabled", true)
	v.SetDefault("lookup.deadline_secs", 120)
	v.SetDefault("batch.max_concurrency", 25)
	v.SetDefault("rate.requests_per_minute", 60)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_retries", 3)
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required for the given run mode
// ("lookup", "batch", "serve"). Collects all problems into one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "lookup", "batch", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Anthropic.Key == "" {
		problems = append(problems, "anthropic.key is required")
	}
	if c.Jina.Key == "" && c.Perplexity.Key == "" {
		problems = append(problems, "at least one of jina.key or perplexity.key is required")
	}
	if c.Batch.MaxConcurrency < 1 || c.Batch.MaxConcurrency > 100 {
		problems = append(problems, "batch.max_concurrency must be between 1 and 100")
	}
	if c.Search.MaxProviderConcurrency < 1 || c.Search.MaxProviderConcurrency > c.Batch.MaxConcurrency {
		problems = append(problems, "search.max_provider_concurrency must be between 1 and batch.max_concurrency")
	}
	if c.Rate.RequestsPerMinute < 1 {
		problems = append(problems, "rate.requests_per_minute must be > 0")
	}
	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
