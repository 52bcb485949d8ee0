// Package config loads service settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidProvider      = errors.New("sources.provider must be one of: newsapi, finnhub")
	ErrMissingFeedBaseURL   = errors.New("sources.feed_base_url is required")
	ErrInvalidMaxAttempts   = errors.New("sources.retry.max_attempts must be at least 1")
	ErrInvalidRetryDelay    = errors.New("sources.retry.delay_ms must be non-negative")
	ErrNoRetryStatuses      = errors.New("sources.retry.statuses must list at least one status code")
	ErrInvalidTimeout       = errors.New("server.request_timeout_sec must be at least 1")
	ErrInvalidCacheTTL      = errors.New("cache.ttl_sec must be non-negative")
	ErrInvalidDatabasePool  = errors.New("database pool sizes and conn_max_lifetime_sec must be at least 1")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMissingServerAddress = errors.New("server.addr is required")
)

const (
	ProviderNewsAPI = "newsapi"
	ProviderFinnhub = "finnhub"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Sources  SourcesConfig  `yaml:"sources"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Warmup   WarmupConfig   `yaml:"warmup"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Secrets and connection strings only come from the environment.
	NewsAPIKey  string `yaml:"-"`
	FinnhubKey  string `yaml:"-"`
	DatabaseURL string `yaml:"-"`
	RedisURL    string `yaml:"-"`
}

type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
}

type SourcesConfig struct {
	Provider    string      `yaml:"provider"`
	FeedBaseURL string      `yaml:"feed_base_url"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig is the fixed-delay retry policy for the feed source.
type RetryConfig struct {
	MaxAttempts int   `yaml:"max_attempts"`
	DelayMs     int   `yaml:"delay_ms"`
	Statuses    []int `yaml:"statuses"`
}

// DatabaseConfig sizes the Postgres pool used for payout rates.
type DatabaseConfig struct {
	MaxOpenConns       int `yaml:"max_open_conns"`
	MaxIdleConns       int `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int `yaml:"conn_max_lifetime_sec"`
}

// CacheConfig sets the article cache TTL. Zero disables the cache.
type CacheConfig struct {
	TTLSec int `yaml:"ttl_sec"`
}

// WarmupConfig lists the queries the fetcher job pre-aggregates.
type WarmupConfig struct {
	Queries []string `yaml:"queries"`
	Types   []string `yaml:"types"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			AllowedOrigins:    []string{"http://localhost:3000"},
			RequestTimeoutSec: 15,
		},
		Sources: SourcesConfig{
			Provider:    ProviderNewsAPI,
			FeedBaseURL: "https://medium.com/feed/tag/",
			Retry: RetryConfig{
				MaxAttempts: 3,
				DelayMs:     1000,
				Statuses:    []int{429, 503},
			},
		},
		Cache: CacheConfig{TTLSec: 300},
		Database: DatabaseConfig{
			MaxOpenConns:       25,
			MaxIdleConns:       25,
			ConnMaxLifetimeSec: 300,
		},
		Warmup: WarmupConfig{
			Queries: []string{"news"},
			Types:   []string{"all"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty) and then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	c.FinnhubKey = os.Getenv("FINNHUB_API_KEY")
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.RedisURL = os.Getenv("REDIS_URL")

	if provider := os.Getenv("NEWS_PROVIDER"); provider != "" {
		c.Sources.Provider = strings.ToLower(provider)
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, frontendURL)
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrMissingServerAddress
	}

	if c.Server.RequestTimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Sources.Provider != ProviderNewsAPI && c.Sources.Provider != ProviderFinnhub {
		return ErrInvalidProvider
	}

	if c.Sources.FeedBaseURL == "" {
		return ErrMissingFeedBaseURL
	}

	if c.Sources.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Sources.Retry.DelayMs < 0 {
		return ErrInvalidRetryDelay
	}

	if len(c.Sources.Retry.Statuses) == 0 {
		return ErrNoRetryStatuses
	}

	if c.Cache.TTLSec < 0 {
		return ErrInvalidCacheTTL
	}

	if c.Database.MaxOpenConns < 1 || c.Database.MaxIdleConns < 1 || c.Database.ConnMaxLifetimeSec < 1 {
		return ErrInvalidDatabasePool
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// CacheEnabled is false when cache.ttl_sec is 0. Redis would otherwise keep
// entries written with a zero TTL forever.
func (c *Config) CacheEnabled() bool {
	return c.Cache.TTLSec > 0
}

func (dc *DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(dc.ConnMaxLifetimeSec) * time.Second
}

func (rc *RetryConfig) Delay() time.Duration {
	return time.Duration(rc.DelayMs) * time.Millisecond
}

func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
