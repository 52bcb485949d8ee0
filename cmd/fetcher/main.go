package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"newsdash/db"
	"newsdash/internal/aggregator"
	"newsdash/internal/config"
	"newsdash/internal/model"
	"newsdash/pkg/news"
	"newsdash/pkg/retry"

	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if !cfg.CacheEnabled() {
		slog.Info("cache disabled, nothing to warm", "ttl_sec", cfg.Cache.TTLSec)
		return
	}

	err = db.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	var primary news.Searcher
	switch cfg.Sources.Provider {
	case config.ProviderFinnhub:
		primary = news.NewFinnHubClient(cfg.FinnhubKey)
	default:
		primary = news.NewNewsAPIClient(cfg.NewsAPIKey)
	}

	secondary := news.NewMediumClient(cfg.Sources.FeedBaseURL, retry.Policy{
		MaxAttempts: cfg.Sources.Retry.MaxAttempts,
		Delay:       cfg.Sources.Retry.Delay(),
		Retryable:   news.RetryOnStatus(cfg.Sources.Retry.Statuses...),
	})

	agg := aggregator.New(primary, secondary)
	cache := db.NewArticleCache(db.Redis, cfg.CacheTTL())

	var warmed, empty, partial, errors int

	for _, query := range cfg.Warmup.Queries {
		for _, selector := range cfg.Warmup.Types {
			params := model.DefaultQueryParameters()
			params.Query = query
			params.Type = model.TypeSelector(selector)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
			res, err := agg.Run(ctx, params)
			cancel()
			if err != nil {
				slog.Error("error aggregating articles", "query", query, "type", selector, "error", err)
				errors++
				continue
			}

			if res.Degraded() {
				slog.Warn("source failed, not caching partial result", "query", query, "type", selector, "failed", res.Failed)
				partial++
				continue
			}

			articles := res.Articles
			if len(articles) == 0 {
				slog.Info("no articles for query, skipping", "query", query, "type", selector)
				empty++
				continue
			}

			err = cache.Set(context.Background(), params.CacheKey(), articles)
			if err != nil {
				slog.Error("error writing article cache", "query", query, "type", selector, "error", err)
				errors++
				continue
			}

			warmed++
		}
	}

	slog.Info("warmup complete", "warmed", warmed, "empty", empty, "partial", partial, "errors", errors)
}
