package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"newsdash/db"
	"newsdash/internal/aggregator"
	"newsdash/internal/config"
	"newsdash/internal/handler"
	"newsdash/internal/payout"
	"newsdash/internal/repository"
	"newsdash/pkg/news"
	"newsdash/pkg/retry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})))

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

	var rates payout.RateStore = payout.NewMemoryRateStore()
	if cfg.DatabaseURL != "" {
		err = db.Connect(cfg.DatabaseURL, db.PoolOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
		}, cfg.RequestTimeout())
		if err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		defer db.Close()

		repo := repository.NewRateRepository(db.DB)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatalf("error preparing payout_rate table: %v", err)
		}

		rates = repo
	} else {
		slog.Warn("DATABASE_URL not set, payout rates are kept in memory")
	}

	var cache handler.ArticleCache
	switch {
	case cfg.RedisURL == "":
		slog.Info("REDIS_URL not set, article cache disabled")
	case !cfg.CacheEnabled():
		slog.Info("cache.ttl_sec is 0, article cache disabled")
	default:
		err = db.ConnectRedis(cfg.RedisURL)
		if err != nil {
			slog.Error("error connecting to Redis, continuing without cache", "error", err)
		} else {
			defer db.CloseRedis()
			cache = db.NewArticleCache(db.Redis, cfg.CacheTTL())
		}
	}

	newsHandler := handler.NewNewsHandler(agg, cache, cfg.RequestTimeout())
	payoutHandler := handler.NewPayoutHandler(rates, agg, cache, cfg.RequestTimeout())

	r := gin.Default()

	allowedOrigins := cfg.Server.AllowedOrigins

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/news", newsHandler.GetNews)
	r.GET("/analytics", newsHandler.GetAnalytics)
	r.GET("/payouts/rates", payoutHandler.GetRates)
	r.PUT("/payouts/rates", payoutHandler.PutRate)
	r.DELETE("/payouts/rates", payoutHandler.ResetRates)
	r.GET("/payouts/report", payoutHandler.GetReport)
	r.GET("/health", payoutHandler.GetHealth)

	slog.Info("starting server", "addr", cfg.Server.Addr, "provider", primary.Name())

	err = r.Run(cfg.Server.Addr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
