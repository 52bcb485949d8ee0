package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"newsdash/internal/aggregator"
	"newsdash/internal/analytics"
	"newsdash/internal/model"
	"newsdash/pkg/news"
)

type ArticleAggregator interface {
	Run(ctx context.Context, params model.QueryParameters) (aggregator.Result, error)
}

type ArticleCache interface {
	Get(ctx context.Context, key string) ([]news.Article, bool, error)
	Set(ctx context.Context, key string, articles []news.Article) error
}

// articleLoader runs an aggregation under a request timeout, reading and
// filling the cache when one is configured. Results missing a failed source
// are served but never cached.
type articleLoader struct {
	aggregator ArticleAggregator
	cache      ArticleCache
	timeout    time.Duration
}

func (l *articleLoader) load(ctx context.Context, params model.QueryParameters) ([]news.Article, error) {
	key := params.CacheKey()

	if l.cache != nil {
		cached, ok, err := l.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("article cache read failed", "key", key, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	res, err := l.aggregator.Run(ctx, params)
	if err != nil {
		return nil, err
	}

	articles := res.Articles
	if articles == nil {
		articles = []news.Article{}
	}

	if res.Degraded() {
		slog.Info("partial result, skipping article cache", "key", key, "failed", res.Failed)
		return articles, nil
	}

	if l.cache != nil {
		if err := l.cache.Set(context.WithoutCancel(ctx), key, articles); err != nil {
			slog.Warn("article cache write failed", "key", key, "error", err)
		}
	}

	return articles, nil
}

type NewsHandler struct {
	loader *articleLoader
}

func NewNewsHandler(agg ArticleAggregator, cache ArticleCache, timeout time.Duration) *NewsHandler {
	return &NewsHandler{loader: &articleLoader{aggregator: agg, cache: cache, timeout: timeout}}
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	params := parseQueryParameters(c)

	articles, err := h.loader.load(c.Request.Context(), params)
	if err != nil {
		slog.Error("error aggregating articles", "error", err, "query", params.Query, "type", params.Type)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, NewsResponse{Articles: articles})
}

func (h *NewsHandler) GetAnalytics(c *gin.Context) {
	params := parseQueryParameters(c)

	articles, err := h.loader.load(c.Request.Context(), params)
	if err != nil {
		slog.Error("error aggregating articles", "error", err, "query", params.Query, "type", params.Type)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	summary := analytics.Summarize(articles)

	types := make(map[string]int, len(summary.Types))
	for t, n := range summary.Types {
		types[string(t)] = n
	}

	c.JSON(http.StatusOK, AnalyticsResponse{
		Authors: summary.Authors,
		Types:   types,
		Total:   summary.Total,
	})
}
