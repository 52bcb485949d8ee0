package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"newsdash/pkg/news"
)

var ErrNoRedisURL = errors.New("REDIS_URL is not set")

var Redis *redis.Client

const ArticleCachePrefix = "newsdash:articles:"

func ConnectRedis(redisURL string) error {
	if redisURL == "" {
		return ErrNoRedisURL
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	return Redis.Ping(context.Background()).Err()
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// ArticleCache stores aggregated article lists as JSON under a request key.
type ArticleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewArticleCache(client *redis.Client, ttl time.Duration) *ArticleCache {
	return &ArticleCache{client: client, ttl: ttl}
}

// Get reports a miss as (nil, false, nil).
func (c *ArticleCache) Get(ctx context.Context, key string) ([]news.Article, bool, error) {
	raw, err := c.client.Get(ctx, ArticleCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("article cache get: %w", err)
	}

	var articles []news.Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, false, fmt.Errorf("article cache decode: %w", err)
	}

	return articles, true, nil
}

func (c *ArticleCache) Set(ctx context.Context, key string, articles []news.Article) error {
	raw, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("article cache encode: %w", err)
	}

	return c.client.Set(ctx, ArticleCachePrefix+key, raw, c.ttl).Err()
}
