package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// FinnHubClient serves as a primary source backed by Finnhub market news.
// Finnhub has no keyword search, so the query and pagination are applied
// locally to the latest general-category headlines.
type FinnHubClient struct {
	client   *finnhub.DefaultApiService
	category string
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client, category: "general"}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

func (c *FinnHubClient) Search(ctx context.Context, query string, page, pageSize int) ([]Article, error) {
	res, _, err := c.client.MarketNews(ctx).Category(c.category).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub market news: %w", err)
	}

	return finnhubArticles(res, query, page, pageSize), nil
}

func finnhubArticles(res []finnhub.MarketNews, query string, page, pageSize int) []Article {
	needle := strings.ToLower(strings.TrimSpace(query))

	var matched []Article
	for _, news := range res {
		a := Article{
			Title: UntitledTitle,
			Type:  TypeNews,
		}

		if news.Headline != nil && *news.Headline != "" {
			a.Title = *news.Headline
		}

		if news.Summary != nil {
			a.Description = *news.Summary
		}

		if news.Url != nil {
			a.URL = *news.Url
		}

		if news.Image != nil && *news.Image != "" {
			a.URLToImage = stringPtr(*news.Image)
		}

		if news.Datetime != nil {
			a.PublishedAt = time.Unix(*news.Datetime, 0).UTC().Format(ISOLayout)
		} else {
			a.PublishedAt = time.Now().UTC().Format(ISOLayout)
		}

		if needle != "" && !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			continue
		}

		matched = append(matched, a)
	}

	start := (page - 1) * pageSize
	if page < 1 || pageSize < 1 || start >= len(matched) {
		return []Article{}
	}

	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end]
}
