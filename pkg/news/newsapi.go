package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const newsAPIEverythingURL = "https://newsapi.org/v2/everything"

type NewsAPIClient struct {
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

func (c *NewsAPIClient) Name() string {
	return "NewsAPI"
}

func (c *NewsAPIClient) Search(ctx context.Context, query string, page, pageSize int) ([]Article, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIEverythingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Source: c.Name(), StatusCode: resp.StatusCode}
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}

	fetchedAt := c.now().UTC().Format(ISOLayout)

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		a := Article{
			Title:       item.Title,
			Author:      item.Author,
			PublishedAt: item.PublishedAt,
			URLToImage:  item.URLToImage,
			Type:        TypeNews,
		}

		if a.Title == "" {
			a.Title = UntitledTitle
		}

		if a.PublishedAt == "" {
			a.PublishedAt = fetchedAt
		}

		if item.Description != nil {
			a.Description = *item.Description
		}

		if item.URL != nil {
			a.URL = *item.URL
		}

		if a.URLToImage != nil && *a.URLToImage == "" {
			a.URLToImage = nil
		}

		articles = append(articles, a)
	}

	return articles, nil
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Author      *string       `json:"author"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	URL         *string       `json:"url"`
	URLToImage  *string       `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}
