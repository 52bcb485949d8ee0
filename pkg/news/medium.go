package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"newsdash/pkg/retry"
)

const (
	DefaultFeedBaseURL = "https://medium.com/feed/tag/"
	feedUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// DefaultFeedRetry retries rate-limited and unavailable responses twice,
// one second apart.
var DefaultFeedRetry = retry.Policy{
	MaxAttempts: 3,
	Delay:       time.Second,
	Retryable:   IsRateLimitedOrUnavailable,
}

// MediumClient reads tag feeds (medium.com/feed/tag/<tag> by default).
type MediumClient struct {
	baseURL    string
	httpClient *http.Client
	parser     *gofeed.Parser
	policy     retry.Policy
	now        func() time.Time
}

func NewMediumClient(baseURL string, policy retry.Policy) *MediumClient {
	if baseURL == "" {
		baseURL = DefaultFeedBaseURL
	}
	return &MediumClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		parser:     gofeed.NewParser(),
		policy:     policy,
		now:        time.Now,
	}
}

func (c *MediumClient) Name() string {
	return "Medium"
}

func (c *MediumClient) Feed(ctx context.Context, tag string, limit int) ([]Article, error) {
	feedURL := c.baseURL + url.PathEscape(tag)

	feed, err := retry.Do(ctx, c.policy, func(ctx context.Context) (*gofeed.Feed, error) {
		return c.fetch(ctx, feedURL)
	})
	if err != nil {
		return nil, err
	}

	items := feed.Items
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}

	fetchedAt := c.now().UTC().Format(ISOLayout)

	articles := make([]Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, feedArticle(item, fetchedAt))
	}

	return articles, nil
}

func (c *MediumClient) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Source: c.Name(), StatusCode: resp.StatusCode}
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed parse: %w", err)
	}

	return feed, nil
}

func feedArticle(item *gofeed.Item, fetchedAt string) Article {
	a := Article{
		Title:       strings.TrimSpace(item.Title),
		Author:      stringPtr(feedCreator(item)),
		PublishedAt: fetchedAt,
		Description: contentSnippet(item),
		URL:         strings.TrimSpace(item.Link),
		Type:        TypeBlog,
	}

	if a.Title == "" {
		a.Title = UntitledTitle
	}

	if item.PublishedParsed != nil {
		a.PublishedAt = item.PublishedParsed.UTC().Format(ISOLayout)
	} else if item.UpdatedParsed != nil {
		a.PublishedAt = item.UpdatedParsed.UTC().Format(ISOLayout)
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			a.URLToImage = stringPtr(enc.URL)
			break
		}
	}

	return a
}

func feedCreator(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, c := range item.DublinCoreExt.Creator {
			if strings.TrimSpace(c) != "" {
				return strings.TrimSpace(c)
			}
		}
	}
	return UnknownAuthor
}

func contentSnippet(item *gofeed.Item) string {
	src := item.Content
	if strings.TrimSpace(src) == "" {
		src = item.Description
	}
	return stripHTML(src)
}

// stripHTML returns the visible text of an HTML fragment with whitespace
// collapsed to single spaces.
func stripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var sb strings.Builder
	collectText(doc, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(node *html.Node, sb *strings.Builder) {
	block := false

	switch node.Type {
	case html.TextNode:
		sb.WriteString(node.Data)
		return
	case html.ElementNode:
		switch node.Data {
		case "script", "style", "noscript":
			return
		case "p", "div", "br", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "figure", "figcaption", "tr", "td":
			block = true
		}
	}

	if block {
		sb.WriteString(" ")
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if block {
		sb.WriteString(" ")
	}
}
