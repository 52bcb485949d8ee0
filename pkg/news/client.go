package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type SourceType string

const (
	TypeNews SourceType = "news"
	TypeBlog SourceType = "blog"
)

const (
	UntitledTitle = "Untitled"
	UnknownAuthor = "Unknown"
)

// ISOLayout is UTC with millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z"

var ErrNoAPIKey = errors.New("news: api key is not configured")

// Article is the source-agnostic record every fetcher produces.
type Article struct {
	Title       string     `json:"title"`
	Author      *string    `json:"author"`
	PublishedAt string     `json:"publishedAt"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  *string    `json:"urlToImage"`
	Type        SourceType `json:"type"`
}

// PublishedTime parses PublishedAt. The second result is false when the
// value is empty or not a recognised timestamp.
func (a Article) PublishedTime() (time.Time, bool) {
	return ParseTimestamp(a.PublishedAt)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Searcher is a keyword-searchable, paginated news provider.
type Searcher interface {
	Search(ctx context.Context, query string, page, pageSize int) ([]Article, error)
	Name() string
}

// FeedSource is a tag-addressable syndication feed.
type FeedSource interface {
	Feed(ctx context.Context, tag string, limit int) ([]Article, error)
	Name() string
}

// StatusError reports a non-success HTTP response from a provider.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.Source, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsRateLimitedOrUnavailable reports whether err carries a 429 or 503 status.
func IsRateLimitedOrUnavailable(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}
	return false
}

func stringPtr(s string) *string {
	return &s
}

// RetryOnStatus returns a predicate matching StatusErrors with one of codes.
func RetryOnStatus(codes ...int) func(error) bool {
	return func(err error) bool {
		var se *StatusError
		if !errors.As(err, &se) {
			return false
		}
		for _, c := range codes {
			if se.StatusCode == c {
				return true
			}
		}
		return false
	}
}
