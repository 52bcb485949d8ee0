package model

import (
	"fmt"
	"strings"
	"time"

	"newsdash/pkg/news"
)

const (
	DefaultQuery    = "news"
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TypeSelector picks which sources an aggregation request reads from.
type TypeSelector string

const (
	SelectAll  TypeSelector = "all"
	SelectNews TypeSelector = "news"
	SelectBlog TypeSelector = "blog"
)

func (s TypeSelector) IncludesNews() bool {
	return s == SelectAll || s == SelectNews
}

func (s TypeSelector) IncludesBlog() bool {
	return s == SelectAll || s == SelectBlog
}

func (s TypeSelector) Valid() bool {
	return s == SelectAll || s == SelectNews || s == SelectBlog
}

type QueryParameters struct {
	Query     string
	Page      int
	PageSize  int
	Type      TypeSelector
	Author    string
	StartDate *time.Time
	EndDate   *time.Time
}

func DefaultQueryParameters() QueryParameters {
	return QueryParameters{
		Query:    DefaultQuery,
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Type:     SelectAll,
	}
}

type PayoutRate struct {
	Type   news.SourceType
	Amount float64
}

func DefaultPayoutRates() []PayoutRate {
	return []PayoutRate{
		{Type: news.TypeNews, Amount: 50},
		{Type: news.TypeBlog, Amount: 75},
	}
}

type PayoutRow struct {
	Title  string
	Author string
	Type   news.SourceType
	Date   string
	Payout float64
}

type PayoutReport struct {
	ID          string
	GeneratedAt time.Time
	Rows        []PayoutRow
	Counts      map[news.SourceType]int
	Total       float64
}

// CacheKey identifies a request for response caching. Requests with equal
// parameters produce equal keys.
func (p QueryParameters) CacheKey() string {
	key := fmt.Sprintf("%s|%d|%d|%s|%s", strings.ToLower(p.Query), p.Page, p.PageSize, p.Type, strings.ToLower(p.Author))
	if p.StartDate != nil {
		key += "|from=" + p.StartDate.UTC().Format(time.RFC3339Nano)
	}
	if p.EndDate != nil {
		key += "|to=" + p.EndDate.UTC().Format(time.RFC3339Nano)
	}
	return key
}
