// Package aggregator merges the primary and secondary sources into one
// filtered, recency-ordered article list.
package aggregator

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdash/internal/model"
	"newsdash/pkg/news"
)

type Aggregator struct {
	primary   news.Searcher
	secondary news.FeedSource
}

func New(primary news.Searcher, secondary news.FeedSource) *Aggregator {
	return &Aggregator{primary: primary, secondary: secondary}
}

// Result is an aggregation outcome. Failed names the sources that errored
// and contributed no articles.
type Result struct {
	Articles []news.Article
	Failed   []string
}

// Degraded reports whether any selected source failed.
func (r Result) Degraded() bool {
	return len(r.Failed) > 0
}

// Aggregate is Run without the source failure report.
func (a *Aggregator) Aggregate(ctx context.Context, params model.QueryParameters) ([]news.Article, error) {
	res, err := a.Run(ctx, params)
	if err != nil {
		return nil, err
	}
	return res.Articles, nil
}

// Run fetches the sources selected by params.Type concurrently, then filters
// and sorts the combined result. A failing source contributes no articles and
// is listed in Result.Failed. The only error returned is ctx's, when it ends
// before both sources have answered; late results are discarded.
func (a *Aggregator) Run(ctx context.Context, params model.QueryParameters) (Result, error) {
	if !params.Type.Valid() {
		slog.Warn("unknown type selector, no source queried", "type", params.Type)
	}

	// Fetches are detached from ctx so a caller deadline never cancels a
	// source mid-flight; only the wait below observes it.
	fetchCtx := context.WithoutCancel(ctx)

	var newsArticles, blogArticles []news.Article
	newsOK, blogOK := true, true
	var wg sync.WaitGroup

	if params.Type.IncludesNews() && a.primary != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newsArticles, newsOK = a.fetchPrimary(fetchCtx, params)
		}()
	}

	if params.Type.IncludesBlog() && a.secondary != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			blogArticles, blogOK = a.fetchSecondary(fetchCtx, params)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-done:
	}

	all := make([]news.Article, 0, len(newsArticles)+len(blogArticles))
	all = append(all, newsArticles...)
	all = append(all, blogArticles...)

	all = FilterByAuthor(all, params.Author)
	all = FilterByDateRange(all, params.StartDate, params.EndDate)
	SortByRecency(all)

	res := Result{Articles: all}
	if !newsOK {
		res.Failed = append(res.Failed, a.primary.Name())
	}
	if !blogOK {
		res.Failed = append(res.Failed, a.secondary.Name())
	}

	return res, nil
}

func (a *Aggregator) fetchPrimary(ctx context.Context, params model.QueryParameters) ([]news.Article, bool) {
	articles, err := a.primary.Search(ctx, params.Query, params.Page, params.PageSize)
	if err != nil {
		slog.Warn("primary source failed, continuing without it", "source", a.primary.Name(), "error", err)
		return nil, false
	}
	return articles, true
}

func (a *Aggregator) fetchSecondary(ctx context.Context, params model.QueryParameters) ([]news.Article, bool) {
	articles, err := a.secondary.Feed(ctx, params.Query, params.PageSize)
	if err != nil {
		slog.Warn("secondary source failed, continuing without it", "source", a.secondary.Name(), "error", err)
		return nil, false
	}
	return articles, true
}

// FilterByAuthor keeps articles whose author contains author, ignoring case.
// An empty author keeps everything; a nil author never matches.
func FilterByAuthor(articles []news.Article, author string) []news.Article {
	if author == "" {
		return articles
	}

	needle := strings.ToLower(author)
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if a.Author != nil && strings.Contains(strings.ToLower(*a.Author), needle) {
			out = append(out, a)
		}
	}
	return out
}

// FilterByDateRange keeps articles published within [start, end]. Either
// bound may be nil. Articles with an unparsable timestamp are dropped when a
// bound is set.
func FilterByDateRange(articles []news.Article, start, end *time.Time) []news.Article {
	if start == nil && end == nil {
		return articles
	}

	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		published, ok := a.PublishedTime()
		if !ok {
			continue
		}
		if start != nil && published.Before(*start) {
			continue
		}
		if end != nil && published.After(*end) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SortByRecency orders articles newest first, in place. Equal timestamps keep
// their relative order; unparsable timestamps go last.
func SortByRecency(articles []news.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, okI := articles[i].PublishedTime()
		tj, okJ := articles[j].PublishedTime()
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
}
