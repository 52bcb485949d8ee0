// Package payout prices aggregated articles by their source type.
package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsdash/internal/model"
	"newsdash/pkg/news"
)

var (
	ErrUnknownType    = errors.New("payout: rate type must be news or blog")
	ErrNegativeAmount = errors.New("payout: rate amount must not be negative")
)

// RateStore persists the per-type payout rates.
type RateStore interface {
	LoadRates(ctx context.Context) ([]model.PayoutRate, error)
	SaveRate(ctx context.Context, rate model.PayoutRate) error
	ResetRates(ctx context.Context) error
}

func ValidateRate(rate model.PayoutRate) error {
	if rate.Type != news.TypeNews && rate.Type != news.TypeBlog {
		return fmt.Errorf("%w: %q", ErrUnknownType, rate.Type)
	}
	if rate.Amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Calculate builds a report with one row per article. An article whose type
// has no rate pays nothing. Counts holds every rated type, zero included.
func Calculate(articles []news.Article, rates []model.PayoutRate, now time.Time) model.PayoutReport {
	byType := make(map[news.SourceType]float64, len(rates))
	for _, r := range rates {
		byType[r.Type] = r.Amount
	}

	report := model.PayoutReport{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Rows:        make([]model.PayoutRow, 0, len(articles)),
		Counts:      make(map[news.SourceType]int, len(rates)),
	}
	for _, r := range rates {
		report.Counts[r.Type] = 0
	}

	for _, a := range articles {
		author := news.UnknownAuthor
		if a.Author != nil && *a.Author != "" {
			author = *a.Author
		}

		amount := byType[a.Type]
		report.Rows = append(report.Rows, model.PayoutRow{
			Title:  a.Title,
			Author: author,
			Type:   a.Type,
			Date:   a.PublishedAt,
			Payout: amount,
		})
		report.Counts[a.Type]++
		report.Total += amount
	}

	return report
}
