package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"newsdash/internal/model"
	"newsdash/internal/payout"
	"newsdash/pkg/news"
)

const createRateTable = `
	CREATE TABLE IF NOT EXISTS payout_rate (
		type       TEXT PRIMARY KEY,
		amount     NUMERIC(12, 2) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type RateRepository struct {
	db *sql.DB
}

func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createRateTable)
	return err
}

// LoadRates returns one rate per known type. Types without a stored row
// keep their default amount.
func (r *RateRepository) LoadRates(ctx context.Context) ([]model.PayoutRate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, amount
		FROM payout_rate
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := map[news.SourceType]float64{}
	for rows.Next() {
		var typ string
		var amount float64
		if err := rows.Scan(&typ, &amount); err != nil {
			return nil, err
		}
		stored[news.SourceType(typ)] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rates := model.DefaultPayoutRates()
	for i, rate := range rates {
		if amount, ok := stored[rate.Type]; ok {
			rates[i].Amount = amount
		}
	}

	return rates, nil
}

func (r *RateRepository) SaveRate(ctx context.Context, rate model.PayoutRate) error {
	if err := payout.ValidateRate(rate); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payout_rate(type, amount)
		VALUES($1, $2)
		ON CONFLICT (type) DO UPDATE SET amount = EXCLUDED.amount, updated_at = now()
	`, string(rate.Type), rate.Amount)
	return err
}

func (r *RateRepository) ResetRates(ctx context.Context) error {
	defaults := model.DefaultPayoutRates()
	types := make([]string, len(defaults))
	amounts := make([]float64, len(defaults))
	for i, d := range defaults {
		types[i] = string(d.Type)
		amounts[i] = d.Amount
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payout_rate`); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payout_rate(type, amount)
		SELECT unnest($1::text[]), unnest($2::numeric[])
	`, pq.Array(types), pq.Array(amounts))
	if err != nil {
		return err
	}

	return tx.Commit()
}
