package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"

	"newsdash/internal/model"
	"newsdash/internal/payout"
	"newsdash/pkg/news"
)

func newMockRepo(t *testing.T) (*RateRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error creating sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewRateRepository(db), mock
}

var selectRates = regexp.QuoteMeta(`SELECT type, amount`)

func TestLoadRates_EmptyTableReturnsDefaults(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(selectRates).
		WillReturnRows(sqlmock.NewRows([]string{"type", "amount"}))

	rates, err := repo.LoadRates(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, model.DefaultPayoutRates(), rates)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestLoadRates_PartialTableKeepsOtherDefaults(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(selectRates).
		WillReturnRows(sqlmock.NewRows([]string{"type", "amount"}).AddRow("news", 60.0))

	rates, err := repo.LoadRates(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, []model.PayoutRate{
		{Type: news.TypeNews, Amount: 60},
		{Type: news.TypeBlog, Amount: 75},
	}, rates)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestLoadRates_FullTable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(selectRates).
		WillReturnRows(sqlmock.NewRows([]string{"type", "amount"}).
			AddRow("blog", 10.5).
			AddRow("news", 0.0))

	rates, err := repo.LoadRates(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, []model.PayoutRate{
		{Type: news.TypeNews, Amount: 0},
		{Type: news.TypeBlog, Amount: 10.5},
	}, rates)
}

func TestLoadRates_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(selectRates).WillReturnError(errors.New("connection reset"))

	_, err := repo.LoadRates(context.Background())

	assert.NotEqual(t, nil, err)
}

func TestSaveRate_Upserts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payout_rate(type, amount)`)).
		WithArgs("news", 60.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveRate(context.Background(), model.PayoutRate{Type: news.TypeNews, Amount: 60})

	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestSaveRate_InvalidRateSkipsDatabase(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.SaveRate(context.Background(), model.PayoutRate{Type: news.TypeBlog, Amount: -1})

	assert.Equal(t, true, errors.Is(err, payout.ErrNegativeAmount))
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestResetRates_ReplacesRowsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payout_rate`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payout_rate(type, amount)`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.ResetRates(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestResetRates_RollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payout_rate`)).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := repo.ResetRates(context.Background())

	assert.NotEqual(t, nil, err)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}
