package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"hotelbot/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepositoryFromDB(sqlx.NewDb(db, "postgres")), mock
}

func TestLogSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	entry := &model.SearchLog{
		SearchID:       "6f1c8a52-3d0e-4b7a-9a53-0c2f6f1e2b10",
		Message:        "cheapest hotel near 10001",
		Slots:          model.JSONMap{"radius": "5 mi"},
		ResultCount:    3,
		CheapestTotal:  decimal.NullDecimal{Decimal: decimal.RequireFromString("120.00"), Valid: true},
		Currency:       "USD",
		UsedFallback:   true,
		ResponseTimeMs: 840,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO search_logs")).
		WithArgs(entry.SearchID, entry.Message, sqlmock.AnyArg(), 3, "120", "USD", true, "", int64(840)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.LogSearch(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogSearch_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO search_logs")).
		WillReturnError(errors.New("connection lost"))

	err := repo.LogSearch(context.Background(), &model.SearchLog{SearchID: "x", ErrorKind: "SEARCH"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to log search")
}

func TestLogFeedback(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE search_logs")).
		WithArgs("search-1", "HOTEL42", "click").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LogFeedback(context.Background(), "search-1", "HOTEL42", "click"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogFeedback_UnknownSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE search_logs")).
		WithArgs("missing", "HOTEL42", "book").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LogFeedback(context.Background(), "missing", "HOTEL42", "book")
	assert.ErrorIs(t, err, ErrSearchNotFound)
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepositoryFromDB(sqlx.NewDb(db, "postgres"))

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationSource(t *testing.T) {
	src, err := migrationSource()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	up, identifier, err := src.ReadUp(version)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "create_search_logs", identifier)
}
