package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)
	at := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO coin_history").
		WithArgs(int64(42), int64(7), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, 42, 7, at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_ListByCoin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)
	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	second := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM coin_history h").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"history_id", "coin_id", "client_id", "name", "recorded_at"}).
			AddRow(int64(1), int64(42), int64(3), "Seller Sam", first).
			AddRow(int64(2), int64(42), int64(7), "Buyer Bob", second))

	entries, err := repo.ListByCoin(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Seller Sam", entries[0].ClientName)
	assert.Equal(t, "Buyer Bob", entries[1].ClientName)
	assert.True(t, entries[0].RecordedAt.Before(entries[1].RecordedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepo_ListByCoin_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewHistoryRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM coin_history h").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"history_id", "coin_id", "client_id", "name", "recorded_at"}))

	entries, err := repo.ListByCoin(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
