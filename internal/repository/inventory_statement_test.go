package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Statement-level checks over a mocked driver: the conditional updates must
// key on the booking/passenger pair, not just the seat, and must translate a
// zero-row match into ErrStatusConflict.

func TestReleaseTxKeysOnBookingPassengerPair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewInventoryRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_inventory").
		WithArgs(uint64(1), "3C", uint64(10), uint64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseTx(ctx, tx, 1, "3C", 10, 100))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseTxConflictWhenPairDoesNotMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewInventoryRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	// the pair in the WHERE clause matches nothing: zero rows affected
	mock.ExpectExec("UPDATE seat_inventory").
		WithArgs(uint64(1), "3C", uint64(11), uint64(101)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.ReleaseTx(ctx, tx, 1, "3C", 11, 101), ErrStatusConflict)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
