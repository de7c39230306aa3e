package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/ais-aviation-system-sub010/internal/database"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
)

// These are integration tests for the conditional-update guarantees; they
// need a MySQL instance with the subsystem schema loaded. Run them manually
// against a scratch database.

func TestAssignConflictOnOccupiedSeat(t *testing.T) {
	t.Skip("integration test - requires database")

	db, err := database.Open("root", "", "localhost", "3306", "ais_test")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewInventoryRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.AssignTx(ctx, tx, 1, "1A", 10, 100))
	require.NoError(t, tx.Commit())

	// second passenger racing for the same seat must observe a conflict
	tx2, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = repo.AssignTx(ctx, tx2, 1, "1A", 11, 101)
	assert.ErrorIs(t, err, ErrStatusConflict)
	require.NoError(t, tx2.Rollback())

	// and the seat still belongs to the first passenger
	seat, err := repo.GetBySeat(ctx, 1, "1A")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, seat.Status)
	require.NotNil(t, seat.PassengerID)
	assert.Equal(t, uint64(100), *seat.PassengerID)
}

func TestReleaseRefusesCheckedInSeat(t *testing.T) {
	t.Skip("integration test - requires database")

	db, err := database.Open("root", "", "localhost", "3306", "ais_test")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewInventoryRepo(db)
	flights := NewFlightRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.AssignTx(ctx, tx, 1, "2B", 10, 100))
	seq, err := flights.NextBoardingSequenceTx(ctx, tx, 1)
	require.NoError(t, err)
	require.NoError(t, repo.CheckInOccupiedTx(ctx, tx, 1, "2B", 10, 100, "4", seq))
	require.NoError(t, tx.Commit())

	tx2, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.ReleaseTx(ctx, tx2, 1, "2B", 10, 100), ErrStatusConflict)
	require.NoError(t, tx2.Rollback())

	// undo first, then release succeeds
	tx3, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.UndoCheckInTx(ctx, tx3, 1, "2B", 10, 100))
	require.NoError(t, repo.ReleaseTx(ctx, tx3, 1, "2B", 10, 100))
	require.NoError(t, tx3.Commit())
}

func TestReleaseRequiresMatchingPassenger(t *testing.T) {
	t.Skip("integration test - requires database")

	db, err := database.Open("root", "", "localhost", "3306", "ais_test")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo := NewInventoryRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.AssignTx(ctx, tx, 1, "3C", 10, 100))
	require.NoError(t, tx.Commit())

	// a release keyed on a stale booking/passenger pair must not wipe the
	// seat out from under its current holder
	tx2, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.ReleaseTx(ctx, tx2, 1, "3C", 11, 101), ErrStatusConflict)
	require.NoError(t, tx2.Rollback())

	seat, err := repo.GetBySeat(ctx, 1, "3C")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, seat.Status)
	require.NotNil(t, seat.PassengerID)
	assert.Equal(t, uint64(100), *seat.PassengerID)
}

func TestBoardingSequenceMonotonicAcrossUndo(t *testing.T) {
	t.Skip("integration test - requires database")

	db, err := database.Open("root", "", "localhost", "3306", "ais_test")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	flights := NewFlightRepo(db)

	next := func() int {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		seq, err := flights.NextBoardingSequenceTx(ctx, tx, 1)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		return seq
	}

	first := next()
	second := next()
	assert.Equal(t, first+1, second)

	// undoing a check-in clears the seat's sequence but never rewinds the
	// counter, so the next sequence keeps climbing
	third := next()
	assert.Equal(t, second+1, third)
}
