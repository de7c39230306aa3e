package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Flight is the read-mostly flight record this subsystem consumes. The
// boarding_sequence column is the per-flight monotonic counter backing
// check-in sequence numbers; it only ever increases, so undoing a check-in
// never frees a sequence for reuse.
type Flight struct {
	ID            uint64
	FlightNumber  string
	Airline       string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FlightRepo reads flights and owns the boarding sequence counter.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo constructs a FlightRepo with the given DB handle.
func NewFlightRepo(db *sql.DB) *FlightRepo {
	return &FlightRepo{db: db}
}

// GetByID retrieves a flight, returning ErrFlightNotFound when absent.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*Flight, error) {
	const q = `SELECT id, flight_number, airline, origin, destination,
		departure_time, arrival_time, created_at, updated_at
		FROM flights WHERE id = ?`
	var f Flight
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination,
		&f.DepartureTime, &f.ArrivalTime, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}
	return &f, nil
}

// NextBoardingSequenceTx atomically bumps and returns the flight's boarding
// sequence counter inside the caller's transaction. The LAST_INSERT_ID trick
// makes increment-and-read a single statement, so two concurrent check-ins
// cannot observe the same value; the row lock it takes also serializes the
// rest of the check-in transaction against racing check-ins on the flight.
func (r *FlightRepo) NextBoardingSequenceTx(ctx context.Context, tx *sql.Tx, flightID uint64) (int, error) {
	const bump = `UPDATE flights
		SET boarding_sequence = LAST_INSERT_ID(boarding_sequence + 1)
		WHERE id = ?`
	res, err := tx.ExecContext(ctx, bump, flightID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrFlightNotFound
	}
	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT LAST_INSERT_ID()`).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}
