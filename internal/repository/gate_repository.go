package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GateAssignment is supplied by the gate/route subsystem and consumed
// read-only for boarding-pass generation.
type GateAssignment struct {
	FlightID         uint64
	Gate             string
	BoardingStartsAt time.Time
}

// GateRepo reads gate assignments.
type GateRepo struct {
	db *sql.DB
}

// NewGateRepo constructs a GateRepo with the given DB handle.
func NewGateRepo(db *sql.DB) *GateRepo {
	return &GateRepo{db: db}
}

// GetByFlight returns the current gate assignment for a flight, or
// ErrGateNotAssigned. Callers issuing boarding passes treat absence as
// non-fatal.
func (r *GateRepo) GetByFlight(ctx context.Context, flightID uint64) (*GateAssignment, error) {
	const q = `SELECT flight_id, gate, boarding_starts_at
		FROM gate_assignments WHERE flight_id = ?
		ORDER BY boarding_starts_at DESC LIMIT 1`
	var g GateAssignment
	err := r.db.QueryRowContext(ctx, q, flightID).Scan(&g.FlightID, &g.Gate, &g.BoardingStartsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGateNotAssigned
		}
		return nil, err
	}
	return &g, nil
}
