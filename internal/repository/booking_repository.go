package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
)

// Booking statuses and payment statuses this subsystem cares about. The
// booking lifecycle itself belongs to the booking subsystem; these values are
// consumed read-only as check-in preconditions.
const (
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"

	PaymentPaid = "paid"
)

// Booking is the external booking record, read-only here except for the
// fully-checked-in flag the check-in state machine maintains.
type Booking struct {
	ID             uint64
	FlightID       uint64
	RecordLocator  string
	Status         string
	PaymentStatus  string
	CabinClass     model.CabinClass
	FullyCheckedIn bool
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CheckInEligible reports whether the booking's status and payment status
// permit check-in.
func (b *Booking) CheckInEligible() bool {
	return (b.Status == BookingConfirmed || b.Status == BookingCompleted) &&
		b.PaymentStatus == PaymentPaid
}

// Passenger is the external passenger record. The seat-number column is a
// denormalized mirror of the authoritative inventory row, kept in sync by the
// assignment engine.
type Passenger struct {
	ID         uint64
	BookingID  uint64
	FullName   string
	SeatNumber *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BookingRepo reads bookings and passengers and maintains the two
// denormalized fields this subsystem owns.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// GetByID retrieves a booking. Soft-deleted bookings are treated as absent.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*Booking, error) {
	const q = `SELECT id, flight_id, record_locator, status, payment_status,
		cabin_class, fully_checked_in, deleted_at, created_at, updated_at
		FROM bookings WHERE id = ? AND deleted_at IS NULL`
	var b Booking
	var deleted sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.FlightID, &b.RecordLocator, &b.Status, &b.PaymentStatus,
		&b.CabinClass, &b.FullyCheckedIn, &deleted, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if deleted.Valid {
		t := deleted.Time
		b.DeletedAt = &t
	}
	return &b, nil
}

// GetPassenger retrieves one passenger by ID.
func (r *BookingRepo) GetPassenger(ctx context.Context, id uint64) (*Passenger, error) {
	const q = `SELECT id, booking_id, full_name, seat_number, created_at, updated_at
		FROM passengers WHERE id = ?`
	var p Passenger
	var seat sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.BookingID, &p.FullName, &seat, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPassengerNotFound
		}
		return nil, err
	}
	if seat.Valid {
		s := seat.String
		p.SeatNumber = &s
	}
	return &p, nil
}

// CountPassengers returns the number of passengers on a booking.
func (r *BookingRepo) CountPassengers(ctx context.Context, bookingID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM passengers WHERE booking_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountPassengersTx is CountPassengers inside the caller's transaction.
func (r *BookingRepo) CountPassengersTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM passengers WHERE booking_id = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, bookingID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ExpectedPassengersForFlight sums passenger counts over the flight's
// confirmed and completed bookings. Feeds the check-in statistics.
func (r *BookingRepo) ExpectedPassengersForFlight(ctx context.Context, flightID uint64) (int, error) {
	const q = `SELECT COUNT(p.id)
		FROM passengers p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.flight_id = ? AND b.deleted_at IS NULL
		  AND b.status IN (?, ?)`
	var n int
	if err := r.db.QueryRowContext(ctx, q, flightID, BookingConfirmed, BookingCompleted).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetPassengerSeatTx updates the passenger's denormalized seat-number mirror
// inside the caller's transaction; nil clears it.
func (r *BookingRepo) SetPassengerSeatTx(ctx context.Context, tx *sql.Tx, passengerID uint64, seatNumber *string) error {
	const q = `UPDATE passengers SET seat_number = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	var v sql.NullString
	if seatNumber != nil {
		v = sql.NullString{String: *seatNumber, Valid: true}
	}
	_, err := tx.ExecContext(ctx, q, v, passengerID)
	return err
}

// SetFullyCheckedInTx flips the booking's aggregate checked-in flag inside
// the caller's transaction.
func (r *BookingRepo) SetFullyCheckedInTx(ctx context.Context, tx *sql.Tx, bookingID uint64, done bool) error {
	const q = `UPDATE bookings SET fully_checked_in = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, done, bookingID)
	return err
}
