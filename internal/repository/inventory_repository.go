package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
)

// SeatInventoryItem is one physical seat on one flight. It is the record the
// assignment engine and check-in state machine mutate; the status column is
// the sole arbiter of who holds the seat. Every state-changing statement in
// this repository is a conditional update keyed on the current status, so a
// lost race reports ErrStatusConflict instead of overwriting.
type SeatInventoryItem struct {
	ID                 uint64
	FlightID           uint64
	TemplateID         uint64
	SeatNumber         string // row + column, e.g. "12C"
	RowNumber          int
	ColumnLetter       string
	CabinClass         model.CabinClass
	Position           string
	ExtraLegroom       bool
	ExitRow            bool
	NearLavatory       bool
	NearGalley         bool
	PriceTier          string
	PriceCents         uint32
	Status             model.SeatStatus
	BookingID          *uint64
	PassengerID        *uint64
	AssignedAt         *time.Time
	CheckedInAt        *time.Time
	BoardingGroup      *string
	BoardingSequence   *int
	BoardingPassIssued bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// insertBatchSize bounds the number of rows per INSERT statement so
// materializing a large cabin stays under the storage write-size limit.
const insertBatchSize = 500

// InventoryRepo manages persistence for seat inventory rows.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo constructs an InventoryRepo with the given DB handle.
func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// DB exposes the underlying handle for handler-managed transactions.
func (r *InventoryRepo) DB() *sql.DB { return r.db }

const inventoryColumns = `id, flight_id, template_id, seat_number, row_num, column_letter,
	cabin_class, position, extra_legroom, exit_row, near_lavatory, near_galley,
	price_tier, price_cents, status, booking_id, passenger_id,
	assigned_at, checked_in_at, boarding_group, boarding_sequence, boarding_pass_issued,
	created_at, updated_at`

// ExistsForFlight reports whether any inventory row exists for the flight.
// Used as the idempotency guard before materialization.
func (r *InventoryRepo) ExistsForFlight(ctx context.Context, flightID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM seat_inventory WHERE flight_id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, flightID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateBulk inserts inventory rows in bounded batches. Only the definition
// fields are written; timestamps default in the DB and assignment fields
// start NULL.
func (r *InventoryRepo) CreateBulk(ctx context.Context, items []SeatInventoryItem) error {
	for start := 0; start < len(items); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(items) {
			end = len(items)
		}
		if err := r.insertBatch(ctx, items[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *InventoryRepo) insertBatch(ctx context.Context, items []SeatInventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	q := `INSERT INTO seat_inventory
		(flight_id, template_id, seat_number, row_num, column_letter,
		 cabin_class, position, extra_legroom, exit_row, near_lavatory, near_galley,
		 price_tier, price_cents, status) VALUES `
	args := make([]interface{}, 0, len(items)*14)
	for i, it := range items {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			it.FlightID, it.TemplateID, it.SeatNumber, it.RowNumber, it.ColumnLetter,
			it.CabinClass, it.Position, it.ExtraLegroom, it.ExitRow, it.NearLavatory, it.NearGalley,
			it.PriceTier, it.PriceCents, it.Status,
		)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// GetByFlight returns every inventory row of a flight ordered by row then
// column. The seat map reader and statistics aggregation consume this.
func (r *InventoryRepo) GetByFlight(ctx context.Context, flightID uint64) ([]SeatInventoryItem, error) {
	const q = `SELECT ` + inventoryColumns + ` FROM seat_inventory
		WHERE flight_id = ?
		ORDER BY row_num, column_letter`
	return r.queryItems(ctx, q, flightID)
}

// GetBySeat returns one seat of a flight by its seat number.
func (r *InventoryRepo) GetBySeat(ctx context.Context, flightID uint64, seatNumber string) (*SeatInventoryItem, error) {
	const q = `SELECT ` + inventoryColumns + ` FROM seat_inventory
		WHERE flight_id = ? AND seat_number = ?`
	row := r.db.QueryRowContext(ctx, q, flightID, seatNumber)
	it, err := scanInventory(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return it, nil
}

// GetByPassenger returns the seat currently held by the passenger on the
// flight (occupied, held or checked_in), or ErrSeatNotFound.
func (r *InventoryRepo) GetByPassenger(ctx context.Context, flightID, passengerID uint64) (*SeatInventoryItem, error) {
	const q = `SELECT ` + inventoryColumns + ` FROM seat_inventory
		WHERE flight_id = ? AND passenger_id = ?
		  AND status IN ('occupied', 'held', 'checked_in')`
	row := r.db.QueryRowContext(ctx, q, flightID, passengerID)
	it, err := scanInventory(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return it, nil
}

// AvailableByCabinClass returns available seats of a cabin class ordered by
// row then column, the input of the auto-assignment scorer.
func (r *InventoryRepo) AvailableByCabinClass(ctx context.Context, flightID uint64, cabin model.CabinClass) ([]SeatInventoryItem, error) {
	const q = `SELECT ` + inventoryColumns + ` FROM seat_inventory
		WHERE flight_id = ? AND cabin_class = ? AND status = 'available'
		ORDER BY row_num, column_letter`
	return r.queryItems(ctx, q, flightID, cabin)
}

// AssignTx occupies an available seat for a booking/passenger pair inside the
// caller's transaction. The WHERE clause is the atomic precondition: if the
// seat is no longer available the update matches nothing and
// ErrStatusConflict is returned.
func (r *InventoryRepo) AssignTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string, bookingID, passengerID uint64) error {
	const q = `UPDATE seat_inventory
		SET status = 'occupied', booking_id = ?, passenger_id = ?,
		    assigned_at = UTC_TIMESTAMP(), updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status = 'available'`
	res, err := tx.ExecContext(ctx, q, bookingID, passengerID, flightID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// ReleaseTx returns an occupied or held seat to available, clearing every
// assignment and boarding field. The booking/passenger pair is part of the
// precondition, so a seat re-assigned to someone else between the caller's
// read and this statement is not wiped. Checked-in seats do not match;
// check-in must be undone first.
func (r *InventoryRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string, bookingID, passengerID uint64) error {
	const q = `UPDATE seat_inventory
		SET status = 'available', booking_id = NULL, passenger_id = NULL,
		    assigned_at = NULL, checked_in_at = NULL,
		    boarding_group = NULL, boarding_sequence = NULL, boarding_pass_issued = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status IN ('occupied', 'held')
		  AND booking_id = ? AND passenger_id = ?`
	res, err := tx.ExecContext(ctx, q, flightID, seatNumber, bookingID, passengerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// CheckInOccupiedTx transitions a seat the passenger already occupies to
// checked_in, stamping the boarding group and sequence. The passenger and
// booking references are part of the precondition so a racing reassignment
// cannot be checked in by mistake.
func (r *InventoryRepo) CheckInOccupiedTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string, bookingID, passengerID uint64, group string, sequence int) error {
	const q = `UPDATE seat_inventory
		SET status = 'checked_in', checked_in_at = UTC_TIMESTAMP(),
		    boarding_group = ?, boarding_sequence = ?, boarding_pass_issued = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status = 'occupied'
		  AND booking_id = ? AND passenger_id = ?`
	res, err := tx.ExecContext(ctx, q, group, sequence, flightID, seatNumber, bookingID, passengerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// CheckInAvailableTx claims an available seat and checks it in within one
// statement. Used when check-in resolves a fresh seat (explicit or
// auto-assigned) and by change-seat when the old seat was already checked in,
// in which case the caller passes the inherited sequence and a recomputed
// group; the boarding-pass-issued flag always resets so the pass is
// re-issued.
func (r *InventoryRepo) CheckInAvailableTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string, bookingID, passengerID uint64, group string, sequence int) error {
	const q = `UPDATE seat_inventory
		SET status = 'checked_in', booking_id = ?, passenger_id = ?,
		    assigned_at = UTC_TIMESTAMP(), checked_in_at = UTC_TIMESTAMP(),
		    boarding_group = ?, boarding_sequence = ?, boarding_pass_issued = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status = 'available'`
	res, err := tx.ExecContext(ctx, q, bookingID, passengerID, group, sequence, flightID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// UndoCheckInTx reverts a checked-in seat of this exact booking/passenger
// pair to occupied, clearing check-in and boarding fields. The sequence
// number is not returned to any pool; sequences are never reused.
func (r *InventoryRepo) UndoCheckInTx(ctx context.Context, tx *sql.Tx, flightID uint64, seatNumber string, bookingID, passengerID uint64) error {
	const q = `UPDATE seat_inventory
		SET status = 'occupied', checked_in_at = NULL,
		    boarding_group = NULL, boarding_sequence = NULL, boarding_pass_issued = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status = 'checked_in'
		  AND booking_id = ? AND passenger_id = ?`
	res, err := tx.ExecContext(ctx, q, flightID, seatNumber, bookingID, passengerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Block withholds an available seat from assignment. Occupied and checked-in
// seats do not match the precondition and must be released first.
func (r *InventoryRepo) Block(ctx context.Context, flightID uint64, seatNumber string) error {
	const q = `UPDATE seat_inventory
		SET status = 'blocked', updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status = 'available'`
	res, err := r.db.ExecContext(ctx, q, flightID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Unblock returns a blocked or restricted seat to available.
func (r *InventoryRepo) Unblock(ctx context.Context, flightID uint64, seatNumber string) error {
	const q = `UPDATE seat_inventory
		SET status = 'available', updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status IN ('blocked', 'restricted')`
	res, err := r.db.ExecContext(ctx, q, flightID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// MarkBoardingPassIssued flips the issued flag on a checked-in seat. Issuing
// a pass for a seat that is no longer checked in is a conflict.
func (r *InventoryRepo) MarkBoardingPassIssued(ctx context.Context, flightID uint64, seatNumber string) error {
	const q = `UPDATE seat_inventory
		SET boarding_pass_issued = 1, updated_at = CURRENT_TIMESTAMP
		WHERE flight_id = ? AND seat_number = ? AND status = 'checked_in'`
	res, err := r.db.ExecContext(ctx, q, flightID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStatusConflict
	}
	return nil
}

// CountCheckedInForBookingTx counts the booking's passengers holding a
// checked-in seat on the flight. Used to decide the booking's fully
// checked-in flag.
func (r *InventoryRepo) CountCheckedInForBookingTx(ctx context.Context, tx *sql.Tx, flightID, bookingID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM seat_inventory
		WHERE flight_id = ? AND booking_id = ? AND status = 'checked_in'`
	var n int
	if err := tx.QueryRowContext(ctx, q, flightID, bookingID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *InventoryRepo) queryItems(ctx context.Context, q string, args ...interface{}) ([]SeatInventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeatInventoryItem
	for rows.Next() {
		it, err := scanInventory(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanInventory decodes one inventory row, converting nullable columns into
// pointers.
func scanInventory(scan func(dest ...interface{}) error) (*SeatInventoryItem, error) {
	var it SeatInventoryItem
	var bookingID, passengerID sql.NullInt64
	var assignedAt, checkedInAt sql.NullTime
	var group sql.NullString
	var sequence sql.NullInt64
	if err := scan(
		&it.ID, &it.FlightID, &it.TemplateID, &it.SeatNumber, &it.RowNumber, &it.ColumnLetter,
		&it.CabinClass, &it.Position, &it.ExtraLegroom, &it.ExitRow, &it.NearLavatory, &it.NearGalley,
		&it.PriceTier, &it.PriceCents, &it.Status, &bookingID, &passengerID,
		&assignedAt, &checkedInAt, &group, &sequence, &it.BoardingPassIssued,
		&it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if bookingID.Valid {
		v := uint64(bookingID.Int64)
		it.BookingID = &v
	}
	if passengerID.Valid {
		v := uint64(passengerID.Int64)
		it.PassengerID = &v
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		it.AssignedAt = &t
	}
	if checkedInAt.Valid {
		t := checkedInAt.Time
		it.CheckedInAt = &t
	}
	if group.Valid {
		g := group.String
		it.BoardingGroup = &g
	}
	if sequence.Valid {
		s := int(sequence.Int64)
		it.BoardingSequence = &s
	}
	return &it, nil
}
