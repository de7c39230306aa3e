package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/ais-aviation-system-sub010/internal/api"
	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/pkg/metrics"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// newAssignmentHarness wires an AssignmentHandler over a mocked driver. The
// cache gets a nil redis client so it misses silently, and metrics register
// into a throwaway registry.
func newAssignmentHarness(t *testing.T) (*AssignmentHandler, sqlmock.Sqlmock, *echo.Echo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	e.Validator = api.NewValidator()
	h := NewAssignmentHandler(
		repository.NewInventoryRepo(db),
		repository.NewBookingRepo(db),
		repository.NewFlightRepo(db),
		cache.NewSeatMapCache(nil, time.Minute),
		metrics.NewWithRegistry(prometheus.NewRegistry()),
	)
	return h, mock, e
}

func assignmentContext(e *echo.Echo, flightID, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(flightID)
	return c, rec
}

var inventoryTestColumns = []string{
	"id", "flight_id", "template_id", "seat_number", "row_num", "column_letter",
	"cabin_class", "position", "extra_legroom", "exit_row", "near_lavatory", "near_galley",
	"price_tier", "price_cents", "status", "booking_id", "passenger_id",
	"assigned_at", "checked_in_at", "boarding_group", "boarding_sequence", "boarding_pass_issued",
	"created_at", "updated_at",
}

func expectFlightRow(mock sqlmock.Sqlmock, flightID uint64) {
	now := time.Now()
	mock.ExpectQuery("FROM flights").WithArgs(flightID).WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "flight_number", "airline", "origin", "destination",
			"departure_time", "arrival_time", "created_at", "updated_at",
		}).AddRow(flightID, "KF204", "KF", "DXB", "IKA", now, now.Add(2*time.Hour), now, now))
}

func expectBookingRow(mock sqlmock.Sqlmock, bookingID, flightID uint64, status string) {
	now := time.Now()
	mock.ExpectQuery("FROM bookings").WithArgs(bookingID).WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "flight_id", "record_locator", "status", "payment_status",
			"cabin_class", "fully_checked_in", "deleted_at", "created_at", "updated_at",
		}).AddRow(bookingID, flightID, "ABC123", status, "paid", "economy", false, nil, now, now))
}

func expectPassengerRow(mock sqlmock.Sqlmock, passengerID, bookingID uint64, seat string) {
	now := time.Now()
	mock.ExpectQuery("FROM passengers").WithArgs(passengerID).WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "booking_id", "full_name", "seat_number", "created_at", "updated_at",
		}).AddRow(passengerID, bookingID, "Avery Tan", seat, now, now))
}

func occupiedSeatRow(flightID uint64, seatNumber string, bookingID, passengerID uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(inventoryTestColumns).AddRow(
		55, flightID, 3, seatNumber, 12, "A",
		"economy", "window", false, false, false, false,
		"standard", 0, "occupied", bookingID, passengerID,
		now, nil, nil, nil, false,
		now, now)
}

// A cancelled booking must be rejected before any seat is touched, on every
// assignment operation, not only at check-in.
func TestSelectRejectsCancelledBooking(t *testing.T) {
	h, mock, e := newAssignmentHarness(t)

	expectFlightRow(mock, 1)
	expectBookingRow(mock, 10, 1, repository.BookingCancelled)

	c, rec := assignmentContext(e, "1", `{"booking_id":10,"passenger_id":100,"seat_number":"12A"}`)
	require.NoError(t, h.Select(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRejectsCancelledBooking(t *testing.T) {
	h, mock, e := newAssignmentHarness(t)

	expectFlightRow(mock, 1)
	expectBookingRow(mock, 10, 1, repository.BookingCancelled)

	c, rec := assignmentContext(e, "1", `{"booking_id":10,"passenger_id":100,"seat_number":"12A"}`)
	require.NoError(t, h.Change(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A change to the seat the passenger already holds must fail; only select
// treats the current seat as an idempotent no-op.
func TestChangeToCurrentSeatRejected(t *testing.T) {
	h, mock, e := newAssignmentHarness(t)

	expectFlightRow(mock, 1)
	expectBookingRow(mock, 10, 1, repository.BookingConfirmed)
	expectPassengerRow(mock, 100, 10, "12A")
	mock.ExpectQuery(`seat_number = \?`).WithArgs(uint64(1), "12A").
		WillReturnRows(occupiedSeatRow(1, "12A", 10, 100))
	mock.ExpectQuery(`passenger_id = \?`).WithArgs(uint64(1), uint64(100)).
		WillReturnRows(occupiedSeatRow(1, "12A", 10, 100))

	c, rec := assignmentContext(e, "1", `{"booking_id":10,"passenger_id":100,"seat_number":"12A"}`)
	require.NoError(t, h.Change(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must differ")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectCurrentSeatIsNoOp(t *testing.T) {
	h, mock, e := newAssignmentHarness(t)

	expectFlightRow(mock, 1)
	expectBookingRow(mock, 10, 1, repository.BookingConfirmed)
	expectPassengerRow(mock, 100, 10, "12A")
	mock.ExpectQuery(`seat_number = \?`).WithArgs(uint64(1), "12A").
		WillReturnRows(occupiedSeatRow(1, "12A", 10, 100))
	mock.ExpectQuery(`passenger_id = \?`).WithArgs(uint64(1), uint64(100)).
		WillReturnRows(occupiedSeatRow(1, "12A", 10, 100))

	c, rec := assignmentContext(e, "1", `{"booking_id":10,"passenger_id":100,"seat_number":"12A"}`)
	require.NoError(t, h.Select(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seat_number":"12A"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
