// Package handler contains the HTTP handlers of the seat inventory and
// check-in API. Handlers own request validation, transaction boundaries and
// status-code mapping; everything stateful lives in the repository layer.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// normalizeSeatNumber uppercases and trims a seat number like "12a" and
// verifies it is digits followed by a single column letter.
func normalizeSeatNumber(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) < 2 {
		return "", errors.New("invalid seat number")
	}
	letters := 0
	for letters < len(s) && s[len(s)-1-letters] >= 'A' && s[len(s)-1-letters] <= 'Z' {
		letters++
	}
	if letters != 1 {
		return "", errors.New("invalid seat number")
	}
	row, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || row <= 0 {
		return "", errors.New("invalid seat number")
	}
	return s, nil
}

// respondRepoError maps repository sentinel errors onto HTTP statuses.
// Not-found sentinels become 404, conflicts 409, anything else 500.
func respondRepoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrFlightNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrPassengerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInventoryExists),
		errors.Is(err, repository.ErrStatusConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// seatConflict re-reads a seat after a conditional update matched no rows and
// answers 409 naming the status that was actually observed, so agents see
// "12A is checked_in" rather than a bare conflict.
func seatConflict(c echo.Context, repo *repository.InventoryRepo, flightID uint64, seatNumber string) error {
	seat, err := repo.GetBySeat(c.Request().Context(), flightID, seatNumber)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusConflict, echo.Map{
		"error":       fmt.Sprintf("seat %s is %s", seatNumber, seat.Status),
		"seat_number": seatNumber,
		"status":      string(seat.Status),
	})
}

// checkBookingPassenger loads and cross-checks the booking/passenger pair
// against the flight. Cancelled bookings are rejected here so no seat
// operation can act on one. When ok is false the response has already been
// written and the handler must return err as-is.
func checkBookingPassenger(c echo.Context, bookings *repository.BookingRepo, flightID, bookingID, passengerID uint64) (booking *repository.Booking, passenger *repository.Passenger, ok bool, err error) {
	ctx := c.Request().Context()
	booking, err = bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, false, respondRepoError(c, err)
	}
	if booking.FlightID != flightID {
		return nil, nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "booking does not belong to this flight"})
	}
	if booking.Status == repository.BookingCancelled {
		return nil, nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is cancelled"})
	}
	passenger, err = bookings.GetPassenger(ctx, passengerID)
	if err != nil {
		return nil, nil, false, respondRepoError(c, err)
	}
	if passenger.BookingID != booking.ID {
		return nil, nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger does not belong to this booking"})
	}
	return booking, passenger, true, nil
}
