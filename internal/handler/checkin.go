package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/allocation"
	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/pkg/metrics"
	"github.com/kafaat/ais-aviation-system-sub010/internal/queue"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// CheckInHandler drives the passenger check-in state machine. A check-in
// stamps the seat checked_in with a boarding group and a per-flight monotonic
// sequence number; undo reverts the seat to occupied but never returns the
// sequence number to the pool.
type CheckInHandler struct {
	InventoryRepo *repository.InventoryRepo
	BookingRepo   *repository.BookingRepo
	FlightRepo    *repository.FlightRepo
	Cache         *cache.SeatMapCache
	Metrics       *metrics.Metrics
}

// NewCheckInHandler constructs a CheckInHandler.
func NewCheckInHandler(inventoryRepo *repository.InventoryRepo, bookingRepo *repository.BookingRepo, flightRepo *repository.FlightRepo, seatMapCache *cache.SeatMapCache, m *metrics.Metrics) *CheckInHandler {
	if inventoryRepo == nil || bookingRepo == nil || flightRepo == nil || seatMapCache == nil || m == nil {
		panic("nil dependency passed to NewCheckInHandler")
	}
	return &CheckInHandler{
		InventoryRepo: inventoryRepo,
		BookingRepo:   bookingRepo,
		FlightRepo:    flightRepo,
		Cache:         seatMapCache,
		Metrics:       m,
	}
}

type checkInRequest struct {
	BookingID   uint64                 `json:"booking_id" validate:"required"`
	PassengerID uint64                 `json:"passenger_id" validate:"required"`
	SeatNumber  string                 `json:"seat_number"`
	Preferences allocation.Preferences `json:"preferences"`
}

type checkInView struct {
	FlightID         uint64 `json:"flight_id"`
	BookingID        uint64 `json:"booking_id"`
	PassengerID      uint64 `json:"passenger_id"`
	SeatNumber       string `json:"seat_number"`
	BoardingGroup    string `json:"boarding_group"`
	BoardingSequence int    `json:"boarding_sequence"`
	FullyCheckedIn   bool   `json:"fully_checked_in"`
}

// CheckIn handles POST /v1/flights/:id/checkin. Seat resolution order: the
// explicitly requested seat, then the seat the passenger already holds, then
// auto-assignment in the booked cabin.
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	flight, err := h.FlightRepo.GetByID(ctx, flightID)
	if err != nil {
		return respondRepoError(c, err)
	}
	booking, passenger, ok, err := checkBookingPassenger(c, h.BookingRepo, flightID, req.BookingID, req.PassengerID)
	if !ok {
		return err
	}
	// Cancelled bookings are already rejected by checkBookingPassenger.
	if !booking.CheckInEligible() {
		h.Metrics.CheckInsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is not eligible for check-in"})
	}

	existing, err := h.InventoryRepo.GetByPassenger(ctx, flightID, req.PassengerID)
	if err != nil && !errors.Is(err, repository.ErrSeatNotFound) {
		return respondRepoError(c, err)
	}
	if existing != nil && existing.Status == model.StatusCheckedIn {
		h.Metrics.CheckInsTotal.WithLabelValues("conflict").Inc()
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "passenger is already checked in to seat " + existing.SeatNumber,
			"seat_number": existing.SeatNumber,
		})
	}

	// Resolve the target seat before opening the transaction; the claim
	// itself is still guarded by the conditional update inside it.
	seatNumber, err := h.resolveSeat(c, flightID, booking, existing, &req)
	if err != nil || seatNumber == "" {
		return err
	}

	tx, err := h.InventoryRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// The counter update locks the flight row, serializing concurrent
	// check-ins on the same flight for the rest of this transaction.
	sequence, err := h.FlightRepo.NextBoardingSequenceTx(ctx, tx, flightID)
	if err != nil {
		return respondRepoError(c, err)
	}
	group := booking.CabinClass.BoardingGroup()

	switch {
	case existing != nil && existing.SeatNumber == seatNumber && existing.Status == model.StatusOccupied:
		err = h.InventoryRepo.CheckInOccupiedTx(ctx, tx, flightID, seatNumber, req.BookingID, req.PassengerID, group, sequence)
	case existing != nil && existing.SeatNumber == seatNumber:
		// Held seat: promote via release then claim, one transaction.
		if err = h.InventoryRepo.ReleaseTx(ctx, tx, flightID, seatNumber, req.BookingID, req.PassengerID); err == nil {
			err = h.InventoryRepo.CheckInAvailableTx(ctx, tx, flightID, seatNumber, req.BookingID, req.PassengerID, group, sequence)
		}
	default:
		if existing != nil {
			if err = h.InventoryRepo.ReleaseTx(ctx, tx, flightID, existing.SeatNumber, req.BookingID, req.PassengerID); err != nil {
				break
			}
		}
		err = h.InventoryRepo.CheckInAvailableTx(ctx, tx, flightID, seatNumber, req.BookingID, req.PassengerID, group, sequence)
	}
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			h.Metrics.CheckInsTotal.WithLabelValues("conflict").Inc()
			return seatConflict(c, h.InventoryRepo, flightID, seatNumber)
		}
		return respondRepoError(c, err)
	}

	if err := h.BookingRepo.SetPassengerSeatTx(ctx, tx, req.PassengerID, &seatNumber); err != nil {
		return respondRepoError(c, err)
	}
	checkedIn, err := h.InventoryRepo.CountCheckedInForBookingTx(ctx, tx, flightID, req.BookingID)
	if err != nil {
		return respondRepoError(c, err)
	}
	total, err := h.BookingRepo.CountPassengersTx(ctx, tx, req.BookingID)
	if err != nil {
		return respondRepoError(c, err)
	}
	fully := total > 0 && checkedIn == total
	if fully != booking.FullyCheckedIn {
		if err := h.BookingRepo.SetFullyCheckedInTx(ctx, tx, req.BookingID, fully); err != nil {
			return respondRepoError(c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	_ = h.Cache.Invalidate(ctx, flightID)
	h.Metrics.CheckInsTotal.WithLabelValues("success").Inc()

	event := queue.CheckInCompletedEvent{
		EventID:          uuid.NewString(),
		FlightID:         flight.ID,
		FlightNumber:     flight.FlightNumber,
		BookingID:        booking.ID,
		RecordLocator:    booking.RecordLocator,
		PassengerID:      passenger.ID,
		PassengerName:    passenger.FullName,
		SeatNumber:       seatNumber,
		CabinClass:       string(booking.CabinClass),
		BoardingGroup:    group,
		BoardingSequence: sequence,
		FullyCheckedIn:   fully,
		CheckedInAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue.PublishCheckInCompleted(context.Background(), event) }()

	return c.JSON(http.StatusOK, checkInView{
		FlightID:         flightID,
		BookingID:        req.BookingID,
		PassengerID:      req.PassengerID,
		SeatNumber:       seatNumber,
		BoardingGroup:    group,
		BoardingSequence: sequence,
		FullyCheckedIn:   fully,
	})
}

// resolveSeat decides which seat the check-in targets. It returns an empty
// seat number if a response has already been written.
func (h *CheckInHandler) resolveSeat(c echo.Context, flightID uint64, booking *repository.Booking, existing *repository.SeatInventoryItem, req *checkInRequest) (string, error) {
	ctx := c.Request().Context()

	if req.SeatNumber != "" {
		seatNumber, err := normalizeSeatNumber(req.SeatNumber)
		if err != nil {
			h.Metrics.CheckInsTotal.WithLabelValues("invalid").Inc()
			return "", c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		seat, err := h.InventoryRepo.GetBySeat(ctx, flightID, seatNumber)
		if err != nil {
			return "", respondRepoError(c, err)
		}
		if seat.CabinClass != booking.CabinClass {
			h.Metrics.CheckInsTotal.WithLabelValues("invalid").Inc()
			return "", c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is not in the booked cabin class"})
		}
		return seatNumber, nil
	}

	if existing != nil {
		return existing.SeatNumber, nil
	}

	available, err := h.InventoryRepo.AvailableByCabinClass(ctx, flightID, booking.CabinClass)
	if err != nil {
		return "", respondRepoError(c, err)
	}
	best, err := allocation.Best(toCandidates(available), req.Preferences)
	if err != nil {
		h.Metrics.CheckInsTotal.WithLabelValues("exhausted").Inc()
		return "", c.JSON(http.StatusConflict, echo.Map{
			"error": "no seats available in " + string(booking.CabinClass),
		})
	}
	return best.SeatNumber(), nil
}

// Undo handles POST /v1/flights/:id/checkin/undo. The seat reverts to
// occupied and the booking's fully-checked-in flag clears; the consumed
// boarding sequence is never reused.
func (h *CheckInHandler) Undo(c echo.Context) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req struct {
		BookingID   uint64 `json:"booking_id" validate:"required"`
		PassengerID uint64 `json:"passenger_id" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	booking, _, ok, err := checkBookingPassenger(c, h.BookingRepo, flightID, req.BookingID, req.PassengerID)
	if !ok {
		return err
	}
	seat, err := h.InventoryRepo.GetByPassenger(ctx, flightID, req.PassengerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if seat.Status != model.StatusCheckedIn {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger is not checked in"})
	}

	tx, err := h.InventoryRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.InventoryRepo.UndoCheckInTx(ctx, tx, flightID, seat.SeatNumber, req.BookingID, req.PassengerID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return seatConflict(c, h.InventoryRepo, flightID, seat.SeatNumber)
		}
		return respondRepoError(c, err)
	}
	if err := h.BookingRepo.SetFullyCheckedInTx(ctx, tx, req.BookingID, false); err != nil {
		return respondRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	_ = h.Cache.Invalidate(ctx, flightID)
	h.Metrics.UndoTotal.Inc()

	event := queue.CheckInUndoneEvent{
		EventID:       uuid.NewString(),
		FlightID:      flightID,
		BookingID:     req.BookingID,
		PassengerID:   req.PassengerID,
		SeatNumber:    seat.SeatNumber,
		RecordLocator: booking.RecordLocator,
		UndoneAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue.PublishCheckInUndone(context.Background(), event) }()

	return c.JSON(http.StatusOK, echo.Map{
		"flight_id":   flightID,
		"seat_number": seat.SeatNumber,
		"status":      string(model.StatusOccupied),
	})
}
