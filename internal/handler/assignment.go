package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/allocation"
	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/pkg/metrics"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// AssignmentHandler implements seat selection, change, release, blocking and
// auto-assignment. Every mutation runs in a transaction whose conditional
// updates carry the concurrency guarantees; the handler never reads a status
// and acts on it outside the statement that changes it.
type AssignmentHandler struct {
	InventoryRepo *repository.InventoryRepo
	BookingRepo   *repository.BookingRepo
	FlightRepo    *repository.FlightRepo
	Cache         *cache.SeatMapCache
	Metrics       *metrics.Metrics
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(inventoryRepo *repository.InventoryRepo, bookingRepo *repository.BookingRepo, flightRepo *repository.FlightRepo, seatMapCache *cache.SeatMapCache, m *metrics.Metrics) *AssignmentHandler {
	if inventoryRepo == nil || bookingRepo == nil || flightRepo == nil || seatMapCache == nil || m == nil {
		panic("nil dependency passed to NewAssignmentHandler")
	}
	return &AssignmentHandler{
		InventoryRepo: inventoryRepo,
		BookingRepo:   bookingRepo,
		FlightRepo:    flightRepo,
		Cache:         seatMapCache,
		Metrics:       m,
	}
}

type assignRequest struct {
	BookingID   uint64 `json:"booking_id" validate:"required"`
	PassengerID uint64 `json:"passenger_id" validate:"required"`
	SeatNumber  string `json:"seat_number" validate:"required"`
}

type assignmentView struct {
	FlightID    uint64 `json:"flight_id"`
	BookingID   uint64 `json:"booking_id"`
	PassengerID uint64 `json:"passenger_id"`
	SeatNumber  string `json:"seat_number"`
	Status      string `json:"status"`
	CabinClass  string `json:"cabin_class"`
}

func (h *AssignmentHandler) record(operation, outcome string) {
	h.Metrics.SeatOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// toCandidates converts available inventory rows into scorer candidates.
func toCandidates(items []repository.SeatInventoryItem) []allocation.Candidate {
	out := make([]allocation.Candidate, 0, len(items))
	for _, it := range items {
		out = append(out, allocation.Candidate{
			Row:          it.RowNumber,
			Column:       it.ColumnLetter,
			Position:     it.Position,
			ExtraLegroom: it.ExtraLegroom,
			ExitRow:      it.ExitRow,
			NearLavatory: it.NearLavatory,
			NearGalley:   it.NearGalley,
		})
	}
	return out
}

// Select handles POST /v1/flights/:id/seats/select. A passenger holding a
// different seat is moved: the old seat is released and the new one occupied
// within one transaction. Selecting the seat already held is a no-op.
func (h *AssignmentHandler) Select(c echo.Context) error {
	return h.assign(c, "select")
}

// Change handles POST /v1/flights/:id/seats/change. Unlike select it requires
// an existing seat, and a checked-in passenger keeps the checked-in state on
// the new seat, inheriting the boarding sequence. The boarding pass must be
// re-issued afterwards.
func (h *AssignmentHandler) Change(c echo.Context) error {
	return h.assign(c, "change")
}

// assign is the shared select/change flow. The operations differ only in
// whether an existing seat is required and how a checked-in seat is treated.
func (h *AssignmentHandler) assign(c echo.Context, operation string) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seatNumber, err := normalizeSeatNumber(req.SeatNumber)
	if err != nil {
		h.record(operation, "invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	if _, err := h.FlightRepo.GetByID(ctx, flightID); err != nil {
		return respondRepoError(c, err)
	}
	booking, _, ok, err := checkBookingPassenger(c, h.BookingRepo, flightID, req.BookingID, req.PassengerID)
	if !ok {
		return err
	}

	target, err := h.InventoryRepo.GetBySeat(ctx, flightID, seatNumber)
	if err != nil {
		return respondRepoError(c, err)
	}
	if target.CabinClass != booking.CabinClass {
		h.record(operation, "invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is not in the booked cabin class"})
	}

	existing, err := h.InventoryRepo.GetByPassenger(ctx, flightID, req.PassengerID)
	if err != nil && !errors.Is(err, repository.ErrSeatNotFound) {
		return respondRepoError(c, err)
	}
	if existing != nil && existing.SeatNumber == seatNumber {
		if operation == "change" {
			// A change must actually move the passenger.
			h.record(operation, "invalid")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "new seat must differ from current seat"})
		}
		h.record(operation, "success")
		return c.JSON(http.StatusOK, assignmentView{
			FlightID:    flightID,
			BookingID:   req.BookingID,
			PassengerID: req.PassengerID,
			SeatNumber:  existing.SeatNumber,
			Status:      string(existing.Status),
			CabinClass:  string(existing.CabinClass),
		})
	}
	if operation == "change" && existing == nil {
		h.record(operation, "invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger has no seat to change"})
	}
	if operation == "select" && existing != nil && existing.Status == model.StatusCheckedIn {
		h.record(operation, "invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger is checked in; use seat change"})
	}
	if existing != nil && existing.Status == model.StatusCheckedIn && existing.BoardingSequence == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checked-in seat is missing boarding data"})
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

	finalStatus := model.StatusOccupied
	if existing != nil && existing.Status == model.StatusCheckedIn {
		// Checked-in change: the seat swap preserves checked-in state and
		// sequence, but the old boarding pass is invalidated.
		if err := h.InventoryRepo.UndoCheckInTx(ctx, tx, flightID, existing.SeatNumber, req.BookingID, req.PassengerID); err != nil {
			return h.assignConflict(c, operation, err, flightID, existing.SeatNumber)
		}
		if err := h.InventoryRepo.ReleaseTx(ctx, tx, flightID, existing.SeatNumber, req.BookingID, req.PassengerID); err != nil {
			return h.assignConflict(c, operation, err, flightID, existing.SeatNumber)
		}
		group := booking.CabinClass.BoardingGroup()
		if err := h.InventoryRepo.CheckInAvailableTx(ctx, tx, flightID, seatNumber, req.BookingID, req.PassengerID, group, *existing.BoardingSequence); err != nil {
			return h.assignConflict(c, operation, err, flightID, seatNumber)
		}
		finalStatus = model.StatusCheckedIn
	} else {
		if existing != nil {
			if err := h.InventoryRepo.ReleaseTx(ctx, tx, flightID, existing.SeatNumber, req.BookingID, req.PassengerID); err != nil {
				return h.assignConflict(c, operation, err, flightID, existing.SeatNumber)
			}
		}
		if err := h.InventoryRepo.AssignTx(ctx, tx, flightID, seatNumber, req.BookingID, req.PassengerID); err != nil {
			return h.assignConflict(c, operation, err, flightID, seatNumber)
		}
	}
	if err := h.BookingRepo.SetPassengerSeatTx(ctx, tx, req.PassengerID, &seatNumber); err != nil {
		return respondRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	_ = h.Cache.Invalidate(ctx, flightID)
	h.record(operation, "success")
	return c.JSON(http.StatusOK, assignmentView{
		FlightID:    flightID,
		BookingID:   req.BookingID,
		PassengerID: req.PassengerID,
		SeatNumber:  seatNumber,
		Status:      string(finalStatus),
		CabinClass:  string(booking.CabinClass),
	})
}

func (h *AssignmentHandler) assignConflict(c echo.Context, operation string, err error, flightID uint64, seatNumber string) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		h.record(operation, "conflict")
		return seatConflict(c, h.InventoryRepo, flightID, seatNumber)
	}
	h.record(operation, "error")
	return respondRepoError(c, err)
}

// Release handles POST /v1/flights/:id/seats/release, returning the
// passenger's seat to the pool. Checked-in seats cannot be released until the
// check-in is undone.
func (h *AssignmentHandler) Release(c echo.Context) error {
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
	if _, _, ok, err := checkBookingPassenger(c, h.BookingRepo, flightID, req.BookingID, req.PassengerID); !ok {
		return err
	}
	seat, err := h.InventoryRepo.GetByPassenger(ctx, flightID, req.PassengerID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if !seat.Status.CanTransition(model.StatusAvailable) {
		// Of the states GetByPassenger returns only checked_in cannot go
		// straight back to available.
		h.record("release", "invalid")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat is checked in; undo check-in first"})
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

	if err := h.InventoryRepo.ReleaseTx(ctx, tx, flightID, seat.SeatNumber, req.BookingID, req.PassengerID); err != nil {
		return h.assignConflict(c, "release", err, flightID, seat.SeatNumber)
	}
	if err := h.BookingRepo.SetPassengerSeatTx(ctx, tx, req.PassengerID, nil); err != nil {
		return respondRepoError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	_ = h.Cache.Invalidate(ctx, flightID)
	h.record("release", "success")
	return c.JSON(http.StatusOK, echo.Map{
		"flight_id":   flightID,
		"seat_number": seat.SeatNumber,
		"status":      string(model.StatusAvailable),
	})
}

// Block handles POST /v1/flights/:id/seats/:seat/block. Supervisor-only;
// only available seats can be blocked.
func (h *AssignmentHandler) Block(c echo.Context) error {
	return h.blockUnblock(c, "block")
}

// Unblock handles POST /v1/flights/:id/seats/:seat/unblock. It also frees
// seats materialized as restricted.
func (h *AssignmentHandler) Unblock(c echo.Context) error {
	return h.blockUnblock(c, "unblock")
}

func (h *AssignmentHandler) blockUnblock(c echo.Context, operation string) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	seatNumber, err := normalizeSeatNumber(c.Param("seat"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	seat, err := h.InventoryRepo.GetBySeat(ctx, flightID, seatNumber)
	if err != nil {
		return respondRepoError(c, err)
	}
	target := model.StatusBlocked
	if operation == "unblock" {
		target = model.StatusAvailable
	}
	if !seat.Status.CanTransition(target) {
		// Advisory precheck; the conditional update below still decides.
		h.record(operation, "conflict")
		return seatConflict(c, h.InventoryRepo, flightID, seatNumber)
	}

	if operation == "block" {
		err = h.InventoryRepo.Block(ctx, flightID, seatNumber)
	} else {
		err = h.InventoryRepo.Unblock(ctx, flightID, seatNumber)
	}
	if err != nil {
		return h.assignConflict(c, operation, err, flightID, seatNumber)
	}

	_ = h.Cache.Invalidate(ctx, flightID)
	h.record(operation, "success")
	status := model.StatusBlocked
	if operation == "unblock" {
		status = model.StatusAvailable
	}
	return c.JSON(http.StatusOK, echo.Map{
		"flight_id":   flightID,
		"seat_number": seatNumber,
		"status":      string(status),
	})
}

// autoAssignAttempts bounds retries when a scored seat is taken by a racing
// agent between the read and the conditional update.
const autoAssignAttempts = 3

// AutoAssign handles POST /v1/flights/:id/seats/auto-assign. The scorer picks
// the best available seat in the booked cabin for the given preferences; when
// the pick is lost to a race the candidate set is re-read and scored again.
func (h *AssignmentHandler) AutoAssign(c echo.Context) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req struct {
		BookingID   uint64                 `json:"booking_id" validate:"required"`
		PassengerID uint64                 `json:"passenger_id" validate:"required"`
		Preferences allocation.Preferences `json:"preferences"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.FlightRepo.GetByID(ctx, flightID); err != nil {
		return respondRepoError(c, err)
	}
	booking, _, ok, err := checkBookingPassenger(c, h.BookingRepo, flightID, req.BookingID, req.PassengerID)
	if !ok {
		return err
	}
	if existing, err := h.InventoryRepo.GetByPassenger(ctx, flightID, req.PassengerID); err == nil {
		h.record("auto_assign", "conflict")
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "passenger already has seat " + existing.SeatNumber,
			"seat_number": existing.SeatNumber,
		})
	} else if !errors.Is(err, repository.ErrSeatNotFound) {
		return respondRepoError(c, err)
	}

	for attempt := 0; attempt < autoAssignAttempts; attempt++ {
		available, err := h.InventoryRepo.AvailableByCabinClass(ctx, flightID, booking.CabinClass)
		if err != nil {
			return respondRepoError(c, err)
		}
		best, err := allocation.Best(toCandidates(available), req.Preferences)
		if err != nil {
			h.record("auto_assign", "exhausted")
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "no seats available in " + string(booking.CabinClass),
			})
		}

		assigned, err := h.tryAutoAssign(ctx, flightID, best.SeatNumber(), req.BookingID, req.PassengerID)
		if err != nil {
			return respondRepoError(c, err)
		}
		if !assigned {
			continue
		}

		_ = h.Cache.Invalidate(ctx, flightID)
		h.record("auto_assign", "success")
		return c.JSON(http.StatusOK, assignmentView{
			FlightID:    flightID,
			BookingID:   req.BookingID,
			PassengerID: req.PassengerID,
			SeatNumber:  best.SeatNumber(),
			Status:      string(model.StatusOccupied),
			CabinClass:  string(booking.CabinClass),
		})
	}
	h.record("auto_assign", "conflict")
	return c.JSON(http.StatusConflict, echo.Map{"error": "could not assign a seat, please retry"})
}

// tryAutoAssign attempts to claim one scored seat in its own transaction.
// A lost race reports assigned=false so the caller can re-score.
func (h *AssignmentHandler) tryAutoAssign(ctx context.Context, flightID uint64, seatNumber string, bookingID, passengerID uint64) (bool, error) {
	tx, err := h.InventoryRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.InventoryRepo.AssignTx(ctx, tx, flightID, seatNumber, bookingID, passengerID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return false, nil
		}
		return false, err
	}
	if err := h.BookingRepo.SetPassengerSeatTx(ctx, tx, passengerID, &seatNumber); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
