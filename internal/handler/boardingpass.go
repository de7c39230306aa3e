package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/boardingpass"
	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/pkg/metrics"
	"github.com/kafaat/ais-aviation-system-sub010/internal/queue"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// BoardingPassHandler generates boarding passes for checked-in passengers.
// The gate assignment is supplied by another subsystem and may not exist yet;
// a pass without a gate is still valid and the gate is announced later.
type BoardingPassHandler struct {
	InventoryRepo *repository.InventoryRepo
	BookingRepo   *repository.BookingRepo
	FlightRepo    *repository.FlightRepo
	GateRepo      *repository.GateRepo
	Cache         *cache.SeatMapCache
	Metrics       *metrics.Metrics
}

// NewBoardingPassHandler constructs a BoardingPassHandler.
func NewBoardingPassHandler(inventoryRepo *repository.InventoryRepo, bookingRepo *repository.BookingRepo, flightRepo *repository.FlightRepo, gateRepo *repository.GateRepo, seatMapCache *cache.SeatMapCache, m *metrics.Metrics) *BoardingPassHandler {
	if inventoryRepo == nil || bookingRepo == nil || flightRepo == nil || gateRepo == nil || seatMapCache == nil || m == nil {
		panic("nil dependency passed to NewBoardingPassHandler")
	}
	return &BoardingPassHandler{
		InventoryRepo: inventoryRepo,
		BookingRepo:   bookingRepo,
		FlightRepo:    flightRepo,
		GateRepo:      gateRepo,
		Cache:         seatMapCache,
		Metrics:       m,
	}
}

type boardingPassView struct {
	PassengerName    string `json:"passenger_name"`
	RecordLocator    string `json:"record_locator"`
	FlightNumber     string `json:"flight_number"`
	Origin           string `json:"origin"`
	Destination      string `json:"destination"`
	DepartureTime    string `json:"departure_time"`
	SeatNumber       string `json:"seat_number"`
	CabinClass       string `json:"cabin_class"`
	BoardingGroup    string `json:"boarding_group"`
	BoardingSequence int    `json:"boarding_sequence"`
	Gate             string `json:"gate,omitempty"`
	BoardingStartsAt string `json:"boarding_starts_at,omitempty"`
	Barcode          string `json:"barcode"`
}

// Issue handles POST /v1/flights/:id/boarding-pass. Re-issuing for the same
// passenger returns a fresh pass with the same sequence number.
func (h *BoardingPassHandler) Issue(c echo.Context) error {
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
	flight, err := h.FlightRepo.GetByID(ctx, flightID)
	if err != nil {
		return respondRepoError(c, err)
	}
	booking, passenger, ok, err := checkBookingPassenger(c, h.BookingRepo, flightID, req.BookingID, req.PassengerID)
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
	if seat.BoardingGroup == nil || seat.BoardingSequence == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "checked-in seat is missing boarding data"})
	}

	var gate, boardingAt string
	if g, err := h.GateRepo.GetByFlight(ctx, flightID); err == nil {
		gate = g.Gate
		boardingAt = g.BoardingStartsAt.UTC().Format(time.RFC3339)
	} else if !errors.Is(err, repository.ErrGateNotAssigned) {
		return respondRepoError(c, err)
	}

	barcode := boardingpass.Barcode(
		passenger.FullName, booking.RecordLocator,
		flight.Origin, flight.Destination, flight.FlightNumber,
		flight.DepartureTime, seat.SeatNumber, *seat.BoardingSequence,
	)

	if err := h.InventoryRepo.MarkBoardingPassIssued(ctx, flightID, seat.SeatNumber); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return seatConflict(c, h.InventoryRepo, flightID, seat.SeatNumber)
		}
		return respondRepoError(c, err)
	}
	_ = h.Cache.Invalidate(ctx, flightID)
	h.Metrics.BoardingPassesTotal.Inc()

	event := queue.BoardingPassIssuedEvent{
		EventID:          uuid.NewString(),
		FlightID:         flight.ID,
		FlightNumber:     flight.FlightNumber,
		PassengerID:      passenger.ID,
		PassengerName:    passenger.FullName,
		SeatNumber:       seat.SeatNumber,
		BoardingSequence: *seat.BoardingSequence,
		Gate:             gate,
		IssuedAt:         time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue.PublishBoardingPassIssued(context.Background(), event) }()

	return c.JSON(http.StatusOK, boardingPassView{
		PassengerName:    passenger.FullName,
		RecordLocator:    booking.RecordLocator,
		FlightNumber:     flight.FlightNumber,
		Origin:           flight.Origin,
		Destination:      flight.Destination,
		DepartureTime:    flight.DepartureTime.UTC().Format(time.RFC3339),
		SeatNumber:       seat.SeatNumber,
		CabinClass:       string(seat.CabinClass),
		BoardingGroup:    *seat.BoardingGroup,
		BoardingSequence: *seat.BoardingSequence,
		Gate:             gate,
		BoardingStartsAt: boardingAt,
		Barcode:          barcode,
	})
}
