package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/layout"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// InventoryHandler materializes per-flight seat inventory from a template.
type InventoryHandler struct {
	InventoryRepo *repository.InventoryRepo
	TemplateRepo  *repository.TemplateRepo
	FlightRepo    *repository.FlightRepo
	Cache         *cache.SeatMapCache
}

// NewInventoryHandler constructs an InventoryHandler.
func NewInventoryHandler(inventoryRepo *repository.InventoryRepo, templateRepo *repository.TemplateRepo, flightRepo *repository.FlightRepo, seatMapCache *cache.SeatMapCache) *InventoryHandler {
	if inventoryRepo == nil || templateRepo == nil || flightRepo == nil || seatMapCache == nil {
		panic("nil dependency passed to NewInventoryHandler")
	}
	return &InventoryHandler{
		InventoryRepo: inventoryRepo,
		TemplateRepo:  templateRepo,
		FlightRepo:    flightRepo,
		Cache:         seatMapCache,
	}
}

// materializeItems expands a template layout into concrete inventory rows for
// one flight. Seats flagged pre-blocked are born blocked, everything else
// available; an empty price tier falls back to the standard tier.
func materializeItems(flightID, templateID uint64, l *layout.CabinLayout) []repository.SeatInventoryItem {
	items := make([]repository.SeatInventoryItem, 0, l.TotalSeats())
	for _, row := range l.Rows {
		for _, seat := range row.Seats {
			status := model.StatusAvailable
			if seat.PreBlocked {
				status = model.StatusBlocked
			}
			tier := seat.PriceTier
			if tier == "" {
				tier = model.DefaultPriceTier
			}
			items = append(items, repository.SeatInventoryItem{
				FlightID:     flightID,
				TemplateID:   templateID,
				SeatNumber:   strconv.Itoa(row.Number) + seat.Column,
				RowNumber:    row.Number,
				ColumnLetter: seat.Column,
				CabinClass:   row.CabinClass,
				Position:     seat.Position,
				ExtraLegroom: seat.ExtraLegroom,
				ExitRow:      seat.ExitRow,
				NearLavatory: seat.NearLavatory,
				NearGalley:   seat.NearGalley,
				PriceTier:    tier,
				PriceCents:   seat.PriceCents,
				Status:       status,
			})
		}
	}
	return items
}

// cabinCountsDrifted reports whether the template's stored per-cabin counts
// disagree with the seats actually materialized from its layout.
func cabinCountsDrifted(tmpl *repository.SeatMapTemplate, byClass map[model.CabinClass]int) bool {
	for class, want := range tmpl.CabinCounts() {
		if byClass[class] != want {
			return true
		}
	}
	return false
}

// Initialize handles POST /v1/flights/:id/inventory. It materializes the
// flight's seat inventory from an active template exactly once; a second
// call answers 409 and leaves the existing inventory untouched.
func (h *InventoryHandler) Initialize(c echo.Context) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req struct {
		TemplateID uint64 `json:"template_id" validate:"required"`
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
	tmpl, err := h.TemplateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if !tmpl.Active {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "template is not active"})
	}

	exists, err := h.InventoryRepo.ExistsForFlight(ctx, flight.ID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if exists {
		return respondRepoError(c, repository.ErrInventoryExists)
	}

	items := materializeItems(flight.ID, tmpl.ID, tmpl.Layout)
	if len(items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "template layout has no seats"})
	}
	blocked := 0
	byClass := make(map[model.CabinClass]int)
	for _, it := range items {
		byClass[it.CabinClass]++
		if it.Status == model.StatusBlocked {
			blocked++
		}
	}
	// A template whose stored counts drifted from its layout must not be
	// materialized; the mismatch would survive in every seat map built on it.
	if cabinCountsDrifted(tmpl, byClass) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "template cabin counts do not match its layout; update the template first",
		})
	}

	if err := h.InventoryRepo.CreateBulk(ctx, items); err != nil {
		return respondRepoError(c, err)
	}
	_ = h.Cache.Invalidate(ctx, flight.ID)

	return c.JSON(http.StatusCreated, echo.Map{
		"flight_id":   flight.ID,
		"template_id": tmpl.ID,
		"total_seats": len(items),
		"blocked":     blocked,
		"by_class":    byClass,
	})
}
