package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/cache"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// SeatMapHandler renders the per-flight seat map and check-in statistics.
// The rendered seat map is cached per flight; every mutation path invalidates
// the cache, so a hit is always current.
type SeatMapHandler struct {
	InventoryRepo *repository.InventoryRepo
	TemplateRepo  *repository.TemplateRepo
	FlightRepo    *repository.FlightRepo
	BookingRepo   *repository.BookingRepo
	Cache         *cache.SeatMapCache
}

// NewSeatMapHandler constructs a SeatMapHandler.
func NewSeatMapHandler(inventoryRepo *repository.InventoryRepo, templateRepo *repository.TemplateRepo, flightRepo *repository.FlightRepo, bookingRepo *repository.BookingRepo, seatMapCache *cache.SeatMapCache) *SeatMapHandler {
	if inventoryRepo == nil || templateRepo == nil || flightRepo == nil || bookingRepo == nil || seatMapCache == nil {
		panic("nil dependency passed to NewSeatMapHandler")
	}
	return &SeatMapHandler{
		InventoryRepo: inventoryRepo,
		TemplateRepo:  templateRepo,
		FlightRepo:    flightRepo,
		BookingRepo:   bookingRepo,
		Cache:         seatMapCache,
	}
}

type seatView struct {
	SeatNumber   string `json:"seat_number"`
	Column       string `json:"column"`
	Position     string `json:"position"`
	Status       string `json:"status"`
	ExtraLegroom bool   `json:"extra_legroom,omitempty"`
	ExitRow      bool   `json:"exit_row,omitempty"`
	NearLavatory bool   `json:"near_lavatory,omitempty"`
	NearGalley   bool   `json:"near_galley,omitempty"`
	PriceTier    string `json:"price_tier"`
	PriceCents   uint32 `json:"price_cents,omitempty"`
}

type rowView struct {
	Row   int        `json:"row"`
	Seats []seatView `json:"seats"`
}

type cabinView struct {
	CabinClass string    `json:"cabin_class"`
	TotalSeats int       `json:"total_seats"`
	Available  int       `json:"available"`
	Rows       []rowView `json:"rows"`
}

type seatMapView struct {
	FlightID     uint64      `json:"flight_id"`
	FlightNumber string      `json:"flight_number"`
	Origin       string      `json:"origin"`
	Destination  string      `json:"destination"`
	AircraftType string      `json:"aircraft_type"`
	HasWifi      bool        `json:"has_wifi"`
	HasPower     bool        `json:"has_power"`
	HasEnt       bool        `json:"has_entertainment"`
	Cabins       []cabinView `json:"cabins"`
	Totals       statusTally `json:"totals"`
}

// statusTally counts seats per status. Occupied is the summary counter and
// folds holds in; Held additionally breaks the holds out on their own.
type statusTally struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
	Held      int `json:"held"`
	CheckedIn int `json:"checked_in"`
	Blocked   int `json:"blocked"`
}

func (t *statusTally) add(s model.SeatStatus) {
	t.Total++
	switch {
	case s == model.StatusAvailable:
		t.Available++
	case s.OccupiedLike():
		t.Occupied++
		if s == model.StatusHeld {
			t.Held++
		}
	case s == model.StatusCheckedIn:
		t.CheckedIn++
	case s.BlockedLike():
		t.Blocked++
	}
}

// buildSeatMap assembles the seat map response from inventory rows. Items
// arrive ordered by row then column; cabins render nose to tail regardless of
// the row numbering a template chose.
func buildSeatMap(flight *repository.Flight, tmpl *repository.SeatMapTemplate, items []repository.SeatInventoryItem) seatMapView {
	view := seatMapView{
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
		Origin:       flight.Origin,
		Destination:  flight.Destination,
		AircraftType: tmpl.AircraftType,
		HasWifi:      tmpl.HasWifi,
		HasPower:     tmpl.HasPower,
		HasEnt:       tmpl.HasEntertainment,
	}

	cabins := make(map[model.CabinClass]*cabinView)
	rowIndex := make(map[model.CabinClass]map[int]int)
	for _, it := range items {
		view.Totals.add(it.Status)

		cv, ok := cabins[it.CabinClass]
		if !ok {
			cv = &cabinView{CabinClass: string(it.CabinClass)}
			cabins[it.CabinClass] = cv
			rowIndex[it.CabinClass] = make(map[int]int)
		}
		cv.TotalSeats++
		if it.Status == model.StatusAvailable {
			cv.Available++
		}

		idx, ok := rowIndex[it.CabinClass][it.RowNumber]
		if !ok {
			idx = len(cv.Rows)
			cv.Rows = append(cv.Rows, rowView{Row: it.RowNumber})
			rowIndex[it.CabinClass][it.RowNumber] = idx
		}
		cv.Rows[idx].Seats = append(cv.Rows[idx].Seats, seatView{
			SeatNumber:   it.SeatNumber,
			Column:       it.ColumnLetter,
			Position:     it.Position,
			Status:       string(it.Status),
			ExtraLegroom: it.ExtraLegroom,
			ExitRow:      it.ExitRow,
			NearLavatory: it.NearLavatory,
			NearGalley:   it.NearGalley,
			PriceTier:    it.PriceTier,
			PriceCents:   it.PriceCents,
		})
	}

	for _, cv := range cabins {
		view.Cabins = append(view.Cabins, *cv)
	}
	sort.Slice(view.Cabins, func(i, j int) bool {
		ri := model.CabinClass(view.Cabins[i].CabinClass).DisplayRank()
		rj := model.CabinClass(view.Cabins[j].CabinClass).DisplayRank()
		if ri != rj {
			return ri < rj
		}
		// Unknown classes share the last rank and sort by name.
		return view.Cabins[i].CabinClass < view.Cabins[j].CabinClass
	})
	return view
}

// Get handles GET /v1/flights/:id/seatmap.
func (h *SeatMapHandler) Get(c echo.Context) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	if cached, err := h.Cache.Get(ctx, flightID); err == nil {
		return c.JSONBlob(http.StatusOK, cached)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache failure degrades to a DB read.
		c.Logger().Warnf("seat map cache read failed: %v", err)
	}

	flight, err := h.FlightRepo.GetByID(ctx, flightID)
	if err != nil {
		return respondRepoError(c, err)
	}
	items, err := h.InventoryRepo.GetByFlight(ctx, flight.ID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if len(items) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat inventory not initialized for flight"})
	}
	tmpl, err := h.TemplateRepo.GetByID(ctx, items[0].TemplateID)
	if err != nil {
		return respondRepoError(c, err)
	}

	view := buildSeatMap(flight, tmpl, items)
	payload, err := json.Marshal(view)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render seat map"})
	}
	_ = h.Cache.Set(ctx, flight.ID, payload)
	return c.JSONBlob(http.StatusOK, payload)
}

type checkInStatsView struct {
	FlightID             uint64         `json:"flight_id"`
	ExpectedPassengers   int            `json:"expected_passengers"`
	CheckedIn            int            `json:"checked_in"`
	CompletionPercent    float64        `json:"completion_percent"`
	BoardingPassesIssued int            `json:"boarding_passes_issued"`
	Seats                statusTally    `json:"seats"`
	SeatedByCabin        map[string]int `json:"seated_by_cabin"`
	CheckedInByCabin     map[string]int `json:"checked_in_by_cabin"`
	CheckedInByGroup     map[string]int `json:"checked_in_by_group"`
}

// buildCheckInStats aggregates check-in progress for one flight. Expected
// passengers come from confirmed and completed bookings; completion is
// checked-in over expected, zero when nothing is expected. SeatedByCabin
// counts occupied (including held) plus checked-in seats per cabin class.
func buildCheckInStats(flightID uint64, expected int, items []repository.SeatInventoryItem) checkInStatsView {
	stats := checkInStatsView{
		FlightID:           flightID,
		ExpectedPassengers: expected,
		SeatedByCabin:      make(map[string]int),
		CheckedInByCabin:   make(map[string]int),
		CheckedInByGroup:   make(map[string]int),
	}
	for _, it := range items {
		stats.Seats.add(it.Status)
		if it.Status.OccupiedLike() || it.Status == model.StatusCheckedIn {
			stats.SeatedByCabin[string(it.CabinClass)]++
		}
		if it.Status != model.StatusCheckedIn {
			continue
		}
		stats.CheckedIn++
		stats.CheckedInByCabin[string(it.CabinClass)]++
		if it.BoardingGroup != nil {
			stats.CheckedInByGroup[*it.BoardingGroup]++
		}
		if it.BoardingPassIssued {
			stats.BoardingPassesIssued++
		}
	}
	if expected > 0 {
		stats.CompletionPercent = float64(stats.CheckedIn) / float64(expected) * 100
	}
	return stats
}

// Stats handles GET /v1/flights/:id/checkin-stats.
func (h *SeatMapHandler) Stats(c echo.Context) error {
	flightID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	flight, err := h.FlightRepo.GetByID(ctx, flightID)
	if err != nil {
		return respondRepoError(c, err)
	}
	items, err := h.InventoryRepo.GetByFlight(ctx, flight.ID)
	if err != nil {
		return respondRepoError(c, err)
	}
	expected, err := h.BookingRepo.ExpectedPassengersForFlight(ctx, flight.ID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, buildCheckInStats(flight.ID, expected, items))
}
