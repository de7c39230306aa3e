package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kafaat/ais-aviation-system-sub010/internal/layout"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

// TemplateHandler manages seat map templates. Template endpoints are
// supervisor-only; templates feed the inventory materializer and are never
// mutated by the per-flight flow.
type TemplateHandler struct {
	TemplateRepo *repository.TemplateRepo
}

// NewTemplateHandler constructs a TemplateHandler.
func NewTemplateHandler(templateRepo *repository.TemplateRepo) *TemplateHandler {
	if templateRepo == nil {
		panic("nil repository passed to NewTemplateHandler")
	}
	return &TemplateHandler{TemplateRepo: templateRepo}
}

// templateRequest is the create payload. Cabin counts are optional; when
// present they must match the counts derived from the layout, otherwise the
// derived counts are used.
type templateRequest struct {
	Airline             string              `json:"airline" validate:"required"`
	AircraftType        string              `json:"aircraft_type" validate:"required"`
	ConfigName          string              `json:"config_name" validate:"required"`
	Layout              *layout.CabinLayout `json:"layout" validate:"required"`
	FirstCount          int                 `json:"first_count"`
	BusinessCount       int                 `json:"business_count"`
	PremiumEconomyCount int                 `json:"premium_economy_count"`
	EconomyCount        int                 `json:"economy_count"`
	HasWifi             bool                `json:"has_wifi"`
	HasPower            bool                `json:"has_power"`
	HasEntertainment    bool                `json:"has_entertainment"`
	Active              *bool               `json:"active"`
}

// templateUpdateRequest is the partial-update payload: every field is
// optional and absent fields keep their stored values. Counts are
// re-validated against the effective layout whenever either changes.
type templateUpdateRequest struct {
	Airline             *string             `json:"airline"`
	AircraftType        *string             `json:"aircraft_type"`
	ConfigName          *string             `json:"config_name"`
	Layout              *layout.CabinLayout `json:"layout"`
	FirstCount          *int                `json:"first_count"`
	BusinessCount       *int                `json:"business_count"`
	PremiumEconomyCount *int                `json:"premium_economy_count"`
	EconomyCount        *int                `json:"economy_count"`
	HasWifi             *bool               `json:"has_wifi"`
	HasPower            *bool               `json:"has_power"`
	HasEntertainment    *bool               `json:"has_entertainment"`
	Active              *bool               `json:"active"`
}

type templateView struct {
	ID                  uint64              `json:"id"`
	Airline             string              `json:"airline"`
	AircraftType        string              `json:"aircraft_type"`
	ConfigName          string              `json:"config_name"`
	Layout              *layout.CabinLayout `json:"layout"`
	FirstCount          int                 `json:"first_count"`
	BusinessCount       int                 `json:"business_count"`
	PremiumEconomyCount int                 `json:"premium_economy_count"`
	EconomyCount        int                 `json:"economy_count"`
	TotalSeats          int                 `json:"total_seats"`
	HasWifi             bool                `json:"has_wifi"`
	HasPower            bool                `json:"has_power"`
	HasEntertainment    bool                `json:"has_entertainment"`
	Active              bool                `json:"active"`
	CreatedAt           string              `json:"created_at"`
	UpdatedAt           string              `json:"updated_at"`
}

func newTemplateView(t *repository.SeatMapTemplate) templateView {
	return templateView{
		ID:                  t.ID,
		Airline:             t.Airline,
		AircraftType:        t.AircraftType,
		ConfigName:          t.ConfigName,
		Layout:              t.Layout,
		FirstCount:          t.FirstCount,
		BusinessCount:       t.BusinessCount,
		PremiumEconomyCount: t.PremiumEconomyCount,
		EconomyCount:        t.EconomyCount,
		TotalSeats:          t.Layout.TotalSeats(),
		HasWifi:             t.HasWifi,
		HasPower:            t.HasPower,
		HasEntertainment:    t.HasEntertainment,
		Active:              t.Active,
		CreatedAt:           t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:           t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// resolveTemplate validates the request layout and reconciles the declared
// cabin counts with the counts derived from it. A non-zero declared count
// that disagrees with the layout is rejected; zero counts are filled in.
func resolveTemplate(req *templateRequest, t *repository.SeatMapTemplate) error {
	if err := req.Layout.Validate(); err != nil {
		return err
	}
	derived := req.Layout.SeatCountsByClass()
	declared := map[model.CabinClass]*int{
		model.CabinFirst:          &req.FirstCount,
		model.CabinBusiness:       &req.BusinessCount,
		model.CabinPremiumEconomy: &req.PremiumEconomyCount,
		model.CabinEconomy:        &req.EconomyCount,
	}
	for class, count := range declared {
		if *count != 0 && *count != derived[class] {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(
				"%s count %d does not match layout count %d", class, *count, derived[class]))
		}
		*count = derived[class]
	}

	t.Airline = req.Airline
	t.AircraftType = req.AircraftType
	t.ConfigName = req.ConfigName
	t.Layout = req.Layout
	t.FirstCount = req.FirstCount
	t.BusinessCount = req.BusinessCount
	t.PremiumEconomyCount = req.PremiumEconomyCount
	t.EconomyCount = req.EconomyCount
	t.HasWifi = req.HasWifi
	t.HasPower = req.HasPower
	t.HasEntertainment = req.HasEntertainment
	t.Active = true
	if req.Active != nil {
		t.Active = *req.Active
	}
	return nil
}

// applyTemplatePatch applies the non-nil fields of req to t. A patched
// layout is validated and the stored counts re-derived from it; counts
// supplied in the patch must agree with whichever layout ends up in effect.
func applyTemplatePatch(t *repository.SeatMapTemplate, req *templateUpdateRequest) error {
	if req.Airline != nil {
		t.Airline = *req.Airline
	}
	if req.AircraftType != nil {
		t.AircraftType = *req.AircraftType
	}
	if req.ConfigName != nil {
		t.ConfigName = *req.ConfigName
	}
	if req.Layout != nil {
		if err := req.Layout.Validate(); err != nil {
			return err
		}
		t.Layout = req.Layout
	}
	derived := t.Layout.SeatCountsByClass()
	patched := map[model.CabinClass]*int{
		model.CabinFirst:          req.FirstCount,
		model.CabinBusiness:       req.BusinessCount,
		model.CabinPremiumEconomy: req.PremiumEconomyCount,
		model.CabinEconomy:        req.EconomyCount,
	}
	for class, count := range patched {
		if count != nil && *count != 0 && *count != derived[class] {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(
				"%s count %d does not match layout count %d", class, *count, derived[class]))
		}
	}
	t.FirstCount = derived[model.CabinFirst]
	t.BusinessCount = derived[model.CabinBusiness]
	t.PremiumEconomyCount = derived[model.CabinPremiumEconomy]
	t.EconomyCount = derived[model.CabinEconomy]
	if req.HasWifi != nil {
		t.HasWifi = *req.HasWifi
	}
	if req.HasPower != nil {
		t.HasPower = *req.HasPower
	}
	if req.HasEntertainment != nil {
		t.HasEntertainment = *req.HasEntertainment
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	return nil
}

// Create handles POST /v1/templates.
func (h *TemplateHandler) Create(c echo.Context) error {
	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	var t repository.SeatMapTemplate
	if err := resolveTemplate(&req, &t); err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.TemplateRepo.Create(c.Request().Context(), &t); err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, newTemplateView(&t))
}

// Update handles PUT /v1/templates/:id. The payload is a patch: any
// subset of fields may be sent and absent fields keep their stored values.
func (h *TemplateHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	t, err := h.TemplateRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}
	var req templateUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := applyTemplatePatch(t, &req); err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.TemplateRepo.Update(c.Request().Context(), t); err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, newTemplateView(t))
}

// Deactivate handles DELETE /v1/templates/:id. Templates are never hard
// deleted because existing inventory references them; deactivation only
// stops new materializations.
func (h *TemplateHandler) Deactivate(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	t, err := h.TemplateRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}
	if t.Active {
		t.Active = false
		if err := h.TemplateRepo.Update(c.Request().Context(), t); err != nil {
			return respondRepoError(c, err)
		}
	}
	return c.JSON(http.StatusOK, newTemplateView(t))
}

// Get handles GET /v1/templates/:id.
func (h *TemplateHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	t, err := h.TemplateRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, newTemplateView(t))
}

// List handles GET /v1/templates with optional active, airline and
// aircraft_type query filters.
func (h *TemplateHandler) List(c echo.Context) error {
	activeOnly := false
	if v := c.QueryParam("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid active filter"})
		}
		activeOnly = b
	}
	templates, err := h.TemplateRepo.List(c.Request().Context(), activeOnly,
		c.QueryParam("airline"), c.QueryParam("aircraft_type"))
	if err != nil {
		return respondRepoError(c, err)
	}
	views := make([]templateView, 0, len(templates))
	for i := range templates {
		views = append(views, newTemplateView(&templates[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": views, "count": len(views)})
}
