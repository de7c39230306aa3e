package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/ais-aviation-system-sub010/internal/layout"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

func templateRequestFixture() templateRequest {
	return templateRequest{
		Airline:      "KF",
		AircraftType: "A320",
		ConfigName:   "two-class",
		Layout: &layout.CabinLayout{Rows: []layout.Row{
			{Number: 1, CabinClass: model.CabinBusiness, Seats: []layout.SeatDefinition{
				{Column: "A", Position: model.PositionWindow},
				{Column: "C", Position: model.PositionAisle},
			}},
			{Number: 10, CabinClass: model.CabinEconomy, Seats: []layout.SeatDefinition{
				{Column: "A", Position: model.PositionWindow},
				{Column: "B", Position: model.PositionMiddle},
				{Column: "C", Position: model.PositionAisle},
			}},
		}},
	}
}

func TestResolveTemplateDerivesCounts(t *testing.T) {
	req := templateRequestFixture()
	var tmpl repository.SeatMapTemplate
	require.NoError(t, resolveTemplate(&req, &tmpl))

	assert.Equal(t, 2, tmpl.BusinessCount)
	assert.Equal(t, 3, tmpl.EconomyCount)
	assert.Equal(t, 0, tmpl.FirstCount)
	assert.True(t, tmpl.Active, "active defaults to true")
}

func TestResolveTemplateAcceptsMatchingDeclaredCounts(t *testing.T) {
	req := templateRequestFixture()
	req.BusinessCount = 2
	req.EconomyCount = 3
	var tmpl repository.SeatMapTemplate
	require.NoError(t, resolveTemplate(&req, &tmpl))
	assert.Equal(t, 2, tmpl.BusinessCount)
}

func TestResolveTemplateRejectsCountMismatch(t *testing.T) {
	req := templateRequestFixture()
	req.EconomyCount = 99
	var tmpl repository.SeatMapTemplate
	err := resolveTemplate(&req, &tmpl)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestResolveTemplateRejectsInvalidLayout(t *testing.T) {
	req := templateRequestFixture()
	req.Layout = &layout.CabinLayout{}
	var tmpl repository.SeatMapTemplate
	assert.ErrorIs(t, resolveTemplate(&req, &tmpl), layout.ErrEmptyLayout)
}

func TestResolveTemplateExplicitActiveFlag(t *testing.T) {
	req := templateRequestFixture()
	inactive := false
	req.Active = &inactive
	var tmpl repository.SeatMapTemplate
	require.NoError(t, resolveTemplate(&req, &tmpl))
	assert.False(t, tmpl.Active)
}

func storedTemplateFixture(t *testing.T) *repository.SeatMapTemplate {
	t.Helper()
	req := templateRequestFixture()
	var tmpl repository.SeatMapTemplate
	require.NoError(t, resolveTemplate(&req, &tmpl))
	return &tmpl
}

func TestApplyTemplatePatchMetadataOnly(t *testing.T) {
	tmpl := storedTemplateFixture(t)
	name := "two-class-wifi"
	wifi := true
	require.NoError(t, applyTemplatePatch(tmpl, &templateUpdateRequest{
		ConfigName: &name,
		HasWifi:    &wifi,
	}))

	assert.Equal(t, "two-class-wifi", tmpl.ConfigName)
	assert.True(t, tmpl.HasWifi)
	// Untouched fields and the stored layout survive a metadata-only patch.
	assert.Equal(t, "KF", tmpl.Airline)
	assert.Equal(t, 2, tmpl.BusinessCount)
	assert.Equal(t, 3, tmpl.EconomyCount)
	require.NotNil(t, tmpl.Layout)
	assert.Len(t, tmpl.Layout.Rows, 2)
}

func TestApplyTemplatePatchCountMismatch(t *testing.T) {
	tmpl := storedTemplateFixture(t)
	economy := 99
	err := applyTemplatePatch(tmpl, &templateUpdateRequest{EconomyCount: &economy})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestApplyTemplatePatchLayoutRederivesCounts(t *testing.T) {
	tmpl := storedTemplateFixture(t)
	patched := &layout.CabinLayout{Rows: []layout.Row{
		{Number: 10, CabinClass: model.CabinEconomy, Seats: []layout.SeatDefinition{
			{Column: "A", Position: model.PositionWindow},
			{Column: "B", Position: model.PositionMiddle},
			{Column: "C", Position: model.PositionAisle},
		}},
		{Number: 11, CabinClass: model.CabinEconomy, Seats: []layout.SeatDefinition{
			{Column: "A", Position: model.PositionWindow},
			{Column: "B", Position: model.PositionMiddle},
			{Column: "C", Position: model.PositionAisle},
		}},
	}}
	require.NoError(t, applyTemplatePatch(tmpl, &templateUpdateRequest{Layout: patched}))

	assert.Equal(t, 0, tmpl.BusinessCount)
	assert.Equal(t, 6, tmpl.EconomyCount)
}

func TestApplyTemplatePatchRejectsInvalidLayout(t *testing.T) {
	tmpl := storedTemplateFixture(t)
	err := applyTemplatePatch(tmpl, &templateUpdateRequest{Layout: &layout.CabinLayout{}})
	assert.ErrorIs(t, err, layout.ErrEmptyLayout)
	// The stored layout is untouched when the patch is rejected.
	assert.Len(t, tmpl.Layout.Rows, 2)
}
