package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/ais-aviation-system-sub010/internal/layout"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
	"github.com/kafaat/ais-aviation-system-sub010/internal/repository"
)

func materializerLayout() *layout.CabinLayout {
	return &layout.CabinLayout{Rows: []layout.Row{
		{Number: 1, CabinClass: model.CabinBusiness, Seats: []layout.SeatDefinition{
			{Column: "A", Position: model.PositionWindow, ExtraLegroom: true, PriceTier: "premium", PriceCents: 4500},
			{Column: "C", Position: model.PositionAisle},
		}},
		{Number: 10, CabinClass: model.CabinEconomy, Seats: []layout.SeatDefinition{
			{Column: "A", Position: model.PositionWindow},
			{Column: "B", Position: model.PositionMiddle, PreBlocked: true},
			{Column: "C", Position: model.PositionAisle, NearLavatory: true},
		}},
	}}
}

func TestMaterializeItemsExpandsEverySeat(t *testing.T) {
	items := materializeItems(7, 3, materializerLayout())
	require.Len(t, items, 5)

	first := items[0]
	assert.Equal(t, uint64(7), first.FlightID)
	assert.Equal(t, uint64(3), first.TemplateID)
	assert.Equal(t, "1A", first.SeatNumber)
	assert.Equal(t, 1, first.RowNumber)
	assert.Equal(t, "A", first.ColumnLetter)
	assert.Equal(t, model.CabinBusiness, first.CabinClass)
	assert.Equal(t, "premium", first.PriceTier)
	assert.Equal(t, uint32(4500), first.PriceCents)
	assert.True(t, first.ExtraLegroom)
	assert.Equal(t, model.StatusAvailable, first.Status)
}

func TestMaterializeItemsPreBlockedAndDefaults(t *testing.T) {
	items := materializeItems(7, 3, materializerLayout())

	byNumber := make(map[string]int)
	for i, it := range items {
		byNumber[it.SeatNumber] = i
	}

	blocked := items[byNumber["10B"]]
	assert.Equal(t, model.StatusBlocked, blocked.Status)

	// Seats without a declared tier fall back to the standard tier.
	plain := items[byNumber["1C"]]
	assert.Equal(t, model.DefaultPriceTier, plain.PriceTier)

	lav := items[byNumber["10C"]]
	assert.True(t, lav.NearLavatory)
	assert.Equal(t, model.StatusAvailable, lav.Status)
}

func TestCabinCountsDrifted(t *testing.T) {
	tmpl := &repository.SeatMapTemplate{BusinessCount: 2, EconomyCount: 3}
	byClass := map[model.CabinClass]int{
		model.CabinBusiness: 2,
		model.CabinEconomy:  3,
	}
	assert.False(t, cabinCountsDrifted(tmpl, byClass))

	tmpl.EconomyCount = 4
	assert.True(t, cabinCountsDrifted(tmpl, byClass))
}
