package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
)

func sampleLayout() *CabinLayout {
	return &CabinLayout{Rows: []Row{
		{Number: 1, CabinClass: model.CabinBusiness, Seats: []SeatDefinition{
			{Column: "A", Position: model.PositionWindow},
			{Column: "C", Position: model.PositionAisle},
		}},
		{Number: 10, CabinClass: model.CabinEconomy, Seats: []SeatDefinition{
			{Column: "A", Position: model.PositionWindow},
			{Column: "B", Position: model.PositionMiddle},
			{Column: "C", Position: model.PositionAisle},
		}},
		{Number: 11, CabinClass: model.CabinEconomy, Seats: []SeatDefinition{
			{Column: "A", Position: model.PositionWindow, PreBlocked: true},
		}},
	}}
}

func TestParseRoundTrip(t *testing.T) {
	blob, err := sampleLayout().Encode()
	require.NoError(t, err)

	parsed, err := Parse(blob)
	require.NoError(t, err)
	assert.Equal(t, sampleLayout(), parsed)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte(`{"rows": "nope"}`))
	assert.Error(t, err)
}

func TestValidateEmptyLayout(t *testing.T) {
	l := &CabinLayout{}
	assert.ErrorIs(t, l.Validate(), ErrEmptyLayout)
}

func TestValidateDuplicateRow(t *testing.T) {
	l := sampleLayout()
	l.Rows = append(l.Rows, Row{Number: 10, CabinClass: model.CabinEconomy})
	assert.Error(t, l.Validate())
}

func TestValidateDuplicateColumn(t *testing.T) {
	l := sampleLayout()
	l.Rows[1].Seats = append(l.Rows[1].Seats, SeatDefinition{Column: "B"})
	assert.Error(t, l.Validate())
}

func TestValidateMissingCabinClass(t *testing.T) {
	l := sampleLayout()
	l.Rows[0].CabinClass = ""
	assert.Error(t, l.Validate())
}

func TestSeatCountsByClass(t *testing.T) {
	counts := sampleLayout().SeatCountsByClass()
	assert.Equal(t, 2, counts[model.CabinBusiness])
	assert.Equal(t, 4, counts[model.CabinEconomy])
	assert.Equal(t, 6, sampleLayout().TotalSeats())
}
