package allocation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestEmpty(t *testing.T) {
	_, err := Best(nil, Preferences{})
	assert.ErrorIs(t, err, ErrNoSeatsAvailable)
}

func TestBestDefaultOrderFrontToBack(t *testing.T) {
	cands := []Candidate{
		{Row: 12, Column: "A"},
		{Row: 3, Column: "C"},
		{Row: 3, Column: "A"},
	}
	best, err := Best(cands, Preferences{})
	require.NoError(t, err)
	assert.Equal(t, "3A", best.SeatNumber())
}

func TestScoreWeights(t *testing.T) {
	window := Candidate{Row: 5, Column: "A", Position: "window"}
	assert.Equal(t, 10, Score(window, Preferences{Position: "window"}))
	assert.Equal(t, 0, Score(window, Preferences{Position: "aisle"}))

	// front preference rewards low rows, floor at zero
	assert.Equal(t, 45, Score(Candidate{Row: 5}, Preferences{Location: "front"}))
	assert.Equal(t, 0, Score(Candidate{Row: 60}, Preferences{Location: "front"}))
	assert.Equal(t, 28, Score(Candidate{Row: 28}, Preferences{Location: "back"}))

	legroom := Candidate{Row: 14, ExtraLegroom: true, ExitRow: true}
	assert.Equal(t, 15, Score(legroom, Preferences{ExtraLegroom: true, ExitRow: true}))

	noisy := Candidate{Row: 30, NearLavatory: true, NearGalley: true}
	assert.Equal(t, -10, Score(noisy, Preferences{AvoidLavatory: true, AvoidGalley: true}))
	assert.Equal(t, 0, Score(noisy, Preferences{Position: "window"}))
}

// A window+front request on rows 1-30 must pick the lowest-rowed available
// window seat before any farther-back seat, because the front bonus dominates
// over the whole range.
func TestBestWindowFrontPrefersLowestRow(t *testing.T) {
	var cands []Candidate
	for row := 1; row <= 30; row++ {
		cands = append(cands,
			Candidate{Row: row, Column: "A", Position: "window"},
			Candidate{Row: row, Column: "C", Position: "aisle"},
		)
	}
	// remove the row-1 window seat so the winner has to be row 2
	filtered := cands[:0]
	for _, c := range cands {
		if c.Row == 1 && c.Column == "A" {
			continue
		}
		filtered = append(filtered, c)
	}

	best, err := Best(filtered, Preferences{Position: "window", Location: "front"})
	require.NoError(t, err)
	assert.Equal(t, "2A", best.SeatNumber())
}

func TestBestTieBreaksRowThenColumn(t *testing.T) {
	cands := []Candidate{
		{Row: 7, Column: "F", Position: "window"},
		{Row: 7, Column: "A", Position: "window"},
		{Row: 9, Column: "A", Position: "window"},
	}
	best, err := Best(cands, Preferences{Position: "window"})
	require.NoError(t, err)
	assert.Equal(t, "7A", best.SeatNumber())
}

func TestBestDoesNotMutateInput(t *testing.T) {
	cands := []Candidate{
		{Row: 9, Column: "A"},
		{Row: 1, Column: "A"},
	}
	_, err := Best(cands, Preferences{})
	require.NoError(t, err)
	assert.Equal(t, 9, cands[0].Row)
}

func ExampleBest() {
	best, _ := Best([]Candidate{
		{Row: 2, Column: "B", Position: "middle"},
		{Row: 2, Column: "A", Position: "window"},
	}, Preferences{Position: "window"})
	fmt.Println(best.SeatNumber())
	// Output: 2A
}
