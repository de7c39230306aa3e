// Package allocation ranks available seats for automatic assignment. It is
// pure: callers fetch the candidate seats for a cabin class and hand them in;
// the package only decides which one wins.
package allocation

import (
	"errors"
	"sort"
	"strconv"
)

// ErrNoSeatsAvailable signals that the requested cabin class has no available
// seat to assign. Callers surface this as resource exhaustion, not retry.
var ErrNoSeatsAvailable = errors.New("no available seats in requested cabin class")

// Candidate is one available seat under consideration.
type Candidate struct {
	Row          int
	Column       string
	Position     string // window | middle | aisle
	ExtraLegroom bool
	ExitRow      bool
	NearLavatory bool
	NearGalley   bool
}

// SeatNumber renders the candidate's seat identifier, e.g. "12C".
func (c Candidate) SeatNumber() string {
	return seatNumber(c.Row, c.Column)
}

// Preferences carries the passenger's optional seating wishes. Location is
// "front" or "back"; Position is a seat position type. Zero values mean no
// preference.
type Preferences struct {
	Position      string `json:"position,omitempty"`
	Location      string `json:"location,omitempty"`
	ExtraLegroom  bool   `json:"extra_legroom,omitempty"`
	ExitRow       bool   `json:"exit_row,omitempty"`
	AvoidLavatory bool   `json:"avoid_lavatory,omitempty"`
	AvoidGalley   bool   `json:"avoid_galley,omitempty"`
}

// Empty reports whether no preference is expressed at all.
func (p Preferences) Empty() bool {
	return p == Preferences{}
}

// Score computes the additive preference score of a candidate seat. Higher is
// better. Weights: position match +10, front preference max(0, 50-row), back
// preference row, extra legroom +8, exit row +7, near-lavatory and
// near-galley each -5 when the passenger wants to avoid them.
func Score(c Candidate, p Preferences) int {
	score := 0
	if p.Position != "" && c.Position == p.Position {
		score += 10
	}
	switch p.Location {
	case "front":
		if v := 50 - c.Row; v > 0 {
			score += v
		}
	case "back":
		score += c.Row
	}
	if p.ExtraLegroom && c.ExtraLegroom {
		score += 8
	}
	if p.ExitRow && c.ExitRow {
		score += 7
	}
	if p.AvoidLavatory && c.NearLavatory {
		score -= 5
	}
	if p.AvoidGalley && c.NearGalley {
		score -= 5
	}
	return score
}

// Best picks the winning seat. Without preferences the front-most seat wins
// (row ascending, column ascending). With preferences seats are ordered by
// score descending, then row ascending, then column ascending.
func Best(candidates []Candidate, prefs Preferences) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoSeatsAvailable
	}
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	if prefs.Empty() {
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Row != ranked[j].Row {
				return ranked[i].Row < ranked[j].Row
			}
			return ranked[i].Column < ranked[j].Column
		})
		return ranked[0], nil
	}
	scores := make(map[Candidate]int, len(ranked))
	for _, c := range ranked {
		scores[c] = Score(c, prefs)
	}
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i]], scores[ranked[j]]
		if si != sj {
			return si > sj
		}
		if ranked[i].Row != ranked[j].Row {
			return ranked[i].Row < ranked[j].Row
		}
		return ranked[i].Column < ranked[j].Column
	})
	return ranked[0], nil
}

func seatNumber(row int, column string) string {
	return strconv.Itoa(row) + column
}
