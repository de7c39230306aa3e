// Package layout models the cabin layout blob stored on a seat map template.
// The layout is persisted as JSON and parsed in exactly one place (Parse) so
// that no call site re-implements defensive decoding. All functions here are
// pure; validation failures are returned to the caller, never logged or
// swallowed.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
)

// ErrEmptyLayout is returned when a layout declares no rows.
var ErrEmptyLayout = errors.New("cabin layout has no rows")

// SeatDefinition describes one seat position within a row of the template.
type SeatDefinition struct {
	Column       string `json:"column"`                  // column letter, e.g. "A"
	Position     string `json:"position"`                // window | middle | aisle
	ExtraLegroom bool   `json:"extra_legroom,omitempty"` // amenity flags
	ExitRow      bool   `json:"exit_row,omitempty"`
	NearLavatory bool   `json:"near_lavatory,omitempty"`
	NearGalley   bool   `json:"near_galley,omitempty"`
	PriceTier    string `json:"price_tier,omitempty"` // defaults to "standard" at materialization
	PriceCents   uint32 `json:"price_cents,omitempty"`
	PreBlocked   bool   `json:"pre_blocked,omitempty"` // materialize as blocked instead of available
}

// Row is one physical seat row belonging to a single cabin class.
type Row struct {
	Number     int              `json:"row"`
	CabinClass model.CabinClass `json:"cabin_class"`
	Seats      []SeatDefinition `json:"seats"`
}

// CabinLayout is the full parsed layout of an aircraft configuration.
type CabinLayout struct {
	Rows []Row `json:"rows"`
}

// Parse decodes a serialized layout blob and validates it. This is the single
// parsing boundary for layouts read back from storage or received from
// callers.
func Parse(blob []byte) (*CabinLayout, error) {
	var l CabinLayout
	if err := json.Unmarshal(blob, &l); err != nil {
		return nil, fmt.Errorf("decode cabin layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Encode serializes the layout for storage.
func (l *CabinLayout) Encode() ([]byte, error) {
	return json.Marshal(l)
}

// Validate checks structural soundness: at least one row, positive row
// numbers, no duplicate row numbers, non-empty column letters, and no
// duplicate columns within a row.
func (l *CabinLayout) Validate() error {
	if len(l.Rows) == 0 {
		return ErrEmptyLayout
	}
	seenRows := make(map[int]struct{}, len(l.Rows))
	for _, row := range l.Rows {
		if row.Number <= 0 {
			return fmt.Errorf("row number %d must be positive", row.Number)
		}
		if _, dup := seenRows[row.Number]; dup {
			return fmt.Errorf("duplicate row %d in layout", row.Number)
		}
		seenRows[row.Number] = struct{}{}
		if row.CabinClass == "" {
			return fmt.Errorf("row %d has no cabin class", row.Number)
		}
		seenCols := make(map[string]struct{}, len(row.Seats))
		for _, seat := range row.Seats {
			if seat.Column == "" {
				return fmt.Errorf("row %d has a seat with no column letter", row.Number)
			}
			if _, dup := seenCols[seat.Column]; dup {
				return fmt.Errorf("duplicate column %s in row %d", seat.Column, row.Number)
			}
			seenCols[seat.Column] = struct{}{}
		}
	}
	return nil
}

// SeatCountsByClass sums seat definitions per cabin class across all rows.
func (l *CabinLayout) SeatCountsByClass() map[model.CabinClass]int {
	counts := make(map[model.CabinClass]int)
	for _, row := range l.Rows {
		counts[row.CabinClass] += len(row.Seats)
	}
	return counts
}

// TotalSeats is the number of physical seats the layout yields.
func (l *CabinLayout) TotalSeats() int {
	total := 0
	for _, row := range l.Rows {
		total += len(row.Seats)
	}
	return total
}
