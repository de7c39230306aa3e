package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kafaat/ais-aviation-system-sub010/internal/layout"
	"github.com/kafaat/ais-aviation-system-sub010/internal/model"
)

// SeatMapTemplate is a reusable seat layout definition for an aircraft
// type/airline pair, independent of any specific flight. The cabin layout is
// stored as a JSON blob and decoded through the layout package on read, so
// this is the only place raw layout bytes are handled.
type SeatMapTemplate struct {
	ID                  uint64
	Airline             string
	AircraftType        string
	ConfigName          string
	Layout              *layout.CabinLayout
	FirstCount          int
	BusinessCount       int
	PremiumEconomyCount int
	EconomyCount        int
	HasWifi             bool
	HasPower            bool
	HasEntertainment    bool
	Active              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CabinCounts returns the declared per-class seat counts keyed by cabin class.
func (t *SeatMapTemplate) CabinCounts() map[model.CabinClass]int {
	return map[model.CabinClass]int{
		model.CabinFirst:          t.FirstCount,
		model.CabinBusiness:       t.BusinessCount,
		model.CabinPremiumEconomy: t.PremiumEconomyCount,
		model.CabinEconomy:        t.EconomyCount,
	}
}

// TemplateRepo manages persistence for seat map templates.
type TemplateRepo struct {
	db *sql.DB
}

// NewTemplateRepo constructs a TemplateRepo with the given DB handle.
func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// DB exposes the underlying handle so handlers can begin transactions that
// span multiple repositories.
func (r *TemplateRepo) DB() *sql.DB { return r.db }

const templateColumns = `id, airline, aircraft_type, config_name, layout,
	first_count, business_count, premium_economy_count, economy_count,
	has_wifi, has_power, has_entertainment, active, created_at, updated_at`

// Create inserts a new template and populates the generated ID and timestamp
// fields on the passed value. The layout must already be validated.
func (r *TemplateRepo) Create(ctx context.Context, t *SeatMapTemplate) error {
	blob, err := t.Layout.Encode()
	if err != nil {
		return err
	}
	const q = `INSERT INTO seat_map_templates
		(airline, aircraft_type, config_name, layout,
		 first_count, business_count, premium_economy_count, economy_count,
		 has_wifi, has_power, has_entertainment, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		t.Airline, t.AircraftType, t.ConfigName, blob,
		t.FirstCount, t.BusinessCount, t.PremiumEconomyCount, t.EconomyCount,
		t.HasWifi, t.HasPower, t.HasEntertainment, t.Active,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	// Re-read to pick up DB-default timestamps.
	stored, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *stored
	return nil
}

// Update persists the full template record under the given ID. Handlers load
// the current record, apply the patch, re-validate, and call Update so the
// write is a single statement.
func (r *TemplateRepo) Update(ctx context.Context, t *SeatMapTemplate) error {
	blob, err := t.Layout.Encode()
	if err != nil {
		return err
	}
	const q = `UPDATE seat_map_templates
		SET airline = ?, aircraft_type = ?, config_name = ?, layout = ?,
		    first_count = ?, business_count = ?, premium_economy_count = ?, economy_count = ?,
		    has_wifi = ?, has_power = ?, has_entertainment = ?, active = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.Airline, t.AircraftType, t.ConfigName, blob,
		t.FirstCount, t.BusinessCount, t.PremiumEconomyCount, t.EconomyCount,
		t.HasWifi, t.HasPower, t.HasEntertainment, t.Active,
		t.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero for a no-op update; confirm existence.
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves one template with its layout decoded.
func (r *TemplateRepo) GetByID(ctx context.Context, id uint64) (*SeatMapTemplate, error) {
	const q = `SELECT ` + templateColumns + ` FROM seat_map_templates WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	t, err := scanTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns templates filtered by active flag and, when non-empty, by
// airline and aircraft type, ordered by aircraft type then configuration
// name.
func (r *TemplateRepo) List(ctx context.Context, activeOnly bool, airline, aircraftType string) ([]SeatMapTemplate, error) {
	q := `SELECT ` + templateColumns + ` FROM seat_map_templates WHERE 1=1`
	args := make([]interface{}, 0, 3)
	if activeOnly {
		q += ` AND active = 1`
	}
	if airline != "" {
		q += ` AND airline = ?`
		args = append(args, airline)
	}
	if aircraftType != "" {
		q += ` AND aircraft_type = ?`
		args = append(args, aircraftType)
	}
	q += ` ORDER BY aircraft_type, config_name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeatMapTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanTemplate decodes one template row, including the layout blob. The scan
// argument abstracts over sql.Row and sql.Rows.
func scanTemplate(scan func(dest ...interface{}) error) (*SeatMapTemplate, error) {
	var t SeatMapTemplate
	var blob []byte
	if err := scan(
		&t.ID, &t.Airline, &t.AircraftType, &t.ConfigName, &blob,
		&t.FirstCount, &t.BusinessCount, &t.PremiumEconomyCount, &t.EconomyCount,
		&t.HasWifi, &t.HasPower, &t.HasEntertainment, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l, err := layout.Parse(blob)
	if err != nil {
		return nil, err
	}
	t.Layout = l
	return &t, nil
}
