package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

// CatalogRepository loads shift template and event type reference data.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type shiftTemplateRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

// Load fetches both catalogs in one shot. Shift bounds arrive as "HH:MM:SS"
// strings and are converted to minutes here; a malformed bound widens to the
// full day instead of failing the load.
func (r *CatalogRepository) Load(ctx context.Context) (*models.Catalog, error) {
	const shiftQuery = `SELECT id, name, start_time::text AS start_time, end_time::text AS end_time
FROM shift_templates ORDER BY start_time ASC, name ASC`
	var shiftRows []shiftTemplateRow
	if err := r.db.SelectContext(ctx, &shiftRows, shiftQuery); err != nil {
		return nil, fmt.Errorf("load shift templates: %w", err)
	}

	const typeQuery = `SELECT id, name, color FROM event_type_categories ORDER BY name ASC`
	var eventTypes []models.EventTypeCategory
	if err := r.db.SelectContext(ctx, &eventTypes, typeQuery); err != nil {
		return nil, fmt.Errorf("load event types: %w", err)
	}

	catalog := &models.Catalog{
		Shifts:     make([]models.ShiftTemplate, 0, len(shiftRows)),
		EventTypes: eventTypes,
	}
	for _, row := range shiftRows {
		start, okStart := timeconv.WireToMinutes(row.StartTime)
		end, okEnd := timeconv.WireToMinutes(row.EndTime)
		if !okStart {
			start = 0
		}
		if !okEnd {
			end = timeconv.MinutesPerDay
		}
		catalog.Shifts = append(catalog.Shifts, models.ShiftTemplate{
			ID:    row.ID,
			Name:  row.Name,
			Start: start,
			End:   end,
		})
	}
	return catalog, nil
}
