package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

// ScheduleRepository persists per-doctor calendar slots and day availability.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type scheduleDayRow struct {
	Date        string `db:"date"`
	IsAvailable bool   `db:"is_available"`
}

type scheduleSlotRow struct {
	ID              string         `db:"id"`
	DoctorID        string         `db:"doctor_id"`
	Date            string         `db:"date"`
	Title           string         `db:"title"`
	ShiftTemplateID sql.NullString `db:"shift_template_id"`
	EventTypeID     sql.NullString `db:"event_type_id"`
	StartTime       string         `db:"start_time"`
	EndTime         string         `db:"end_time"`
	MaxAppointments int            `db:"max_appointments"`
	Notes           string         `db:"notes"`
}

// FetchWindow returns the days that carry data inside [from, to], ordered by
// date. Dates without a row are synthesised by the schedule store. Slot time
// strings are converted to minutes at this boundary; a malformed value
// degrades to noon so a partially broken row still renders.
func (r *ScheduleRepository) FetchWindow(ctx context.Context, doctorID, from, to string) ([]models.ScheduleDay, error) {
	const dayQuery = `SELECT to_char(date, 'YYYY-MM-DD') AS date, is_available
FROM doctor_schedule_days WHERE doctor_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date ASC`
	var dayRows []scheduleDayRow
	if err := r.db.SelectContext(ctx, &dayRows, dayQuery, doctorID, from, to); err != nil {
		return nil, fmt.Errorf("fetch schedule days: %w", err)
	}

	const slotQuery = `SELECT id, doctor_id, to_char(date, 'YYYY-MM-DD') AS date, title,
shift_template_id, event_type_id, start_time::text AS start_time, end_time::text AS end_time,
max_appointments, notes
FROM doctor_schedule_slots WHERE doctor_id = $1 AND date BETWEEN $2 AND $3
ORDER BY date ASC, start_time ASC`
	var slotRows []scheduleSlotRow
	if err := r.db.SelectContext(ctx, &slotRows, slotQuery, doctorID, from, to); err != nil {
		return nil, fmt.Errorf("fetch schedule slots: %w", err)
	}

	byDate := make(map[string]*models.ScheduleDay)
	order := make([]string, 0, len(dayRows))
	for _, row := range dayRows {
		byDate[row.Date] = &models.ScheduleDay{
			Date:        row.Date,
			Weekday:     weekdayOf(row.Date),
			IsAvailable: row.IsAvailable,
		}
		order = append(order, row.Date)
	}
	for _, row := range slotRows {
		day, ok := byDate[row.Date]
		if !ok {
			day = &models.ScheduleDay{
				Date:        row.Date,
				Weekday:     weekdayOf(row.Date),
				IsAvailable: true,
			}
			byDate[row.Date] = day
			order = append(order, row.Date)
		}
		day.Slots = append(day.Slots, rowToSlot(row))
	}

	days := make([]models.ScheduleDay, 0, len(order))
	for _, date := range order {
		days = append(days, *byDate[date])
	}
	return days, nil
}

// ReplaceForDate applies a replace-for-date batch in one transaction:
// explicit deletes first, then updates, then inserts, then the day
// availability flag is recomputed. Partial application is never visible.
func (r *ScheduleRepository) ReplaceForDate(ctx context.Context, batch models.SaveBatch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace-for-date: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range batch.Deletes {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM doctor_schedule_slots WHERE id = $1 AND doctor_id = $2 AND date = $3`,
			id, batch.DoctorID, batch.Date); err != nil {
			return fmt.Errorf("delete slot %s: %w", id, err)
		}
	}

	const updateQuery = `UPDATE doctor_schedule_slots
SET title = $1, shift_template_id = $2, event_type_id = $3, start_time = $4, end_time = $5,
    max_appointments = $6, notes = $7, updated_at = $8
WHERE id = $9 AND doctor_id = $10 AND date = $11`
	now := time.Now().UTC()
	for _, slot := range batch.Updates {
		if _, err := tx.ExecContext(ctx, updateQuery,
			slot.Title,
			nullable(slot.ShiftTemplateID),
			nullable(slot.EventTypeID),
			timeconv.MinutesToWire(slot.Start),
			timeconv.MinutesToWire(slot.End),
			slot.MaxAppointments,
			slot.Notes,
			now,
			slot.ID, batch.DoctorID, batch.Date); err != nil {
			return fmt.Errorf("update slot %s: %w", slot.ID, err)
		}
	}

	const insertQuery = `INSERT INTO doctor_schedule_slots
(id, doctor_id, date, title, shift_template_id, event_type_id, start_time, end_time, max_appointments, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, slot := range batch.Inserts {
		if _, err := tx.ExecContext(ctx, insertQuery,
			uuid.NewString(),
			batch.DoctorID,
			batch.Date,
			slot.Title,
			nullable(slot.ShiftTemplateID),
			nullable(slot.EventTypeID),
			timeconv.MinutesToWire(slot.Start),
			timeconv.MinutesToWire(slot.End),
			slot.MaxAppointments,
			slot.Notes,
			now,
			now); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	const dayQuery = `INSERT INTO doctor_schedule_days (doctor_id, date, is_available)
VALUES ($1, $2, EXISTS (SELECT 1 FROM doctor_schedule_slots WHERE doctor_id = $1 AND date = $2))
ON CONFLICT (doctor_id, date) DO UPDATE
SET is_available = EXISTS (SELECT 1 FROM doctor_schedule_slots WHERE doctor_id = $1 AND date = $2)`
	if _, err := tx.ExecContext(ctx, dayQuery, batch.DoctorID, batch.Date); err != nil {
		return fmt.Errorf("refresh day availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace-for-date: %w", err)
	}
	return nil
}

func rowToSlot(row scheduleSlotRow) models.Slot {
	return models.Slot{
		ID:              row.ID,
		DoctorID:        row.DoctorID,
		Date:            row.Date,
		Title:           row.Title,
		ShiftTemplateID: row.ShiftTemplateID.String,
		EventTypeID:     row.EventTypeID.String,
		Start:           timeconv.ToMinutes(timeconv.To12(row.StartTime)),
		End:             timeconv.ToMinutes(timeconv.To12(row.EndTime)),
		MaxAppointments: row.MaxAppointments,
		Notes:           row.Notes,
		Origin:          models.SlotOriginServer,
	}
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func weekdayOf(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}
