package dto

import (
	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

// ScheduleSlotDTO is the wire form of a slot. Times are 24-hour "HH:MM:SS"
// strings; all internal computation uses minutes since midnight.
type ScheduleSlotDTO struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Notes           string `json:"notes,omitempty"`
	MaxAppointments int    `json:"max_appointments,omitempty"`
	TypeName        string `json:"type_name,omitempty"`
	TypeColor       string `json:"type_color,omitempty"`
	ShiftRef        string `json:"shift_ref,omitempty"`
	EventTypeRef    string `json:"event_type_ref,omitempty"`
	Origin          string `json:"origin,omitempty"`
}

// ScheduleDayDTO is the wire form of one day in the rolling window.
type ScheduleDayDTO struct {
	Date        string            `json:"date"`
	Weekday     string            `json:"weekday"`
	IsAvailable bool              `json:"is_available"`
	Slots       []ScheduleSlotDTO `json:"slots"`
}

// SaveEventDTO is one entry of a replace-for-date save request.
type SaveEventDTO struct {
	ID              string `json:"id,omitempty"`
	Date            string `json:"date" validate:"required"`
	Title           string `json:"title"`
	TypeName        string `json:"type_name,omitempty"`
	TypeColor       string `json:"type_color,omitempty"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	Notes           string `json:"notes"`
	MaxAppointments int    `json:"max_appointments"`
	ShiftRef        string `json:"shift_ref,omitempty"`
	EventTypeRef    string `json:"event_type_ref,omitempty"`
}

// SaveScheduleRequest fully specifies the intended slot set for one
// doctor-date. Events present replace the server copy; persisted slots absent
// from the list are deleted.
type SaveScheduleRequest struct {
	DoctorID string         `json:"doctor_id" validate:"required"`
	Date     string         `json:"date" validate:"required"`
	Events   []SaveEventDTO `json:"events" validate:"dive"`
}

// SlotToDTO converts an internal slot to its wire form, resolving catalog
// labels when a catalog is provided.
func SlotToDTO(slot models.Slot, catalog *models.Catalog) ScheduleSlotDTO {
	out := ScheduleSlotDTO{
		ID:              slot.ID,
		Title:           slot.Title,
		StartTime:       timeconv.MinutesToWire(slot.Start),
		EndTime:         timeconv.MinutesToWire(slot.End),
		Notes:           slot.Notes,
		MaxAppointments: slot.MaxAppointments,
		ShiftRef:        slot.ShiftTemplateID,
		EventTypeRef:    slot.EventTypeID,
		Origin:          string(slot.Origin),
	}
	if et := catalog.EventType(slot.EventTypeID); et != nil {
		out.TypeName = et.Name
		out.TypeColor = et.Color
	}
	return out
}

// DayToDTO converts a schedule day to its wire form.
func DayToDTO(day models.ScheduleDay, catalog *models.Catalog) ScheduleDayDTO {
	out := ScheduleDayDTO{
		Date:        day.Date,
		Weekday:     day.Weekday,
		IsAvailable: day.IsAvailable,
		Slots:       make([]ScheduleSlotDTO, 0, len(day.Slots)),
	}
	for _, slot := range day.Slots {
		out.Slots = append(out.Slots, SlotToDTO(slot, catalog))
	}
	return out
}
