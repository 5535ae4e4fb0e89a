package service

import (
	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

// ResolveDisplay joins a slot with its catalog labels. It is a pure function
// kept off the mutation and validation paths; unknown or missing catalog ids
// simply leave the labels empty.
func ResolveDisplay(slot models.Slot, catalog *models.Catalog) models.DisplaySlot {
	out := models.DisplaySlot{
		ID:              slot.ID,
		Title:           slot.Title,
		StartTime:       timeconv.MinutesTo24(slot.Start),
		EndTime:         timeconv.MinutesTo24(slot.End),
		MaxAppointments: slot.MaxAppointments,
		Origin:          string(slot.Origin),
	}
	if shift := catalog.Shift(slot.ShiftTemplateID); shift != nil {
		out.ShiftName = shift.Name
	}
	if et := catalog.EventType(slot.EventTypeID); et != nil {
		out.TypeName = et.Name
		out.TypeColor = et.Color
	}
	return out
}
