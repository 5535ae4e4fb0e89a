package service

import (
	"fmt"

	"github.com/noah-isme/hospital-ops-api/internal/models"
	"github.com/noah-isme/hospital-ops-api/pkg/timeconv"
)

// BoundsResolver returns the shift bounds for a shift template id, or nil for
// unconstrained. A failed catalog load resolves everything to nil so slots
// stay editable.
type BoundsResolver func(shiftID string) *models.ShiftBounds

// ValidateSlot checks one candidate against its day siblings. It returns nil
// on success or a structured rejection; it never mutates its inputs.
//
// Checks run cheapest first: range well-formedness, then shift containment,
// then pairwise overlap against siblings with a different id. Slots sharing
// an exact boundary do not overlap: intervals are half-open [start, end).
func ValidateSlot(candidate models.Slot, siblings []models.Slot, bounds *models.ShiftBounds) *models.SlotValidationError {
	if candidate.Start >= candidate.End {
		return &models.SlotValidationError{
			Reason: models.ReasonInvalidRange,
			SlotID: candidate.ID,
			Message: fmt.Sprintf("slot must start before it ends (%s >= %s)",
				timeconv.MinutesTo24(candidate.Start), timeconv.MinutesTo24(candidate.End)),
		}
	}

	if candidate.ShiftTemplateID != "" && bounds != nil {
		if candidate.Start < bounds.Start || candidate.End > bounds.End {
			return &models.SlotValidationError{
				Reason: models.ReasonOutOfShiftBounds,
				SlotID: candidate.ID,
				Message: fmt.Sprintf("slot %s-%s falls outside shift window %s-%s",
					timeconv.MinutesTo24(candidate.Start), timeconv.MinutesTo24(candidate.End),
					timeconv.MinutesTo24(bounds.Start), timeconv.MinutesTo24(bounds.End)),
			}
		}
	}

	for _, sibling := range siblings {
		if sibling.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(sibling) {
			return &models.SlotValidationError{
				Reason:     models.ReasonOverlap,
				SlotID:     candidate.ID,
				ConflictID: sibling.ID,
				Message: fmt.Sprintf("slot %s-%s overlaps %s-%s",
					timeconv.MinutesTo24(candidate.Start), timeconv.MinutesTo24(candidate.End),
					timeconv.MinutesTo24(sibling.Start), timeconv.MinutesTo24(sibling.End)),
			}
		}
	}

	return nil
}

// ValidateDay runs every slot through ValidateSlot against the rest of the
// day. It is the gate every save must pass; the first rejection is returned
// with the offending slot id attached.
func ValidateDay(slots []models.Slot, bounds BoundsResolver) *models.SlotValidationError {
	for i := range slots {
		var b *models.ShiftBounds
		if bounds != nil {
			b = bounds(slots[i].ShiftTemplateID)
		}
		if err := ValidateSlot(slots[i], slots, b); err != nil {
			return err
		}
	}
	return nil
}
