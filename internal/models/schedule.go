package models

// SlotOrigin records which side of the store/draft merge a slot came from.
type SlotOrigin string

const (
	SlotOriginServer SlotOrigin = "server"
	SlotOriginLocal  SlotOrigin = "local"
)

// Slot is a single time-bound event on a doctor's calendar for one date.
// Start and End are minutes since midnight forming the half-open interval
// [Start, End); time strings exist only at the HTTP/DB boundary.
type Slot struct {
	// ID is the slot's identity in merge and validation: the backend id once
	// persisted, otherwise the draft's local id.
	ID              string     `json:"id"`
	DoctorID        string     `json:"doctor_id"`
	Date            string     `json:"date"`
	Title           string     `json:"title"`
	ShiftTemplateID string     `json:"shift_template_id,omitempty"`
	EventTypeID     string     `json:"event_type_id,omitempty"`
	Start           int        `json:"start"`
	End             int        `json:"end"`
	MaxAppointments int        `json:"max_appointments"`
	Notes           string     `json:"notes"`
	Origin          SlotOrigin `json:"origin"`
}

// Overlaps reports half-open interval intersection with another slot.
// Slots sharing an exact boundary do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	return s.Start < other.End && other.Start < s.End
}

// ScheduleDay is one calendar day inside the fetched rolling window.
type ScheduleDay struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	IsAvailable bool   `json:"is_available"`
	Slots       []Slot `json:"slots"`
}

// DisplaySlot is a slot joined with catalog labels, ready for presentation.
// Produced by a pure resolve step, never on the mutation path.
type DisplaySlot struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	ShiftName       string `json:"shift_name,omitempty"`
	TypeName        string `json:"type_name,omitempty"`
	TypeColor       string `json:"type_color,omitempty"`
	MaxAppointments int    `json:"max_appointments"`
	Origin          string `json:"origin"`
}

// ValidationReason is a machine-checkable slot rejection cause.
type ValidationReason string

const (
	ReasonInvalidRange     ValidationReason = "INVALID_RANGE"
	ReasonOutOfShiftBounds ValidationReason = "OUT_OF_SHIFT_BOUNDS"
	ReasonOverlap          ValidationReason = "OVERLAP"
)

// SlotValidationError reports why a slot mutation or save was rejected.
// Rejections are local and recoverable; they never end the edit session.
type SlotValidationError struct {
	Reason     ValidationReason `json:"reason"`
	SlotID     string           `json:"slot_id"`
	ConflictID string           `json:"conflict_id,omitempty"`
	Message    string           `json:"message"`
}

// Error implements the error interface.
func (e *SlotValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// SaveBatch is a replace-for-date instruction set: it fully specifies the
// intended slot set for one doctor-date, including explicit deletes.
type SaveBatch struct {
	DoctorID string   `json:"doctor_id"`
	Date     string   `json:"date"`
	Inserts  []Slot   `json:"inserts"`
	Updates  []Slot   `json:"updates"`
	Deletes  []string `json:"deletes"`
}

// Empty reports whether the batch carries no instructions at all.
func (b SaveBatch) Empty() bool {
	return len(b.Inserts) == 0 && len(b.Updates) == 0 && len(b.Deletes) == 0
}
