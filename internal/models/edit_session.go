package models

// SessionState tracks the edit lifecycle for one doctor-date.
type SessionState string

const (
	SessionIdle       SessionState = "IDLE"
	SessionDayOpen    SessionState = "DAY_OPEN"
	SessionEditing    SessionState = "EDITING"
	SessionSaving     SessionState = "SAVING"
	SessionSaveFailed SessionState = "SAVE_FAILED"
)

// DraftSlot is one uncommitted entry in a date's edit buffer.
//
// BackendID decides the save instruction: set and not removed → update, empty
// and not removed → insert, set and removed → explicit delete. A removed draft
// that never had a backend id simply disappears; the server never knew of it.
type DraftSlot struct {
	LocalID   string `json:"local_id"`
	BackendID string `json:"backend_id,omitempty"`
	Slot      Slot   `json:"slot"`
	Removed   bool   `json:"removed"`
}

// EditSessionInfo is a read-only summary of an open session.
type EditSessionInfo struct {
	DoctorID   string       `json:"doctor_id"`
	Date       string       `json:"date"`
	State      SessionState `json:"state"`
	Dirty      bool         `json:"dirty"`
	DraftCount int          `json:"draft_count"`
}
