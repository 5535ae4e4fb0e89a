package dto

import "github.com/noah-isme/hospital-ops-api/internal/models"

// MonthCell is one date of the visible month grid, including the
// leading/trailing days of adjacent months that complete full weeks.
type MonthCell struct {
	Date        string               `json:"date"`
	Weekday     string               `json:"weekday"`
	InMonth     bool                 `json:"in_month"`
	IsAvailable bool                 `json:"is_available"`
	Editable    bool                 `json:"editable"`
	Slots       []models.DisplaySlot `json:"slots"`
	Overflow    int                  `json:"overflow"`
}

// MonthView is the display-ready projection of one doctor-month.
type MonthView struct {
	DoctorID string        `json:"doctor_id"`
	Year     int           `json:"year"`
	Month    int           `json:"month"`
	Weeks    [][]MonthCell `json:"weeks"`
}
