package timeconv

import (
	"fmt"
	"strconv"
	"strings"
)

// Period marks the half of the day a 12-hour clock value belongs to.
type Period string

const (
	AM Period = "AM"
	PM Period = "PM"
)

// MinutesPerDay bounds minute-of-day values to [0, MinutesPerDay).
const MinutesPerDay = 24 * 60

// Clock12 is a 12-hour clock reading.
type Clock12 struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Period Period `json:"period"`
}

// Noon is the fallback used when an upstream time string cannot be parsed.
// The calendar must stay renderable even when reference data is partially
// malformed, so conversion degrades instead of failing.
var Noon = Clock12{Hour: 12, Minute: 0, Period: PM}

// To12 parses a 24-hour "HH:MM" or "HH:MM:SS" string into a 12-hour reading.
// Malformed input yields Noon.
func To12(value string) Clock12 {
	minutes, ok := WireToMinutes(value)
	if !ok {
		return Noon
	}
	return MinutesTo12(minutes)
}

// To24 formats a 12-hour reading as a 24-hour "HH:MM" string.
func To24(c Clock12) string {
	return MinutesTo24(ToMinutes(c))
}

// ToMinutes converts a 12-hour reading to minutes since midnight.
func ToMinutes(c Clock12) int {
	hour := c.Hour % 12
	if c.Period == PM {
		hour += 12
	}
	minutes := hour*60 + c.Minute
	if minutes < 0 || minutes >= MinutesPerDay {
		return 0
	}
	return minutes
}

// MinutesTo12 converts minutes since midnight to a 12-hour reading.
func MinutesTo12(minutes int) Clock12 {
	minutes = clamp(minutes)
	hour := minutes / 60
	c := Clock12{Minute: minutes % 60, Period: AM}
	if hour >= 12 {
		c.Period = PM
	}
	c.Hour = hour % 12
	if c.Hour == 0 {
		c.Hour = 12
	}
	return c
}

// MinutesTo24 formats minutes since midnight as "HH:MM".
func MinutesTo24(minutes int) string {
	minutes = clamp(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinutesToWire formats minutes since midnight as the "HH:MM:SS" string used
// on the HTTP and database boundaries.
func MinutesToWire(minutes int) string {
	return MinutesTo24(minutes) + ":00"
}

// WireToMinutes parses a 24-hour "HH:MM" or "HH:MM:SS" string into minutes
// since midnight. The second return value reports whether the input was a
// well-formed clock value; callers decide how to degrade.
func WireToMinutes(value string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	hour, err := parseComponent(parts[0], 23)
	if err != nil {
		return 0, false
	}
	minute, err := parseComponent(parts[1], 59)
	if err != nil {
		return 0, false
	}
	if len(parts) == 3 {
		if _, err := parseComponent(parts[2], 59); err != nil {
			return 0, false
		}
	}
	return hour*60 + minute, true
}

func parseComponent(raw string, max int) (int, error) {
	if raw == "" || len(raw) > 2 {
		return 0, fmt.Errorf("bad clock component %q", raw)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > max {
		return 0, fmt.Errorf("clock component %d out of range", n)
	}
	return n, nil
}

func clamp(minutes int) int {
	if minutes < 0 {
		return 0
	}
	if minutes >= MinutesPerDay {
		return MinutesPerDay - 1
	}
	return minutes
}
