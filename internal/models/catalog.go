package models

// ShiftTemplate is a named, bounded time window constraining where slots of
// that shift may be placed. Immutable reference data, loaded once per session.
// Start and End are minutes since midnight.
type ShiftTemplate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// EventTypeCategory is a named, colored slot category. Immutable reference data.
type EventTypeCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ShiftBounds is the inclusive window a shift-bound slot must fit inside.
type ShiftBounds struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Catalog bundles the reference data the calendar engine validates against.
type Catalog struct {
	Shifts     []ShiftTemplate     `json:"shifts"`
	EventTypes []EventTypeCategory `json:"event_types"`
}

// ShiftBounds returns the bounds for a shift id, or nil when the id is empty
// or unknown. Nil means unconstrained: a missing catalog never blocks
// scheduling, it only stops constraining it.
func (c *Catalog) ShiftBounds(shiftID string) *ShiftBounds {
	if c == nil || shiftID == "" {
		return nil
	}
	for i := range c.Shifts {
		if c.Shifts[i].ID == shiftID {
			return &ShiftBounds{Start: c.Shifts[i].Start, End: c.Shifts[i].End}
		}
	}
	return nil
}

// Shift returns the shift template for an id, or nil.
func (c *Catalog) Shift(shiftID string) *ShiftTemplate {
	if c == nil {
		return nil
	}
	for i := range c.Shifts {
		if c.Shifts[i].ID == shiftID {
			return &c.Shifts[i]
		}
	}
	return nil
}

// EventType returns the event type category for an id, or nil.
func (c *Catalog) EventType(typeID string) *EventTypeCategory {
	if c == nil {
		return nil
	}
	for i := range c.EventTypes {
		if c.EventTypes[i].ID == typeID {
			return &c.EventTypes[i]
		}
	}
	return nil
}
