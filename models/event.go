package models

import "time"

// CalendarEvent is a calendar entry as read back from the calendar service.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
}

// EventInput describes an event to be written to the calendar.
type EventInput struct {
	Summary         string
	Description     string
	Start           time.Time
	End             time.Time
	TimeZone        string
	ReminderMinutes int // popup reminder offset; 0 means calendar defaults
}

// CreatedEvent is the calendar service's acknowledgement of a write.
type CreatedEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// CalendarInfo is calendar metadata used by the diagnostics.
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	AccessRole string `json:"accessRole,omitempty"`
	Primary    bool   `json:"primary,omitempty"`
}
