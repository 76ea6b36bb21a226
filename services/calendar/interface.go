// Package calendar adapts the Google Calendar API for the booking flow
// and the diagnostics. The calendar service owns the truth about busy
// time; nothing is cached here.
package calendar

import (
	"context"
	"time"

	"clinicbot/models"
)

// Gateway is the calendar surface the rest of the system depends on.
// Implementations return errors tagged with a Kind (see errors.go).
type Gateway interface {
	// ListBusy fetches events overlapping [from, to) and returns them as
	// busy intervals in the gateway's business timezone. All-day events
	// are expanded to cover their whole day.
	ListBusy(ctx context.Context, from, to time.Time) ([]models.Interval, error)

	// ListEvents fetches events overlapping [from, to) with their
	// metadata, ordered by start time.
	ListEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error)

	// InsertEvent writes a new event.
	InsertEvent(ctx context.Context, in models.EventInput) (*models.CreatedEvent, error)

	// DeleteEvent removes an event by id.
	DeleteEvent(ctx context.Context, eventID string) error

	// GetCalendar looks up the target calendar directly, without going
	// through the account's calendar list.
	GetCalendar(ctx context.Context) (*models.CalendarInfo, error)

	// RegisterCalendar adds the target calendar to the account's
	// calendar list. Best-effort: callers may ignore the error.
	RegisterCalendar(ctx context.Context) error

	// ListCalendars enumerates the calendars visible to the account.
	ListCalendars(ctx context.Context) ([]models.CalendarInfo, error)
}
