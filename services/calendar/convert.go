package calendar

import (
	"fmt"
	"time"

	"clinicbot/models"

	gcal "google.golang.org/api/calendar/v3"
)

const allDayLayout = "2006-01-02"

// intervalFromEvent converts an event's start/end into a half-open busy
// interval in loc. Timed events carry RFC3339 dateTime values; all-day
// events carry date-only values with an exclusive end date, and expand
// to cover their whole days so a day blocked by an all-day event offers
// no slots.
func intervalFromEvent(start, end *gcal.EventDateTime, loc *time.Location) (models.Interval, bool, error) {
	if start == nil || end == nil {
		return models.Interval{}, false, &Error{Kind: KindMalformed, Op: "parse event", Err: fmt.Errorf("event has no start or end")}
	}

	if start.DateTime != "" && end.DateTime != "" {
		s, err := time.Parse(time.RFC3339, start.DateTime)
		if err != nil {
			return models.Interval{}, false, &Error{Kind: KindMalformed, Op: "parse event start", Err: err}
		}
		e, err := time.Parse(time.RFC3339, end.DateTime)
		if err != nil {
			return models.Interval{}, false, &Error{Kind: KindMalformed, Op: "parse event end", Err: err}
		}
		return models.Interval{Start: s.In(loc), End: e.In(loc)}, false, nil
	}

	if start.Date != "" && end.Date != "" {
		s, err := time.ParseInLocation(allDayLayout, start.Date, loc)
		if err != nil {
			return models.Interval{}, false, &Error{Kind: KindMalformed, Op: "parse all-day start", Err: err}
		}
		e, err := time.ParseInLocation(allDayLayout, end.Date, loc)
		if err != nil {
			return models.Interval{}, false, &Error{Kind: KindMalformed, Op: "parse all-day end", Err: err}
		}
		return models.Interval{Start: s, End: e}, true, nil
	}

	return models.Interval{}, false, &Error{Kind: KindMalformed, Op: "parse event", Err: fmt.Errorf("event has neither dateTime nor date")}
}
