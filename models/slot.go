package models

import (
	"fmt"
	"time"
)

// Slot is a fixed-width bookable interval within the business day window.
type Slot struct {
	Interval
}

// Label renders the slot start as the HH:MM string shown on keyboards.
func (s Slot) Label() string {
	return s.Start.Format("15:04")
}

// DayWindow is the daily business span, expressed as offsets from
// midnight in the business timezone (e.g. 9h -> 09:00).
type DayWindow struct {
	Start time.Duration
	End   time.Duration
}

// ParseDayWindow builds a DayWindow from two HH:MM strings.
func ParseDayWindow(start, end string) (DayWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return DayWindow{}, fmt.Errorf("window start: %w", err)
	}
	e, err := parseClock(end)
	if err != nil {
		return DayWindow{}, fmt.Errorf("window end: %w", err)
	}
	if e <= s {
		return DayWindow{}, fmt.Errorf("window end %s is not after start %s", end, start)
	}
	return DayWindow{Start: s, End: e}, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, fmt.Errorf("bad clock value %q, want HH:MM: %w", v, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
