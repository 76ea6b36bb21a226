// Package schedule computes bookable time slots for a business day.
package schedule

import (
	"time"

	"clinicbot/models"
)

// FreeSlots returns the chronological sequence of free slots of the
// given width for day, tiled from the window start. A candidate slot is
// dropped when it overlaps any busy interval, even partially. A
// trailing slot that does not fit fully inside the window is dropped.
//
// The function is pure: it reads no clock and touches no I/O, so a day
// in the past tiles exactly like any other day. Rejecting past dates is
// the conversation layer's concern.
func FreeSlots(day time.Time, window models.DayWindow, width time.Duration, busy []models.Interval) []models.Slot {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	windowEnd := midnight.Add(window.End)

	var slots []models.Slot
	for start := midnight.Add(window.Start); !start.Add(width).After(windowEnd); start = start.Add(width) {
		candidate := models.Interval{Start: start, End: start.Add(width)}
		if !overlapsAny(candidate, busy) {
			slots = append(slots, models.Slot{Interval: candidate})
		}
	}
	return slots
}

// Labels renders slot start times as the HH:MM strings used on keyboards.
func Labels(slots []models.Slot) []string {
	labels := make([]string, 0, len(slots))
	for _, s := range slots {
		labels = append(labels, s.Label())
	}
	return labels
}

// Contains reports whether some slot in slots starts at the given HH:MM label.
func Contains(slots []models.Slot, label string) bool {
	for _, s := range slots {
		if s.Label() == label {
			return true
		}
	}
	return false
}

func overlapsAny(candidate models.Interval, busy []models.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
