package models

import "time"

// Interval is a half-open time range [Start, End). Busy periods sourced
// from the calendar and candidate slots both use this shape.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
// [A, B) and [C, D) overlap iff A < D && C < B.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}
