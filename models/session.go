package models

import "time"

// SessionState marks where a user is in the booking conversation.
type SessionState string

const (
	// StateAwaitingDate means the user has been shown the date keyboard
	// and no date is pending yet.
	StateAwaitingDate SessionState = "awaiting_date"
	// StateAwaitingTime means a date is pending and the user has been
	// shown the time keyboard.
	StateAwaitingTime SessionState = "awaiting_time"
)

// Session is a user's in-progress booking selection. It lives only in
// the session store and is cleared when a booking succeeds or the
// store's TTL expires it.
type Session struct {
	UserID    int64        `json:"user_id"`
	State     SessionState `json:"state"`
	Day       time.Time    `json:"day,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
