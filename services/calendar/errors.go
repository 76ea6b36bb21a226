package calendar

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Kind is the closed set of failure categories the gateway reports.
// Callers switch on Kind instead of inspecting raw API payloads.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: the calendar or event id does not exist.
	KindNotFound
	// KindForbidden: the service identity lacks access; the calendar
	// must be shared with it.
	KindForbidden
	// KindRateLimited: the API asked us to back off.
	KindRateLimited
	// KindTransient: network failures and 5xx service errors.
	KindTransient
	// KindMalformed: the API answered with something we could not parse.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate limited"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a gateway failure tagged with its Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("calendar: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps an error from the Google Calendar client into a tagged
// gateway Error. A nil err returns nil.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &Error{Kind: kindForStatus(gerr.Code), Op: op, Err: err}
	}
	// Anything below the API layer (DNS, timeouts, connection resets)
	// is worth retrying later.
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// KindOf extracts the Kind from an error chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool  { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }
