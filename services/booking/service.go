// Package booking drives the appointment conversation: pick a date,
// pick a free slot, confirm. Availability is always read fresh from the
// calendar; the only state held here is each user's pending selection.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinicbot/models"
	"clinicbot/services/calendar"
	ai "clinicbot/services/intelligence"
	"clinicbot/services/schedule"
	"clinicbot/services/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User identifies the person the bot is talking to.
type User struct {
	ID       int64
	ChatID   int64
	FullName string
	Username string
}

func (u User) displayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return "Client"
}

// Messenger sends replies back to the chat. Keyboard rows are plain
// labels; the transport layer renders them.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, rows [][]string) error
	SendRemoveKeyboard(chatID int64, text string) error
}

// Service is the conversation controller.
type Service struct {
	Gateway   calendar.Gateway
	Sessions  session.Store
	Messenger Messenger
	Responder ai.Responder

	Window    models.DayWindow
	SlotWidth time.Duration
	Location  *time.Location
	DaysAhead int

	Clock  func() time.Time
	Logger *zap.Logger
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().In(s.Location)
	}
	return time.Now().In(s.Location)
}

func (s *Service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.Location)
}

func (s *Service) daysAhead() int {
	if s.DaysAhead > 0 {
		return s.DaysAhead
	}
	return 7
}

// Start opens (or reopens) the booking flow with the date keyboard.
func (s *Service) Start(ctx context.Context, u User) error {
	if err := s.Sessions.Put(ctx, &models.Session{UserID: u.ID, State: models.StateAwaitingDate}); err != nil {
		return s.reportInternal(u, "save session", err)
	}
	return s.Messenger.SendKeyboard(u.ChatID, msgWelcome, dateKeyboard(s.today(), s.daysAhead()))
}

// Help replies with the command summary.
func (s *Service) Help(ctx context.Context, u User) error {
	return s.Messenger.SendText(u.ChatID, msgHelp)
}

// HandleText routes a non-command message. The pending session decides
// how much of the text shape matters: date- and time-shaped input feeds
// the booking flow, everything else goes to the fallback responder.
func (s *Service) HandleText(ctx context.Context, u User, text string) error {
	text = strings.TrimSpace(text)
	switch {
	case text == BackButton:
		return s.Start(ctx, u)
	case looksLikeDate(text):
		return s.ChooseDate(ctx, u, text)
	case looksLikeTime(text):
		return s.BookSlot(ctx, u, text)
	default:
		return s.fallback(ctx, u, text)
	}
}

func looksLikeDate(text string) bool {
	return len(text) == len(dateLayout) && strings.Count(text, "-") == 2
}

func looksLikeTime(text string) bool {
	return len(text) == 5 && strings.Contains(text, ":")
}

// ChooseDate stores the user's date selection and offers its free slots.
func (s *Service) ChooseDate(ctx context.Context, u User, text string) error {
	day, err := time.ParseInLocation(dateLayout, text, s.Location)
	if err != nil {
		return s.Messenger.SendText(u.ChatID, msgBadDateFormat)
	}
	if day.Before(s.today()) {
		return s.Messenger.SendText(u.ChatID, msgPastDate)
	}

	slots, err := s.freeSlots(ctx, day)
	if err != nil {
		s.Logger.Error("Failed to list availability",
			zap.Int64("userId", u.ID), zap.String("day", text), zap.Error(err))
		return s.Messenger.SendText(u.ChatID, msgCalendarDown)
	}

	if len(slots) == 0 {
		if err := s.Sessions.Put(ctx, &models.Session{UserID: u.ID, State: models.StateAwaitingDate}); err != nil {
			return s.reportInternal(u, "save session", err)
		}
		return s.Messenger.SendKeyboard(u.ChatID, msgDayFull(text), dateKeyboard(s.today(), s.daysAhead()))
	}

	if err := s.Sessions.Put(ctx, &models.Session{UserID: u.ID, State: models.StateAwaitingTime, Day: day}); err != nil {
		return s.reportInternal(u, "save session", err)
	}
	return s.Messenger.SendKeyboard(u.ChatID, msgPickTime(text, len(slots)), timeKeyboard(schedule.Labels(slots)))
}

// BookSlot re-validates the requested slot against a fresh busy set and
// writes the appointment if it is still free. A slot lost between
// listing and booking is a normal outcome and re-prompts, not an error.
// Between the re-check and the insert there is still a window in which
// another writer can take the slot; the calendar API offers no way to
// close it, so a concurrent double-booking remains possible.
func (s *Service) BookSlot(ctx context.Context, u User, label string) error {
	tod, err := time.Parse("15:04", label)
	if err != nil {
		return s.Messenger.SendText(u.ChatID, msgBadTimeFormat)
	}

	sess, err := s.Sessions.Get(ctx, u.ID)
	if err != nil {
		return s.reportInternal(u, "load session", err)
	}
	if sess == nil || sess.State != models.StateAwaitingTime || sess.Day.IsZero() {
		if err := s.Sessions.Put(ctx, &models.Session{UserID: u.ID, State: models.StateAwaitingDate}); err != nil {
			return s.reportInternal(u, "save session", err)
		}
		return s.Messenger.SendKeyboard(u.ChatID, msgPickDateFirst, dateKeyboard(s.today(), s.daysAhead()))
	}
	day := sess.Day.In(s.Location)

	// Fresh fetch: the slot list shown earlier may be stale.
	slots, err := s.freeSlots(ctx, day)
	if err != nil {
		s.Logger.Error("Failed to re-check availability",
			zap.Int64("userId", u.ID), zap.Error(err))
		return s.Messenger.SendText(u.ChatID, msgCalendarDown)
	}
	if !schedule.Contains(slots, label) {
		if len(slots) > 0 {
			return s.Messenger.SendKeyboard(u.ChatID, msgSlotTaken, timeKeyboard(schedule.Labels(slots)))
		}
		if err := s.Sessions.Put(ctx, &models.Session{UserID: u.ID, State: models.StateAwaitingDate}); err != nil {
			return s.reportInternal(u, "save session", err)
		}
		return s.Messenger.SendKeyboard(u.ChatID, msgDayFull(day.Format(dateLayout)), dateKeyboard(s.today(), s.daysAhead()))
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, s.Location)
	end := start.Add(s.SlotWidth)
	reference := uuid.NewString()

	created, err := s.Gateway.InsertEvent(ctx, models.EventInput{
		Summary:         fmt.Sprintf("Appointment: %s", u.displayName()),
		Description:     s.eventDescription(u, reference),
		Start:           start,
		End:             end,
		TimeZone:        s.Location.String(),
		ReminderMinutes: 30,
	})
	if err != nil {
		s.Logger.Error("Failed to create appointment",
			zap.Int64("userId", u.ID),
			zap.Time("start", start),
			zap.String("kind", calendar.KindOf(err).String()),
			zap.Error(err))
		return s.Messenger.SendText(u.ChatID, msgTryLater)
	}

	if err := s.Sessions.Clear(ctx, u.ID); err != nil {
		s.Logger.Warn("Failed to clear session after booking",
			zap.Int64("userId", u.ID), zap.Error(err))
	}

	s.Logger.Info("Appointment booked",
		zap.Int64("userId", u.ID),
		zap.Time("start", start),
		zap.String("eventId", created.ID),
		zap.String("reference", reference))

	return s.Messenger.SendRemoveKeyboard(u.ChatID, msgConfirmation(
		day.Format("02.01.2006"), label, end.Format("15:04"), u.displayName()))
}

func (s *Service) eventDescription(u User, reference string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Client: %s", u.displayName())
	if u.Username != "" {
		fmt.Fprintf(&sb, " @%s", u.Username)
	}
	fmt.Fprintf(&sb, "\nTelegram ID: %d", u.ID)
	fmt.Fprintf(&sb, "\nReference: %s", reference)
	return sb.String()
}

// MyBookings lists the user's appointments over the next 30 days by
// matching the Telegram id embedded in event descriptions.
func (s *Service) MyBookings(ctx context.Context, u User) error {
	now := s.now()
	events, err := s.Gateway.ListEvents(ctx, now, now.AddDate(0, 0, 30))
	if err != nil {
		s.Logger.Error("Failed to list bookings",
			zap.Int64("userId", u.ID), zap.Error(err))
		return s.Messenger.SendText(u.ChatID, msgCalendarDown)
	}

	marker := fmt.Sprintf("Telegram ID: %d", u.ID)
	var sb strings.Builder
	n := 0
	for _, ev := range events {
		if !strings.Contains(ev.Description, marker) {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s at %s\n", n,
			ev.Start.In(s.Location).Format("02.01.2006"),
			ev.Start.In(s.Location).Format("15:04"))
	}
	if n == 0 {
		return s.Messenger.SendText(u.ChatID, msgNoBookings)
	}
	return s.Messenger.SendText(u.ChatID, "Your appointments:\n\n"+sb.String())
}

// TestCalendar creates and immediately deletes a probe event so the
// user (an operator, in practice) can confirm the calendar is writable.
func (s *Service) TestCalendar(ctx context.Context, u User) error {
	start := s.now().Add(time.Minute)
	created, err := s.Gateway.InsertEvent(ctx, models.EventInput{
		Summary:     "TEST - connection check",
		Description: fmt.Sprintf("Probe event from the booking bot\nCreated: %s", s.now().Format("02.01.2006 15:04")),
		Start:       start,
		End:         start.Add(5 * time.Minute),
		TimeZone:    s.Location.String(),
	})
	if err != nil {
		s.Logger.Error("Calendar probe failed", zap.Error(err))
		return s.Messenger.SendText(u.ChatID,
			fmt.Sprintf("Calendar check failed (%s). See the logs for details.", calendar.KindOf(err)))
	}

	if err := s.Gateway.DeleteEvent(ctx, created.ID); err != nil {
		s.Logger.Warn("Failed to delete probe event",
			zap.String("eventId", created.ID), zap.Error(err))
	}

	return s.Messenger.SendText(u.ChatID, fmt.Sprintf(
		"Calendar check passed!\nProbe event created and deleted: %s\nThe calendar connection works.", created.ID))
}

func (s *Service) fallback(ctx context.Context, u User, text string) error {
	reply, err := s.Responder.Reply(ctx, strconv.FormatInt(u.ID, 10), text)
	if err != nil {
		if !errors.Is(err, ai.ErrRateLimited) {
			s.Logger.Error("Fallback responder failed",
				zap.Int64("userId", u.ID), zap.Error(err))
		}
		return s.Messenger.SendText(u.ChatID, msgFallbackDown)
	}
	return s.Messenger.SendText(u.ChatID, reply)
}

func (s *Service) freeSlots(ctx context.Context, day time.Time) ([]models.Slot, error) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.Location)
	busy, err := s.Gateway.ListBusy(ctx, midnight.Add(s.Window.Start), midnight.Add(s.Window.End))
	if err != nil {
		return nil, err
	}
	return schedule.FreeSlots(midnight, s.Window, s.SlotWidth, busy), nil
}

func (s *Service) reportInternal(u User, op string, err error) error {
	s.Logger.Error("Internal failure in booking flow",
		zap.Int64("userId", u.ID), zap.String("op", op), zap.Error(err))
	return s.Messenger.SendText(u.ChatID, msgTryLater)
}
