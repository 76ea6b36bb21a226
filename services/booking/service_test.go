package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"clinicbot/models"
	"clinicbot/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var msk = time.FixedZone("MSK", 3*60*60)

type fakeGateway struct {
	busy      []models.Interval
	events    []models.CalendarEvent
	listErr   error
	insertErr error
	inserted  []models.EventInput
	deleted   []string
}

func (g *fakeGateway) ListBusy(ctx context.Context, from, to time.Time) ([]models.Interval, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.busy, nil
}

func (g *fakeGateway) ListEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.events, nil
}

func (g *fakeGateway) InsertEvent(ctx context.Context, in models.EventInput) (*models.CreatedEvent, error) {
	if g.insertErr != nil {
		return nil, g.insertErr
	}
	g.inserted = append(g.inserted, in)
	return &models.CreatedEvent{ID: fmt.Sprintf("evt-%d", len(g.inserted)), HTMLLink: "https://calendar.example/evt"}, nil
}

func (g *fakeGateway) DeleteEvent(ctx context.Context, eventID string) error {
	g.deleted = append(g.deleted, eventID)
	return nil
}

func (g *fakeGateway) GetCalendar(ctx context.Context) (*models.CalendarInfo, error) {
	return &models.CalendarInfo{ID: "primary"}, nil
}

func (g *fakeGateway) RegisterCalendar(ctx context.Context) error { return nil }

func (g *fakeGateway) ListCalendars(ctx context.Context) ([]models.CalendarInfo, error) {
	return nil, nil
}

type sentMessage struct {
	text     string
	rows     [][]string
	removed  bool
	keyboard bool
}

type fakeMessenger struct {
	sent []sentMessage
}

func (m *fakeMessenger) SendText(chatID int64, text string) error {
	m.sent = append(m.sent, sentMessage{text: text})
	return nil
}

func (m *fakeMessenger) SendKeyboard(chatID int64, text string, rows [][]string) error {
	m.sent = append(m.sent, sentMessage{text: text, rows: rows, keyboard: true})
	return nil
}

func (m *fakeMessenger) SendRemoveKeyboard(chatID int64, text string) error {
	m.sent = append(m.sent, sentMessage{text: text, removed: true})
	return nil
}

func (m *fakeMessenger) last(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, m.sent, "expected at least one message")
	return m.sent[len(m.sent)-1]
}

type fakeResponder struct {
	reply string
	err   error
	asked []string
}

func (r *fakeResponder) Reply(ctx context.Context, userID string, text string) (string, error) {
	r.asked = append(r.asked, text)
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

type fixture struct {
	svc       *Service
	gateway   *fakeGateway
	messenger *fakeMessenger
	responder *fakeResponder
	sessions  *session.MemoryStore
	user      User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	window, err := models.ParseDayWindow("09:00", "18:00")
	require.NoError(t, err)

	gateway := &fakeGateway{}
	messenger := &fakeMessenger{}
	responder := &fakeResponder{reply: "we are open on weekdays"}
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, msk)
	sessions := session.NewMemoryStore(30*time.Minute, func() time.Time { return now })

	svc := &Service{
		Gateway:   gateway,
		Sessions:  sessions,
		Messenger: messenger,
		Responder: responder,
		Window:    window,
		SlotWidth: time.Hour,
		Location:  msk,
		DaysAhead: 7,
		Clock:     func() time.Time { return now },
		Logger:    zap.NewNop(),
	}
	return &fixture{
		svc:       svc,
		gateway:   gateway,
		messenger: messenger,
		responder: responder,
		sessions:  sessions,
		user:      User{ID: 42, ChatID: 42, FullName: "Ivan Petrov", Username: "ivanp"},
	}
}

func busyAt(day string, fromH, fromM, toH, toM int) models.Interval {
	d, _ := time.ParseInLocation("2006-01-02", day, msk)
	return models.Interval{
		Start: time.Date(d.Year(), d.Month(), d.Day(), fromH, fromM, 0, 0, msk),
		End:   time.Date(d.Year(), d.Month(), d.Day(), toH, toM, 0, 0, msk),
	}
}

func TestStartShowsDateKeyboard(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Start(context.Background(), f.user))

	got := f.messenger.last(t)
	assert.True(t, got.keyboard)
	assert.Len(t, got.rows, 7)
	assert.Equal(t, []string{"2025-09-10"}, got.rows[0])
	assert.Equal(t, []string{"2025-09-16"}, got.rows[6])
}

func TestChooseDateOffersFreeSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))

	got := f.messenger.last(t)
	assert.Contains(t, got.text, "9 free slots")
	// 9 labels in rows of 3, plus the back row.
	require.Len(t, got.rows, 4)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, got.rows[0])
	assert.Equal(t, []string{BackButton}, got.rows[3])

	sess, err := f.sessions.Get(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.StateAwaitingTime, sess.State)
}

func TestChooseDateMalformed(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.ChooseDate(context.Background(), f.user, "2025-13-99"))
	assert.Equal(t, msgBadDateFormat, f.messenger.last(t).text)
}

func TestChooseDatePast(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.ChooseDate(context.Background(), f.user, "2025-09-09"))
	assert.Equal(t, msgPastDate, f.messenger.last(t).text)
}

func TestChooseDateFullyBooked(t *testing.T) {
	f := newFixture(t)
	f.gateway.busy = []models.Interval{busyAt("2025-09-12", 8, 0, 20, 0)}

	require.NoError(t, f.svc.ChooseDate(context.Background(), f.user, "2025-09-12"))

	got := f.messenger.last(t)
	assert.Contains(t, got.text, "All slots on 2025-09-12 are taken")
	assert.Len(t, got.rows, 7, "should fall back to the date keyboard")
}

func TestChooseDateCalendarDown(t *testing.T) {
	f := newFixture(t)
	f.gateway.listErr = errors.New("boom")

	require.NoError(t, f.svc.ChooseDate(context.Background(), f.user, "2025-09-12"))
	assert.Equal(t, msgCalendarDown, f.messenger.last(t).text)
}

func TestBookSlotHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))

	require.NoError(t, f.svc.BookSlot(ctx, f.user, "10:00"))

	require.Len(t, f.gateway.inserted, 1)
	in := f.gateway.inserted[0]
	assert.Equal(t, time.Date(2025, 9, 12, 10, 0, 0, 0, msk), in.Start)
	assert.Equal(t, time.Date(2025, 9, 12, 11, 0, 0, 0, msk), in.End)
	assert.Equal(t, "Appointment: Ivan Petrov", in.Summary)
	assert.Contains(t, in.Description, "Telegram ID: 42")
	assert.Contains(t, in.Description, "@ivanp")
	assert.Contains(t, in.Description, "Reference: ")
	assert.Equal(t, 30, in.ReminderMinutes)

	got := f.messenger.last(t)
	assert.True(t, got.removed, "confirmation should remove the keyboard")
	assert.Contains(t, got.text, "12.09.2025")
	assert.Contains(t, got.text, "10:00 - 11:00")

	sess, err := f.sessions.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, sess, "pending selection must be cleared after booking")
}

func TestBookSlotRefusedWhenSlotTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))

	// Another writer grabs 10:00 between listing and booking.
	f.gateway.busy = []models.Interval{busyAt("2025-09-12", 10, 0, 11, 0)}

	require.NoError(t, f.svc.BookSlot(ctx, f.user, "10:00"))

	assert.Empty(t, f.gateway.inserted, "refused commit must not write")
	got := f.messenger.last(t)
	assert.Equal(t, msgSlotTaken, got.text)
	for _, row := range got.rows {
		assert.NotContains(t, row, "10:00")
	}
}

func TestBookSlotDayFilledUpFallsBackToDates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))

	f.gateway.busy = []models.Interval{busyAt("2025-09-12", 8, 0, 20, 0)}

	require.NoError(t, f.svc.BookSlot(ctx, f.user, "10:00"))

	assert.Empty(t, f.gateway.inserted)
	got := f.messenger.last(t)
	assert.Contains(t, got.text, "All slots on 2025-09-12 are taken")
	assert.Len(t, got.rows, 7)
}

func TestBookSlotWithoutPendingDate(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.BookSlot(context.Background(), f.user, "10:00"))

	assert.Empty(t, f.gateway.inserted)
	got := f.messenger.last(t)
	assert.Equal(t, msgPickDateFirst, got.text)
	assert.Len(t, got.rows, 7)
}

func TestSecondBookingNeedsNewDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))
	require.NoError(t, f.svc.BookSlot(ctx, f.user, "10:00"))

	require.NoError(t, f.svc.BookSlot(ctx, f.user, "11:00"))

	require.Len(t, f.gateway.inserted, 1, "second attempt must not book without a new date")
	assert.Equal(t, msgPickDateFirst, f.messenger.last(t).text)
}

func TestBookSlotMalformedTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))

	require.NoError(t, f.svc.BookSlot(ctx, f.user, "99:99"))
	assert.Equal(t, msgBadTimeFormat, f.messenger.last(t).text)
	assert.Empty(t, f.gateway.inserted)
}

func TestBookSlotInsertFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))
	f.gateway.insertErr = errors.New("backend unavailable")

	require.NoError(t, f.svc.BookSlot(ctx, f.user, "10:00"))

	assert.Equal(t, msgTryLater, f.messenger.last(t).text)
	sess, err := f.sessions.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.NotNil(t, sess, "failed booking keeps the pending selection")
}

func TestHandleTextBackButton(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.ChooseDate(ctx, f.user, "2025-09-12"))

	require.NoError(t, f.svc.HandleText(ctx, f.user, BackButton))

	got := f.messenger.last(t)
	assert.Len(t, got.rows, 7)
	sess, err := f.sessions.Get(ctx, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.StateAwaitingDate, sess.State)
}

func TestHandleTextRoutesDateAndTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleText(ctx, f.user, "2025-09-12"))
	assert.Contains(t, f.messenger.last(t).text, "free slots")

	require.NoError(t, f.svc.HandleText(ctx, f.user, "10:00"))
	require.Len(t, f.gateway.inserted, 1)
	assert.Empty(t, f.responder.asked, "booking input must not reach the fallback chat")
}

func TestHandleTextFallsBackToChat(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.HandleText(context.Background(), f.user, "when are you open?"))

	assert.Equal(t, []string{"when are you open?"}, f.responder.asked)
	assert.Equal(t, "we are open on weekdays", f.messenger.last(t).text)
}

func TestHandleTextFallbackFailure(t *testing.T) {
	f := newFixture(t)
	f.responder.err = errors.New("quota exceeded")

	require.NoError(t, f.svc.HandleText(context.Background(), f.user, "hello"))
	assert.Equal(t, msgFallbackDown, f.messenger.last(t).text)
}

func TestMyBookingsFiltersByUser(t *testing.T) {
	f := newFixture(t)
	f.gateway.events = []models.CalendarEvent{
		{
			Summary:     "Appointment: Ivan Petrov",
			Description: "Client: Ivan Petrov\nTelegram ID: 42\nReference: abc",
			Start:       time.Date(2025, 9, 12, 10, 0, 0, 0, msk),
			End:         time.Date(2025, 9, 12, 11, 0, 0, 0, msk),
		},
		{
			Summary:     "Appointment: Someone Else",
			Description: "Client: Someone Else\nTelegram ID: 777\nReference: def",
			Start:       time.Date(2025, 9, 13, 14, 0, 0, 0, msk),
			End:         time.Date(2025, 9, 13, 15, 0, 0, 0, msk),
		},
	}

	require.NoError(t, f.svc.MyBookings(context.Background(), f.user))

	got := f.messenger.last(t)
	assert.Contains(t, got.text, "1. 12.09.2025 at 10:00")
	assert.NotContains(t, got.text, "13.09.2025")
}

func TestMyBookingsEmpty(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.MyBookings(context.Background(), f.user))
	assert.Equal(t, msgNoBookings, f.messenger.last(t).text)
}

func TestTestCalendarCreatesAndDeletesProbe(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.TestCalendar(context.Background(), f.user))

	require.Len(t, f.gateway.inserted, 1)
	assert.Equal(t, "TEST - connection check", f.gateway.inserted[0].Summary)
	require.Len(t, f.gateway.deleted, 1)
	assert.Contains(t, f.messenger.last(t).text, "Calendar check passed")
}
