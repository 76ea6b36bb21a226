package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"clinicbot/models"
	"clinicbot/utils"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Options configures the Google-backed gateway.
type Options struct {
	CredentialsFile string
	CalendarID      string
	// ImpersonateSubject enables domain-wide delegation: the service
	// account acts as this Workspace user. Empty for plain sharing.
	ImpersonateSubject string
	// Location is the business timezone all busy intervals are
	// converted into.
	Location *time.Location
}

// GoogleGateway implements Gateway on top of the Calendar v3 API using
// a service-account credential.
type GoogleGateway struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	logger     *zap.Logger
}

// NewGoogleGateway builds the API client from a service-account key
// file. With an impersonation subject it uses a domain-wide-delegation
// token source; otherwise the key file is used directly and the target
// calendar must be shared with the service account.
func NewGoogleGateway(ctx context.Context, opts Options) (*GoogleGateway, error) {
	var clientOpts []option.ClientOption
	if opts.ImpersonateSubject != "" {
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		jwtCfg, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account key: %w", err)
		}
		jwtCfg.Subject = opts.ImpersonateSubject
		clientOpts = append(clientOpts, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	} else {
		clientOpts = append(clientOpts,
			option.WithCredentialsFile(opts.CredentialsFile),
			option.WithScopes(gcal.CalendarScope),
		)
	}

	svc, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &GoogleGateway{
		svc:        svc,
		calendarID: opts.CalendarID,
		loc:        opts.Location,
		logger:     utils.GetLogger(),
	}, nil
}

func (g *GoogleGateway) listRaw(ctx context.Context, from, to time.Time) ([]*gcal.Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("list events", err)
	}
	return res.Items, nil
}

func (g *GoogleGateway) ListBusy(ctx context.Context, from, to time.Time) ([]models.Interval, error) {
	items, err := g.listRaw(ctx, from, to)
	if err != nil {
		return nil, err
	}

	busy := make([]models.Interval, 0, len(items))
	for _, ev := range items {
		iv, _, err := intervalFromEvent(ev.Start, ev.End, g.loc)
		if err != nil {
			// One unreadable event must not hide the rest of the day.
			g.logger.Warn("Skipping event with unreadable times",
				zap.String("eventId", ev.Id), zap.Error(err))
			continue
		}
		busy = append(busy, iv)
	}
	return busy, nil
}

func (g *GoogleGateway) ListEvents(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	items, err := g.listRaw(ctx, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(items))
	for _, ev := range items {
		iv, allDay, err := intervalFromEvent(ev.Start, ev.End, g.loc)
		if err != nil {
			g.logger.Warn("Skipping event with unreadable times",
				zap.String("eventId", ev.Id), zap.Error(err))
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:          ev.Id,
			Summary:     ev.Summary,
			Description: ev.Description,
			Start:       iv.Start,
			End:         iv.End,
			AllDay:      allDay,
			HTMLLink:    ev.HtmlLink,
		})
	}
	return events, nil
}

func (g *GoogleGateway) InsertEvent(ctx context.Context, in models.EventInput) (*models.CreatedEvent, error) {
	ev := &gcal.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Start: &gcal.EventDateTime{
			DateTime: in.Start.Format(time.RFC3339),
			TimeZone: in.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: in.End.Format(time.RFC3339),
			TimeZone: in.TimeZone,
		},
	}
	if in.ReminderMinutes > 0 {
		ev.Reminders = &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: int64(in.ReminderMinutes)},
			},
			ForceSendFields: []string{"UseDefault"},
		}
	}

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, classify("insert event", err)
	}
	return &models.CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

func (g *GoogleGateway) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return classify("delete event", err)
	}
	return nil
}

func (g *GoogleGateway) GetCalendar(ctx context.Context) (*models.CalendarInfo, error) {
	cal, err := g.svc.Calendars.Get(g.calendarID).Context(ctx).Do()
	if err != nil {
		return nil, classify("get calendar", err)
	}
	return &models.CalendarInfo{ID: cal.Id, Summary: cal.Summary}, nil
}

func (g *GoogleGateway) RegisterCalendar(ctx context.Context) error {
	_, err := g.svc.CalendarList.Insert(&gcal.CalendarListEntry{Id: g.calendarID}).Context(ctx).Do()
	if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 409 {
		// Already registered.
		return nil
	}
	return classify("register calendar", err)
}

func (g *GoogleGateway) ListCalendars(ctx context.Context) ([]models.CalendarInfo, error) {
	res, err := g.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, classify("list calendars", err)
	}
	infos := make([]models.CalendarInfo, 0, len(res.Items))
	for _, item := range res.Items {
		infos = append(infos, models.CalendarInfo{
			ID:         item.Id,
			Summary:    item.Summary,
			AccessRole: item.AccessRole,
			Primary:    item.Primary,
		})
	}
	return infos, nil
}

// CalendarID returns the configured target calendar id.
func (g *GoogleGateway) CalendarID() string {
	return g.calendarID
}
