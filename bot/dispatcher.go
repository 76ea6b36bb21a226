// Package bot runs the Telegram long-polling loop and routes updates
// into the booking service.
package bot

import (
	"context"
	"time"

	"clinicbot/services/booking"
	"clinicbot/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const handlerTimeout = 30 * time.Second

// Dispatcher owns the polling loop. Each update is handled on its own
// goroutine so one slow calendar call never blocks other chats.
type Dispatcher struct {
	api     *tgbotapi.BotAPI
	service *booking.Service
	logger  *zap.Logger
}

// New connects to Telegram and wires the booking service to it. The
// returned dispatcher's Messenger is already set on the service.
func New(token string, service *booking.Service, logger *zap.Logger) (*Dispatcher, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	service.Messenger = &messenger{api: api}

	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Dispatcher{api: api, service: service, logger: logger}, nil
}

// Run polls for updates until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := d.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			d.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
				continue
			}
			go d.handle(update.Message)
		}
	}
}

func (d *Dispatcher) handle(msg *tgbotapi.Message) {
	defer utils.Recover(func(any) {
		_, _ = d.api.Send(tgbotapi.NewMessage(msg.Chat.ID,
			"Something went wrong on our side. Please try again later."))
	})

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	user := booking.User{
		ID:       msg.From.ID,
		ChatID:   msg.Chat.ID,
		FullName: fullName(msg.From),
		Username: msg.From.UserName,
	}

	var err error
	switch msg.Command() {
	case "start":
		err = d.service.Start(ctx, user)
	case "help":
		err = d.service.Help(ctx, user)
	case "my_bookings":
		err = d.service.MyBookings(ctx, user)
	case "test_calendar":
		err = d.service.TestCalendar(ctx, user)
	case "":
		err = d.service.HandleText(ctx, user, msg.Text)
	default:
		err = d.service.Help(ctx, user)
	}
	if err != nil {
		d.logger.Error("Failed to handle update",
			zap.Int64("userId", user.ID),
			zap.String("command", msg.Command()),
			zap.Error(err))
	}
}

func fullName(u *tgbotapi.User) string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
