package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicbot/bot"
	"clinicbot/config"
	"clinicbot/models"
	"clinicbot/services/booking"
	"clinicbot/services/calendar"
	ai "clinicbot/services/intelligence"
	"clinicbot/services/session"
	"clinicbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()
	config.LoadConfig()
	config.RequireBotConfig()
	logger := utils.GetLogger()

	loc, err := time.LoadLocation(config.AppConfig.BusinessTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid BUSINESS_TIMEZONE: %v", err)
	}
	window, err := models.ParseDayWindow(config.AppConfig.BusinessDayStart, config.AppConfig.BusinessDayEnd)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid business hours: %v", err)
	}

	ctx := context.Background()
	gateway, err := calendar.NewGoogleGateway(ctx, calendar.Options{
		CredentialsFile:    config.AppConfig.GoogleCredentialsFile,
		CalendarID:         config.AppConfig.CalendarID,
		ImpersonateSubject: config.AppConfig.ImpersonateSubject,
		Location:           loc,
	})
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build calendar client: %v", err)
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	var sessions session.Store
	var redisClients []*redis.Client
	switch config.AppConfig.SessionBackend {
	case "redis":
		client := utils.GetSessionCacheClient()
		sessions = session.NewRedisStore(client, sessionTTL)
		redisClients = append(redisClients, client)
	default:
		store := session.NewMemoryStore(sessionTTL, nil)
		store.StartJanitor(time.Minute)
		defer store.Stop()
		sessions = store
	}

	var responder ai.Responder
	switch config.AppConfig.AIBackend {
	case "gemini":
		responder, err = ai.NewGeminiResponder(ctx, config.AppConfig.GeminiAPIKey)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to build gemini client: %v", err)
		}
	default:
		responder = ai.NewOpenAIResponder(config.AppConfig.OpenAIAPIKey)
	}
	responder = ai.NewRateLimited(responder, rate.Every(6*time.Second), 5)

	service := &booking.Service{
		Gateway:   gateway,
		Sessions:  sessions,
		Responder: responder,
		Window:    window,
		SlotWidth: time.Duration(config.AppConfig.SlotMinutes) * time.Minute,
		Location:  loc,
		DaysAhead: 7,
		Logger:    logger,
	}

	dispatcher, err := bot.New(config.AppConfig.TelegramBotToken, service, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to Telegram: %v", err)
	}

	utils.StartHealthMonitor(func(ctx context.Context) error {
		_, err := gateway.GetCalendar(ctx)
		return err
	}, redisClients)

	// Ops endpoints only; all user traffic goes through Telegram.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + config.AppConfig.OpsPort,
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: ops server failed to start: %v", err)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	go dispatcher.Run(runCtx)
	logger.Sugar().Infof("Bot is up, ops server on %s", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: ops server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: stopped gracefully")
}
