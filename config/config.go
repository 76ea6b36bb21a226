package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	OpsPort  string `mapstructure:"OPS_PORT"`

	// Telegram.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`

	// Google Calendar.
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	CalendarID            string `mapstructure:"CALENDAR_ID"`
	ImpersonateSubject    string `mapstructure:"IMPERSONATE_SUBJECT"`

	// Business hours in the business timezone.
	BusinessTimezone string `mapstructure:"BUSINESS_TIMEZONE"`
	BusinessDayStart string `mapstructure:"BUSINESS_DAY_START"`
	BusinessDayEnd   string `mapstructure:"BUSINESS_DAY_END"`
	SlotMinutes      int    `mapstructure:"SLOT_MINUTES"`

	// Fallback chat.
	AIBackend    string `mapstructure:"AI_BACKEND"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`

	// Session store.
	SessionBackend    string `mapstructure:"SESSION_BACKEND"`
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`

	// Redis configuration (only used when SESSION_BACKEND=redis).
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("OPS_PORT", "8080")
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "service-account.json")
	viper.SetDefault("CALENDAR_ID", "primary")
	viper.SetDefault("BUSINESS_TIMEZONE", "Europe/Moscow")
	viper.SetDefault("BUSINESS_DAY_START", "09:00")
	viper.SetDefault("BUSINESS_DAY_END", "18:00")
	viper.SetDefault("SLOT_MINUTES", 60)
	viper.SetDefault("AI_BACKEND", "openai")
	viper.SetDefault("SESSION_BACKEND", "memory")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// RequireBotConfig exits if the variables the bot cannot run without are missing.
func RequireBotConfig() {
	if AppConfig.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}
	switch AppConfig.AIBackend {
	case "openai":
		if AppConfig.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY is not set")
		}
	case "gemini":
		if AppConfig.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY is not set")
		}
	default:
		log.Fatalf("Unknown AI_BACKEND %q (want openai or gemini)", AppConfig.AIBackend)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
