package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		From       string
	}
	SMS struct {
		AccountSID string
		AuthToken  string
		FromNumber string
	}
	Telegram struct {
		BotToken      string
		RatePerSecond int
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	Delivery struct {
		MaxWorkers  int
		SendTimeout time.Duration
	}
	Scheduler struct {
		Enabled                    bool
		PollInterval               time.Duration
		ReminderIntervalMinutes    int
		SnoozeResetIntervalMinutes int
		MaxRemindersPerRun         int
	}
	Logger struct {
		Level      string
		Filename   string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	cfg.Email.SMTPPort = envInt("EMAIL_SMTP_PORT", 0)
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.From = os.Getenv("EMAIL_FROM")

	cfg.SMS.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.SMS.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.SMS.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")

	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Telegram.RatePerSecond = envInt("TELEGRAM_RATE_PER_SECOND", 25)

	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	cfg.Delivery.MaxWorkers = envInt("DELIVERY_MAX_WORKERS", 10)
	cfg.Delivery.SendTimeout = envDuration("DELIVERY_SEND_TIMEOUT", 15*time.Second)

	cfg.Scheduler.Enabled = envBool("SCHEDULER_ENABLED", true)
	cfg.Scheduler.PollInterval = envDuration("SCHEDULER_POLL_INTERVAL", time.Minute)
	cfg.Scheduler.ReminderIntervalMinutes = envInt("REMINDER_INTERVAL_MINUTES", 30)
	cfg.Scheduler.SnoozeResetIntervalMinutes = envInt("SNOOZE_RESET_INTERVAL_MINUTES", 1440)
	cfg.Scheduler.MaxRemindersPerRun = envInt("MAX_REMINDERS_PER_RUN", 100)

	cfg.Logger.Level = os.Getenv("LOG_LEVEL")
	cfg.Logger.Filename = os.Getenv("LOG_FILE")
	cfg.Logger.MaxSizeMB = envInt("LOG_MAX_SIZE_MB", 100)
	cfg.Logger.MaxBackups = envInt("LOG_MAX_BACKUPS", 3)
	cfg.Logger.MaxAgeDays = envInt("LOG_MAX_AGE_DAYS", 28)

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}
	if cfg.Scheduler.PollInterval <= 0 {
		return Config{}, fmt.Errorf("SCHEDULER_POLL_INTERVAL must be positive")
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v1"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Filename == "" {
		cfg.Logger.Filename = "logs/alerting-platform.log"
	}

	return cfg, nil
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
