package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPAddr       string // публичный JSON API
	OpsAddr        string // /healthz и /metrics
	JWTSecret      string
	LogLevel       string
	Env            string // dev|prod
	SentryDSN      string
	BotToken       string // телеграм-канал уведомлений; пусто — канал выключен
	NotifyChatID   int64
	SuperuserEmail string // bootstrap-суперпользователь
	SuperuserName  string
	ReminderAge    time.Duration // сколько может висеть несогласованная номинация
}

func Load() (*Config, error) {
	notifyChat, err := parseInt64(os.Getenv("NOTIFY_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_CHAT_ID: %w", err)
	}

	reminderAge := 72 * time.Hour
	if v := os.Getenv("REMINDER_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REMINDER_AGE: %w", err)
		}
		reminderAge = d
	}

	cfg := &Config{
		DatabaseURL:    mustEnv("DATABASE_URL"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		OpsAddr:        getenv("OPS_ADDR", ":9090"),
		JWTSecret:      mustEnv("JWT_SECRET"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Env:            getenv("ENV", "dev"),
		SentryDSN:      os.Getenv("SENTRY_DSN"),
		BotToken:       os.Getenv("BOT_TOKEN"),
		NotifyChatID:   notifyChat,
		SuperuserEmail: os.Getenv("SUPERUSER_EMAIL"),
		SuperuserName:  getenv("SUPERUSER_NAME", "Администратор"),
		ReminderAge:    reminderAge,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
