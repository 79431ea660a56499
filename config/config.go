package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

type Config struct {
	Backend  BackendConfig
	Client   ClientConfig
	Pushover PushoverConfig
}

type BackendConfig struct {
	URL           string `env:"BACKEND_URL"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

type ClientConfig struct {
	ListenAddr        string `env:"LISTEN_ADDR"`
	DbPath            string `env:"DB_PATH"`
	LogLevel          string `env:"LOG_LEVEL"`
	ToastDurationMs   int    `env:"TOAST_DURATION_MS"`
	SuggestDebounceMs int    `env:"SUGGEST_DEBOUNCE_MS"`
	SyncIntervalSec   int    `env:"SYNC_INTERVAL_SEC"`
	SyncEnabled       bool   `env:"SYNC_ENABLED"`
}

type PushoverConfig struct {
	Recipient string `env:"PUSHOVER_RECIPIENT"`
	Token     string `env:"PUSHOVER_TOKEN"`
}

func Load() (Config, error) {
	c := Config{
		Client: ClientConfig{
			ListenAddr:        ":8080",
			DbPath:            "whattowatch.db",
			LogLevel:          "info",
			ToastDurationMs:   3000,
			SuggestDebounceMs: 300,
			SyncIntervalSec:   300,
			SyncEnabled:       true,
		},
	}

	loader := config.New()
	if _, err := os.Stat(".env"); err == nil {
		loader.AddFeeder(feeder.DotEnv{Path: ".env"})
	}
	loader.AddFeeder(feeder.Env{})
	loader.AddStruct(&c)

	if err := loader.Feed(); err != nil {
		return c, err
	}

	return c, nil
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Client.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
