package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

var ErrConfigurationMissing = fmt.Errorf("required configuration is missing")

const (
	NotifierLine     = "line"
	NotifierTelegram = "telegram"
	NotifierConsole  = "console"

	CooldownBackendFile     = "file"
	CooldownBackendPostgres = "postgres"
	CooldownBackendRedis    = "redis"
	CooldownBackendMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LineAccessToken string
	LineEndpoint    string
	OrganizationID  string
	LoginURL        string

	SciseedBaseURL string
	SciseedItemID  string
	SearchWindow   time.Duration
	HTTPTimeout    time.Duration

	Notifier       string
	TelegramToken  string
	TelegramChatID int64

	CooldownWindow  time.Duration
	CooldownBackend string
	CooldownFile    string
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	CronSpec    string // For daemon mode
	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and the given .env
// files (if present). Missing required values fail before any network call.
func Load(envFiles ...string) (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load(envFiles...)

	cfg := &AppConfig{}
	var err error

	cfg.Notifier = strings.ToLower(envDefault("NOTIFIER", NotifierLine))
	switch cfg.Notifier {
	case NotifierLine, NotifierTelegram, NotifierConsole:
	default:
		return nil, fmt.Errorf("invalid NOTIFIER %q (want line, telegram or console)", cfg.Notifier)
	}

	if cfg.OrganizationID, err = required("ORGANIZATION_ID"); err != nil {
		return nil, err
	}
	if cfg.LoginURL, err = required("LOGIN_URL"); err != nil {
		return nil, err
	}

	if cfg.Notifier == NotifierLine {
		if cfg.LineAccessToken, err = required("LINE_ACCESS_TOKEN"); err != nil {
			return nil, err
		}
	}
	cfg.LineEndpoint = os.Getenv("LINE_BROADCAST_URL")

	if cfg.Notifier == NotifierTelegram {
		if cfg.TelegramToken, err = required("TELEGRAM_TOKEN"); err != nil {
			return nil, err
		}
		chatIDStr, err := required("TELEGRAM_CHAT_ID")
		if err != nil {
			return nil, err
		}
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.SciseedBaseURL = os.Getenv("SCISEED_BASE_URL") // empty means the public API cache
	cfg.SciseedItemID = envDefault("SCISEED_ITEM_ID", "3")

	windowDays, err := positiveInt("SEARCH_WINDOW_DAYS", 30)
	if err != nil {
		return nil, err
	}
	cfg.SearchWindow = time.Duration(windowDays) * 24 * time.Hour

	timeoutSec, err := positiveInt("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSec) * time.Second

	cooldownMin, err := positiveInt("COOLDOWN_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.CooldownWindow = time.Duration(cooldownMin) * time.Minute

	cfg.CooldownBackend = strings.ToLower(envDefault("COOLDOWN_BACKEND", CooldownBackendFile))
	switch cfg.CooldownBackend {
	case CooldownBackendFile:
		cfg.CooldownFile = envDefault("COOLDOWN_FILE", "last_notified.txt")
	case CooldownBackendPostgres:
		if cfg.DatabaseURL, err = required("DATABASE_URL"); err != nil {
			return nil, err
		}
	case CooldownBackendRedis:
		cfg.RedisAddr = envDefault("REDIS_ADDR", "localhost:6379")
		cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
		if cfg.RedisDB, err = strconv.Atoi(envDefault("REDIS_DB", "0")); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	case CooldownBackendMemory:
	default:
		return nil, fmt.Errorf("invalid COOLDOWN_BACKEND %q (want file, postgres, redis or memory)", cfg.CooldownBackend)
	}

	cfg.CronSpec = envDefault("CRON_SPEC", "*/5 * * * *") // Default: every 5 minutes

	cfg.LogLevel = strings.ToLower(envDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envDefault("ENVIRONMENT", "development"))

	return cfg, nil
}

func required(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("%w: %s is not set", ErrConfigurationMissing, key)
	}
	return v, nil
}

func envDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func positiveInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
