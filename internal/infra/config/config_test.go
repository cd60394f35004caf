package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"NOTIFIER", "ORGANIZATION_ID", "LOGIN_URL", "LINE_ACCESS_TOKEN", "LINE_BROADCAST_URL",
	"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "SCISEED_BASE_URL", "SCISEED_ITEM_ID",
	"SEARCH_WINDOW_DAYS", "HTTP_TIMEOUT_SECONDS", "COOLDOWN_MINUTES", "COOLDOWN_BACKEND",
	"COOLDOWN_FILE", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"CRON_SPEC", "LOG_LEVEL", "ENVIRONMENT",
}

// setEnv clears every known key, then applies values. t.Setenv restores the
// previous environment when the test ends.
func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	for k, v := range values {
		t.Setenv(k, v)
	}
}

func baseEnv() map[string]string {
	return map[string]string{
		"LINE_ACCESS_TOKEN": "token",
		"ORGANIZATION_ID":   "131001",
		"LOGIN_URL":         "https://example.jp/login",
	}
}

// noEnvFile points godotenv at a file that does not exist so a developer's
// local .env never leaks into the tests.
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, baseEnv())

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Notifier != NotifierLine || cfg.LineAccessToken != "token" {
		t.Fatalf("unexpected notifier config %+v", cfg)
	}
	if cfg.SciseedItemID != "3" || cfg.SearchWindow != 30*24*time.Hour {
		t.Fatalf("unexpected source defaults %+v", cfg)
	}
	if cfg.CooldownWindow != time.Hour || cfg.CooldownBackend != CooldownBackendFile || cfg.CooldownFile != "last_notified.txt" {
		t.Fatalf("unexpected cooldown defaults %+v", cfg)
	}
	if cfg.HTTPTimeout != 30*time.Second || cfg.CronSpec != "*/5 * * * *" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.Environment != "development" {
		t.Fatalf("unexpected logging defaults %+v", cfg)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"LINE_ACCESS_TOKEN", "ORGANIZATION_ID", "LOGIN_URL"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)
			setEnv(t, env)

			_, err := Load(noEnvFile(t))
			if !errors.Is(err, ErrConfigurationMissing) {
				t.Fatalf("expected ErrConfigurationMissing, got %v", err)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("error should name %s: %v", key, err)
			}
		})
	}
}

func TestLoad_BlankValueCountsAsMissing(t *testing.T) {
	env := baseEnv()
	env["LOGIN_URL"] = "   "
	setEnv(t, env)

	if _, err := Load(noEnvFile(t)); !errors.Is(err, ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestLoad_TelegramNotifier(t *testing.T) {
	env := baseEnv()
	delete(env, "LINE_ACCESS_TOKEN")
	env["NOTIFIER"] = "telegram"
	env["TELEGRAM_TOKEN"] = "123:abc"
	env["TELEGRAM_CHAT_ID"] = "-10042"
	setEnv(t, env)

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TelegramChatID != -10042 {
		t.Fatalf("chat id = %d", cfg.TelegramChatID)
	}

	t.Setenv("TELEGRAM_CHAT_ID", "general")
	if _, err := Load(noEnvFile(t)); err == nil {
		t.Fatal("expected an error for a non-numeric chat id")
	}
}

func TestLoad_CooldownBackends(t *testing.T) {
	env := baseEnv()
	env["COOLDOWN_BACKEND"] = "postgres"
	setEnv(t, env)
	if _, err := Load(noEnvFile(t)); !errors.Is(err, ErrConfigurationMissing) {
		t.Fatalf("postgres without DATABASE_URL: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/notifier")
	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseURL != "postgres://localhost/notifier" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}

	t.Setenv("COOLDOWN_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	cfg, err = Load(noEnvFile(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CooldownBackend != CooldownBackendRedis || cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg)
	}

	t.Setenv("COOLDOWN_BACKEND", "etcd")
	if _, err := Load(noEnvFile(t)); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}

func TestLoad_InvalidNumbers(t *testing.T) {
	for _, key := range []string{"SEARCH_WINDOW_DAYS", "HTTP_TIMEOUT_SECONDS", "COOLDOWN_MINUTES"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			env[key] = "0"
			setEnv(t, env)
			if _, err := Load(noEnvFile(t)); err == nil {
				t.Fatalf("expected an error for %s=0", key)
			}
		})
	}
}

func TestLoad_UnknownNotifier(t *testing.T) {
	env := baseEnv()
	env["NOTIFIER"] = "pager"
	setEnv(t, env)
	if _, err := Load(noEnvFile(t)); err == nil {
		t.Fatal("expected an error for an unknown notifier")
	}
}
