// Package config reads runtime settings from the environment.
// A .env file (or the file named by --env-file) is loaded first; real
// environment variables take precedence over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Mode selects how updates reach the bot.
const (
	ModeWebhook = "webhook"
	ModePoll    = "poll"
)

type Config struct {
	BotToken    string        // Telegram bot token
	TelegramAPI string        // Bot API base URL
	ContextoAPI string        // puzzle service base URL
	HTTPTimeout time.Duration // outbound request timeout

	Port          string
	Mode          string // webhook | poll
	WebhookURL    string // public URL registered with Telegram
	WebhookSecret string // X-Telegram-Bot-Api-Secret-Token value

	DBDriver    string // sqlite | postgres | memory
	DBPath      string // sqlite file
	DatabaseURL string // postgres URL

	AdminPasswordHash string // bcrypt hash; admin API disabled when empty
	AdminJWTSecret    string
	AdminTokenDays    int

	LogLevel  string
	LogPretty bool
}

// Load reads envFile (".env" when empty; a missing file is not an error)
// and builds a Config from the environment.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	c := &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		TelegramAPI: getEnv("TELEGRAM_API", "https://api.telegram.org"),
		ContextoAPI: getEnv("CONTEXTO_API", "https://api.contexto.me"),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		Port:          getEnv("PORT", "5175"),
		Mode:          getEnv("MODE", ModeWebhook),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBPath:      getEnv("DB_PATH", "./data/bot.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminJWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
		AdminTokenDays:    getEnvInt("ADMIN_TOKEN_DAYS", 1),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),
	}
	if c.Mode != ModeWebhook && c.Mode != ModePoll {
		return nil, fmt.Errorf("MODE must be %q or %q, got %q", ModeWebhook, ModePoll, c.Mode)
	}
	return c, nil
}

// DSN returns the store connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" || c.DBDriver == "postgresql" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// AdminEnabled reports whether the admin API can issue tokens.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != "" && c.AdminJWTSecret != ""
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
