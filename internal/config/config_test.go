package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BOT_TOKEN", "PORT", "MODE", "DB_DRIVER", "DB_PATH", "HTTP_TIMEOUT", "ADMIN_TOKEN_DAYS", "LOG_PRETTY"} {
		t.Setenv(k, "")
	}
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatalf("Load(missing file) = %+v, want error", c)
	}

	c, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != "5175" || c.Mode != ModeWebhook || c.DBDriver != "sqlite" || c.DSN() != "./data/bot.db" {
		t.Errorf("defaults = %+v", c)
	}
	if c.HTTPTimeout != 10*time.Second || c.AdminTokenDays != 1 || c.LogPretty {
		t.Errorf("typed defaults = %+v", c)
	}
}

func TestLoadEnvFile(t *testing.T) {
	for _, k := range []string{"BOT_TOKEN", "MODE", "HTTP_TIMEOUT", "DB_DRIVER", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(t.TempDir(), "bot.env")
	body := "BOT_TOKEN=123:abc\nMODE=poll\nHTTP_TIMEOUT=3s\nDB_DRIVER=postgres\nDATABASE_URL=postgres://u@h/db\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set, even to "".
	for _, k := range []string{"BOT_TOKEN", "MODE", "HTTP_TIMEOUT", "DB_DRIVER", "DATABASE_URL"} {
		os.Unsetenv(k)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.BotToken != "123:abc" || c.Mode != ModePoll || c.HTTPTimeout != 3*time.Second {
		t.Errorf("Load(%s) = %+v", path, c)
	}
	if c.DSN() != "postgres://u@h/db" {
		t.Errorf("DSN = %q", c.DSN())
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("MODE", "carrier-pigeon")
	if _, err := Load(""); err == nil {
		t.Error("Load with bad MODE returned nil error")
	}
}
