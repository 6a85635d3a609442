package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_DSN", "postgres://localhost/jobs")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.PageSize != 10 || cfg.AlertSchedule != "@every 15m" || cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BotEnabled() {
		t.Error("bot enabled without a token")
	}
	if cfg.TrustProxy {
		t.Error("proxy headers must not be trusted by default")
	}
}

func TestLoad_TrustProxy(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.TrustProxy {
		t.Error("TRUST_PROXY=true not applied")
	}

	t.Setenv("TRUST_PROXY", "maybe")
	if _, err := Load(); err == nil {
		t.Error("expected error for TRUST_PROXY=maybe")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "page_size: 20\nwebhook_timeout: 3s\nlog_level: debug\ncors_origins: [\"https://a.vn\"]\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ORIGINS", "https://b.vn, https://c.vn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20 from file", cfg.PageSize)
	}
	if cfg.WebhookTimeout != 3*time.Second {
		t.Errorf("WebhookTimeout = %v", cfg.WebhookTimeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, env must win over file", cfg.LogLevel)
	}
	if want := []string{"https://b.vn", "https://c.vn"}; !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	setRequired(t)
	t.Setenv("PAGE_SIZE", "ten")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for PAGE_SIZE=ten")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := defaults()
		c.PostgresDSN = "dsn"
		c.JWTSecret = "secret"
		return c
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no dsn", func(c *Config) { c.PostgresDSN = "" }},
		{"no secret", func(c *Config) { c.JWTSecret = "" }},
		{"page size", func(c *Config) { c.PageSize = 0 }},
		{"schedule", func(c *Config) { c.AlertSchedule = "sometimes" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
