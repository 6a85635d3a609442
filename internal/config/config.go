package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP
	HTTPAddr      string   `yaml:"http_addr"`
	CORSOrigins   []string `yaml:"cors_origins"`
	PublicBaseURL string   `yaml:"public_base_url"`
	JWTSecret     string   `yaml:"jwt_secret"`
	// TrustProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// Enable only behind a reverse proxy that sets them.
	TrustProxy bool `yaml:"trust_proxy"`

	// Database
	PostgresDSN   string `yaml:"postgres_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// Telegram, the bot is disabled when the token is empty
	TelegramToken string `yaml:"telegram_token"`

	// Zapier
	ZapierWebhookURL string        `yaml:"zapier_webhook_url"`
	WebhookTimeout   time.Duration `yaml:"webhook_timeout"`

	// Search and alerts
	PageSize          int    `yaml:"page_size"`
	AlertSchedule     string `yaml:"alert_schedule"`
	MaxJobsPerAlert   int    `yaml:"max_jobs_per_alert"`
	SeenRetentionDays int    `yaml:"seen_retention_days"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func defaults() *Config {
	return &Config{
		HTTPAddr:          ":8080",
		CORSOrigins:       []string{"*"},
		PublicBaseURL:     "http://localhost:3000",
		RedisAddr:         "localhost:6379",
		WebhookTimeout:    10 * time.Second,
		PageSize:          10,
		AlertSchedule:     "@every 15m",
		MaxJobsPerAlert:   10,
		SeenRetentionDays: 30,
		LogLevel:          "info",
	}
}

// Load builds the config from defaults, the optional YAML file named by
// CONFIG_FILE and the environment, in that order. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("HTTP_ADDR", &c.HTTPAddr)
	str("PUBLIC_BASE_URL", &c.PublicBaseURL)
	str("JWT_SECRET", &c.JWTSecret)
	str("POSTGRES_DSN", &c.PostgresDSN)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("TELEGRAM_TOKEN", &c.TelegramToken)
	str("ZAPIER_WEBHOOK_URL", &c.ZapierWebhookURL)
	str("ALERT_SCHEDULE", &c.AlertSchedule)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}

	if err := num("REDIS_DB", &c.RedisDB); err != nil {
		return err
	}
	if err := num("PAGE_SIZE", &c.PageSize); err != nil {
		return err
	}
	if err := num("MAX_JOBS_PER_ALERT", &c.MaxJobsPerAlert); err != nil {
		return err
	}
	if err := num("SEEN_RETENTION_DAYS", &c.SeenRetentionDays); err != nil {
		return err
	}

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY: %w", err)
		}
		c.TrustProxy = b
	}

	if timeout := os.Getenv("WEBHOOK_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
		}
		c.WebhookTimeout = d
	}

	return nil
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is empty")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is empty")
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page size must be between 1 and 100")
	}

	if c.MaxJobsPerAlert < 1 || c.MaxJobsPerAlert > 100 {
		return fmt.Errorf("max jobs per alert must be between 1 and 100")
	}

	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive: %v", c.WebhookTimeout)
	}

	if _, err := cron.ParseStandard(c.AlertSchedule); err != nil {
		return fmt.Errorf("invalid alert schedule %q: %w", c.AlertSchedule, err)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}
