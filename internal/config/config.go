package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Config is the complete service configuration. Values come from defaults,
// then an optional TOML file named by CONFIG_FILE, then the environment
// (a .env file in the working directory is loaded first if present).
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Minio     MinioConfig     `toml:"minio"`
	Mail      MailConfig      `toml:"mail"`
	AI        AIConfig        `toml:"ai"`
	WhatsApp  WhatsAppConfig  `toml:"whatsapp"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`

	// GeneratedJWTSecret is set when no secret was configured and a random
	// one was generated for this process.
	GeneratedJWTSecret bool `toml:"-"`
}

type ServerConfig struct {
	Port      int    `toml:"port"`
	JWTSecret string `toml:"jwt_secret"`
	Timezone  string `toml:"timezone"`

	// AdminToken guards the /ops job routes. Empty disables them.
	AdminToken string `toml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type AIConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type WhatsAppConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	Retries        int `toml:"retries"`
}

type SchedulerConfig struct {
	Enabled          bool `toml:"enabled"`
	ReminderHour     uint `toml:"reminder_hour"`
	AutoMarkOverdue  bool `toml:"auto_mark_overdue"`
	AlertLogInterval int  `toml:"alert_log_interval_hours"`
}

type RateLimitConfig struct {
	Store         string         `toml:"store"` // "memory" or "redis"
	WindowSeconds int            `toml:"window_seconds"`
	DefaultLimit  int            `toml:"default_limit"`
	Capacity      int            `toml:"capacity"`
	Routes        map[string]int `toml:"routes"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Timezone: "America/Sao_Paulo"},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "proposals",
		},
		Mail:      MailConfig{Port: 587, From: "nao-responda@agencycrm.local"},
		AI:        AIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini"},
		WhatsApp:  WhatsAppConfig{TimeoutSeconds: 15, Retries: 2},
		Scheduler: SchedulerConfig{Enabled: true, ReminderHour: 9, AutoMarkOverdue: true, AlertLogInterval: 6},
		RateLimit: RateLimitConfig{
			Store:         "memory",
			WindowSeconds: 60,
			DefaultLimit:  60,
			Capacity:      10000,
			Routes: map[string]int{
				"/v1/finance/reminders":           10,
				"/v1/automation/generate-message": 10,
				"/v1/leads/:id/follow-up":         10,
			},
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration for the process.
func Load() (*Config, error) {
	// Missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = random.String(32)
		cfg.GeneratedJWTSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file on top of cfg.
func LoadFile(filename string, cfg *Config) error {
	if _, err := toml.DecodeFile(filename, cfg); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Server.JWTSecret, "JWT_SECRET")
	setString(&c.Server.Timezone, "TIMEZONE")
	setString(&c.Server.AdminToken, "ADMIN_TOKEN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	setString(&c.Mail.Host, "SMTP_HOST")
	setString(&c.Mail.User, "SMTP_USER")
	setString(&c.Mail.Password, "SMTP_PASSWORD")
	setString(&c.Mail.From, "MAIL_FROM")
	setString(&c.AI.APIKey, "OPENAI_API_KEY")
	setString(&c.AI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.AI.Model, "OPENAI_MODEL")
	setString(&c.RateLimit.Store, "RATE_LIMIT_STORE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	var errs []error
	errs = append(errs,
		setInt(&c.Server.Port, "PORT"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setInt(&c.Mail.Port, "SMTP_PORT"),
		setInt(&c.RateLimit.DefaultLimit, "RATE_LIMIT_DEFAULT"),
		setBool(&c.Minio.UseSSL, "MINIO_USE_SSL"),
		setBool(&c.Scheduler.Enabled, "SCHEDULER_ENABLED"),
		setBool(&c.Scheduler.AutoMarkOverdue, "AUTO_MARK_OVERDUE"),
	)
	if v := os.Getenv("REMINDER_HOUR"); v != "" {
		h, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid REMINDER_HOUR %q: %w", v, err))
		} else {
			c.Scheduler.ReminderHour = uint(h)
		}
	}
	return errors.Join(errs...)
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Server.Timezone, err)
	}
	if c.Scheduler.ReminderHour > 23 {
		return fmt.Errorf("reminder hour must be between 0 and 23, got %d", c.Scheduler.ReminderHour)
	}
	switch c.RateLimit.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown rate limit store %q", c.RateLimit.Store)
	}
	if c.RateLimit.WindowSeconds <= 0 || c.RateLimit.DefaultLimit <= 0 {
		return errors.New("rate limit window and default limit must be positive")
	}
	return nil
}

// Location returns the business timezone used for "today" boundaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}
