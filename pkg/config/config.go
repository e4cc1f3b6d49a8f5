package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Calendar source names.
const (
	CalendarSourceNone   = "none"
	CalendarSourceICS    = "ics"
	CalendarSourceCalDAV = "caldav"
)

// DefaultUserID identifies the single local user when none is configured.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Focus-pattern store
	Store       string // memory, sqlite, postgres, redis or auto
	SQLitePath  string
	DatabaseURL string
	DBMaxConns  int

	// Redis
	RedisURL string

	// RabbitMQ
	RabbitMQURL      string
	RabbitMQQueue    string
	RabbitMQPrefetch int

	// Calendar
	CalendarSource     string
	CalendarICSURL     string
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVCalendarPath string

	// Calendar circuit breaker
	CalendarBreakerFailures uint32
	CalendarBreakerTimeout  time.Duration
	CalendarBreakerInterval time.Duration

	// Engine tuning
	TuningFile string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    getEnv("SLOTWISE_USER_ID", DefaultUserID),

		Store:       strings.ToLower(getEnv("SLOTWISE_STORE", "sqlite")),
		SQLitePath:  getEnv("SQLITE_PATH", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getIntEnv("DATABASE_MAX_CONNS", 4),

		RedisURL: getEnv("REDIS_URL", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:    getEnv("RABBITMQ_QUEUE", "slotwise.learning"),
		RabbitMQPrefetch: getIntEnv("RABBITMQ_PREFETCH", 10),

		CalendarSource:     strings.ToLower(getEnv("CALENDAR_SOURCE", CalendarSourceNone)),
		CalendarICSURL:     getEnv("CALENDAR_ICS_URL", ""),
		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVCalendarPath: getEnv("CALDAV_CALENDAR_PATH", ""),

		CalendarBreakerFailures: uint32(getIntEnv("CALENDAR_BREAKER_FAILURES", 3)),
		CalendarBreakerTimeout:  getDurationEnv("CALENDAR_BREAKER_TIMEOUT", 30*time.Second),
		CalendarBreakerInterval: getDurationEnv("CALENDAR_BREAKER_INTERVAL", time.Minute),

		TuningFile: getEnv("SLOTWISE_TUNING_FILE", ""),
	}

	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	if _, err := uuid.Parse(c.UserID); err != nil {
		errs = append(errs, fmt.Errorf("SLOTWISE_USER_ID %q is not a UUID", c.UserID))
	}

	switch c.Store {
	case "", "auto", "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case "redis":
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SLOTWISE_STORE %q", c.Store))
	}

	switch c.CalendarSource {
	case "", CalendarSourceNone:
	case CalendarSourceICS:
		if c.CalendarICSURL == "" {
			errs = append(errs, errors.New("CALENDAR_ICS_URL is required for the ics calendar source"))
		}
	case CalendarSourceCalDAV:
		if c.CalDAVURL == "" || c.CalDAVUsername == "" {
			errs = append(errs, errors.New("CALDAV_URL and CALDAV_USERNAME are required for the caldav calendar source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CALENDAR_SOURCE %q", c.CalendarSource))
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

// UserUUID returns the configured user ID, or the default user when it does not parse.
func (c *Config) UserUUID() uuid.UUID {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.MustParse(DefaultUserID)
	}
	return id
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
