package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultDatabasePath     = "data/meal-planner.db"
	DefaultGeminiModel      = "gemini-2.5-flash"
	DefaultGroqModel        = "llama-3.3-70b-versatile"
	DefaultPort             = "8080"
	DefaultRateLimitPerMin  = 6
	DefaultReminderTickSecs = 30
)

// ErrMissingGeminiKey is returned by RequireGemini when no API key is configured.
var ErrMissingGeminiKey = errors.New("GEMINI_API_KEY environment variable not set")

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string

	// Optional text-only model used for recipe clipping
	GroqAPIKey string
	GroqModel  string

	DatabasePath string
	Location     *time.Location

	// Telegram Config
	TelegramBotToken string
	TelegramChatID   int64

	// HTTP API Config
	Port            string
	JWTSecret       string
	RateLimitPerMin int
	ReminderTick    time.Duration
	LogLevel        slog.Level
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", DefaultGeminiModel),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GroqModel:        envOr("GROQ_MODEL", DefaultGroqModel),
		DatabasePath:     envOr("DATABASE_PATH", DefaultDatabasePath),
		Location:         time.Local,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		Port:             envOr("PORT", DefaultPort),
		JWTSecret:        os.Getenv("API_JWT_SECRET"),
		RateLimitPerMin:  DefaultRateLimitPerMin,
		ReminderTick:     DefaultReminderTickSecs * time.Second,
		LogLevel:         slog.LevelInfo,
	}

	if tz := os.Getenv("TZ_NAME"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ_NAME %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}

	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q: %w", raw, err)
		}
		cfg.RateLimitPerMin = n
	}

	if raw := os.Getenv("REMINDER_TICK_SECONDS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid REMINDER_TICK_SECONDS %q", raw)
		}
		cfg.ReminderTick = time.Duration(n) * time.Second
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(raw))); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}

	return cfg, nil
}

// RequireGemini reports whether the generation service can be reached.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingGeminiKey
	}
	return nil
}

// TelegramEnabled is true when both a bot token and a target chat are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
