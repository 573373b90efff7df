// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, timeouts, cache settings, and provider credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// WhatsApp Cloud API
	WhatsAppToken   string // Bearer token for the Graph API
	WhatsAppPhoneID string // Phone number id used in /messages sends
	AppSecret       string // Meta app secret for X-Hub-Signature-256 (empty = skip check)
	VerifyToken     string // Webhook GET verification token
	GraphBaseURL    string // Graph API base (override for tests)

	// OpenAI
	OpenAIAPIKey          string
	OpenAIBaseURL         string  // Override for tests / compatible gateways
	OpenAIModel           string  // Chat + vision model (default: gpt-4o-mini)
	OpenAITranscribeModel string  // Primary speech-to-text model (default: whisper-1)
	OpenAITranscribeRetry string  // Secondary model tried once after failure
	OpenAITemperature     float64 // Sampling temperature (default: 0.2)
	VerifyReplyLanguage   bool    // Re-detect answers and translate on mismatch

	// Ticket sink
	SheetWebhookURL string // External spreadsheet webhook (empty = disabled)

	// Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	CORSAllowOrigin string

	// Observability
	SentryDSN           string
	SentryEnvironment   string
	BetterstackToken    string
	BetterstackEndpoint string
	MetricsUsername     string // Basic Auth for /metrics (empty password = no auth)
	MetricsPassword     string

	// Data
	DataDir         string
	CacheTTL        time.Duration // Response cache TTL (default: 1h)
	CacheMaxEntries int           // Response cache size bound (default: 4096)
	DedupRetention  time.Duration // How long processed message ids are kept (default: 6h)

	// Limits
	MaxMediaBytes     int64         // Attachment download ceiling (default: 16 MiB)
	SenderWindowMax   int           // Max messages per sender per window (default: 20)
	SenderWindow      time.Duration // Sliding window duration (default: 10m)
	GlobalSendRPS     float64       // Token bucket rate for outbound sends (default: 50)
	ProcessingTimeout time.Duration // Upper bound for handling one message

	// Archive (S3-compatible snapshot backup; disabled when bucket empty)
	ArchiveBucket    string
	ArchiveEndpoint  string
	ArchiveRegion    string
	ArchiveAccessKey string
	ArchiveSecretKey string
	ArchiveKey       string        // Object key (default: snapshots/nochgpt.db.zst)
	ArchiveInterval  time.Duration // Upload period (default: 6h)
}

// Load reads configuration from environment variables.
// It attempts to load .env first, then reads from env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		WhatsAppToken:   getEnv("WA_TOKEN", ""),
		WhatsAppPhoneID: getEnv("WA_PHONE_ID", ""),
		AppSecret:       getEnv("WA_APP_SECRET", ""),
		VerifyToken:     getEnv("VERIFY_TOKEN", "nochgpt"),
		GraphBaseURL:    getEnv("GRAPH_BASE_URL", "https://graph.facebook.com/v20.0"),

		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITranscribeModel: getEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		OpenAITranscribeRetry: getEnv("OPENAI_TRANSCRIBE_RETRY_MODEL", "gpt-4o-mini-transcribe"),
		OpenAITemperature:     getFloatEnv("OPENAI_TEMPERATURE", 0.2),
		VerifyReplyLanguage:   getBoolEnv("VERIFY_REPLY_LANGUAGE", true),

		SheetWebhookURL: getEnv("APPS_SCRIPT_URL", ""),

		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		SentryDSN:           getEnv("SENTRY_DSN", ""),
		SentryEnvironment:   getEnv("SENTRY_ENVIRONMENT", "production"),
		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),
		MetricsUsername:     getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword:     getEnv("METRICS_PASSWORD", ""),

		DataDir:         getEnv("DATA_DIR", "./data"),
		CacheTTL:        getDurationEnv("CACHE_TTL", time.Hour),
		CacheMaxEntries: getIntEnv("CACHE_MAX_ENTRIES", 4096),
		DedupRetention:  getDurationEnv("DEDUP_RETENTION", 6*time.Hour),

		MaxMediaBytes:     getInt64Env("MAX_MEDIA_BYTES", 16<<20),
		SenderWindowMax:   getIntEnv("SENDER_WINDOW_MAX", 20),
		SenderWindow:      getDurationEnv("SENDER_WINDOW", 10*time.Minute),
		GlobalSendRPS:     getFloatEnv("GLOBAL_SEND_RPS", 50),
		ProcessingTimeout: getDurationEnv("PROCESSING_TIMEOUT", MessageProcessing),

		ArchiveBucket:    getEnv("ARCHIVE_BUCKET", ""),
		ArchiveEndpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
		ArchiveRegion:    getEnv("ARCHIVE_REGION", "auto"),
		ArchiveAccessKey: getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
		ArchiveSecretKey: getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		ArchiveKey:       getEnv("ARCHIVE_KEY", "snapshots/nochgpt.db.zst"),
		ArchiveInterval:  getDurationEnv("ARCHIVE_INTERVAL", 6*time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set.
func (c *Config) Validate() error {
	var errs []error

	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.WhatsAppToken == "" {
		errs = append(errs, errors.New("WA_TOKEN is required"))
	}
	if c.WhatsAppPhoneID == "" {
		errs = append(errs, errors.New("WA_PHONE_ID is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL))
	}
	if c.CacheMaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_MAX_ENTRIES must be positive, got %d", c.CacheMaxEntries))
	}
	if c.DedupRetention <= 0 {
		errs = append(errs, fmt.Errorf("DEDUP_RETENTION must be positive, got %v", c.DedupRetention))
	}
	if c.MaxMediaBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_MEDIA_BYTES must be positive, got %d", c.MaxMediaBytes))
	}
	if c.SenderWindowMax < 0 {
		errs = append(errs, fmt.Errorf("SENDER_WINDOW_MAX cannot be negative, got %d", c.SenderWindowMax))
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		errs = append(errs, fmt.Errorf("OPENAI_TEMPERATURE must be in [0,2], got %v", c.OpenAITemperature))
	}
	if c.ArchiveBucket != "" && (c.ArchiveAccessKey == "" || c.ArchiveSecretKey == "") {
		errs = append(errs, errors.New("ARCHIVE_ACCESS_KEY_ID and ARCHIVE_SECRET_ACCESS_KEY are required when ARCHIVE_BUCKET is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "nochgpt.db")
}

// ArchiveEnabled reports whether snapshot uploads are configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

// getEnv retrieves environment variable with fallback to default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64Env retrieves int64 environment variable with fallback to default value.
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value.
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
