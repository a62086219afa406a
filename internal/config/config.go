package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// QA source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Fallback sink kinds.
const (
	SinkFile     = "file"
	SinkPostgres = "postgres"
)

// DefaultFallbackMessage is returned to the user whenever no stored question matches.
const DefaultFallbackMessage = "I can't answer this question."

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database (only needed when a Postgres source or sink is selected)
	DatabaseURL string

	// QA dataset
	QASource      string // "csv" or "postgres"
	QADatasetPath string

	// Fallback log
	FallbackSink    string // "file" or "postgres"
	FallbackLogPath string
	FallbackMessage string

	// Matching
	MatchThreshold   float64
	MaxMessageLength int

	// Spell correction
	SpellcheckEnabled   bool
	SpellDictionaryPath string

	// Rate limiting
	RedisURL       string // Limiter storage; in-memory when empty
	RateLimitMax   int
	RateLimitEvery time.Duration

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// SMTP (unanswered digest)
	SMTPEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "tls", "starttls"

	// Digest
	DigestRecipients []string
	DigestInterval   time.Duration

	// Site
	SiteTitle string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		QASource:      strings.ToLower(getEnv("QA_SOURCE", SourceCSV)),
		QADatasetPath: getEnv("QA_DATASET_PATH", "test.csv"),

		FallbackSink:    strings.ToLower(getEnv("FALLBACK_SINK", SinkFile)),
		FallbackLogPath: getEnv("FALLBACK_LOG_PATH", "bank.csv"),
		FallbackMessage: getEnv("FALLBACK_MESSAGE", DefaultFallbackMessage),

		MatchThreshold:   getEnvFloat("MATCH_THRESHOLD", 0.85),
		MaxMessageLength: getEnvInt("MAX_MESSAGE_LENGTH", 1000),

		SpellcheckEnabled:   getEnv("SPELLCHECK_DISABLED", "") == "",
		SpellDictionaryPath: getEnv("SPELL_DICTIONARY_PATH", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		RateLimitMax:   getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitEvery: getEnvDuration("RATE_LIMIT_EXPIRATION", time.Minute),

		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		SMTPEnabled:  getEnv("SMTP_ENABLED", "") != "",
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "QA Bot"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		DigestRecipients: splitList(getEnv("DIGEST_RECIPIENTS", "")),
		DigestInterval:   getEnvDuration("DIGEST_INTERVAL", 24*time.Hour),

		SiteTitle: getEnv("SITE_TITLE", "QA Bot"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// NeedsDatabase reports whether any component is backed by Postgres.
func (c *Config) NeedsDatabase() bool {
	return c.QASource == SourcePostgres || c.FallbackSink == SinkPostgres
}

// IsEmailEnabled returns true if SMTP is fully configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPEnabled && c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsDigestEnabled returns true if unanswered-question digests should be sent.
func (c *Config) IsDigestEnabled() bool {
	return c.IsEmailEnabled() && len(c.DigestRecipients) > 0
}
