package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT secret shared with the identity provider
	JWTSecret string

	// Admin
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	// Claims
	ClaimDailyLimit    int
	AutoRejectSiblings bool
	RateLimitBackend   string
	RateLimitTimezone  string
	RedisURL           string

	// Retention
	RetentionGracePeriod   time.Duration
	RetentionInProcess     bool
	RetentionCheckInterval time.Duration

	// Media host
	MediaUploadURL  string
	MediaAPIKey     string
	MediaTimeout    time.Duration
	MediaMaxRetries int
	MaxImageBytes   int
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lostfound_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		ClaimDailyLimit:    parseInt(getEnv("CLAIM_DAILY_LIMIT", "3"), 3),
		AutoRejectSiblings: parseBool(getEnv("AUTO_REJECT_SIBLINGS", "true"), true),
		RateLimitBackend:   getEnv("RATE_LIMIT_BACKEND", "postgres"),
		RateLimitTimezone:  getEnv("RATE_LIMIT_TIMEZONE", "UTC"),
		RedisURL:           getEnv("REDIS_URL", ""),

		RetentionGracePeriod:   parseDuration(getEnv("RETENTION_GRACE_PERIOD", "96h"), 96*time.Hour),
		RetentionInProcess:     parseBool(getEnv("RETENTION_IN_PROCESS", "false"), false),
		RetentionCheckInterval: parseDuration(getEnv("RETENTION_CHECK_INTERVAL", "1h"), time.Hour),

		MediaUploadURL:  getEnv("MEDIA_UPLOAD_URL", ""),
		MediaAPIKey:     getEnv("MEDIA_API_KEY", ""),
		MediaTimeout:    parseDuration(getEnv("MEDIA_TIMEOUT", "30s"), 30*time.Second),
		MediaMaxRetries: parseInt(getEnv("MEDIA_MAX_RETRIES", "2"), 2),
		MaxImageBytes:   parseInt(getEnv("MAX_IMAGE_BYTES", "5242880"), 5*1024*1024),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Location returns the time zone used to cut calendar days for the claim counter.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.RateLimitTimezone)
	if err != nil {
		slog.Warn("invalid RATE_LIMIT_TIMEZONE, falling back to UTC", "timezone", c.RateLimitTimezone, "error", err)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
