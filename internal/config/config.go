package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// Upstream RFQ backend
	BackendBaseURL string
	OrgHeader      string
	BackendTimeout time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Identity provider
	IdentityPublicKeyPEM    string // Required for api/all unless InsecureSkipTokenVerify
	InsecureSkipTokenVerify bool   // Development only: decode tokens and confirm them with the backend

	// Server
	ApiPort           string
	ServiceApiPort    string // Localhost-only operational API
	CORSAllowedOrigin string
	SessionTTL        time.Duration

	// Notices
	NoticeLogPath  string
	NoticeFeedSize int

	// AWS S3 (attachment archive, optional)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	ArchiveS3Bucket    string

	// Console mode
	ConsoleToken     string
	ConsoleOrgID     string
	ConsoleStateFile string

	// Rate Limiting Defaults
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// ArchiveEnabled reports whether sent attachments should be archived to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveS3Bucket != ""
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Load basic string values
	cfg.BackendBaseURL = strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:8003/api"), "/")
	cfg.OrgHeader = getEnv("ORG_HEADER", "X-Org-Id")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.IdentityPublicKeyPEM = getEnv("IDENTITY_PUBLIC_KEY_PEM", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "8090")
	cfg.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")
	cfg.NoticeLogPath = getEnv("LOG_NOTICES", "")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.ArchiveS3Bucket = getEnv("ARCHIVE_S3_BUCKET", "")
	cfg.ConsoleToken = getEnv("CONSOLE_TOKEN", "")
	cfg.ConsoleOrgID = getEnv("CONSOLE_ORG_ID", "")
	cfg.ConsoleStateFile = getEnv("CONSOLE_STATE_FILE", ".smartrfq/console.json")

	// Load numeric and time duration values with defaults and parsing
	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	timeoutSeconds, err := strconv.ParseInt(getEnv("BACKEND_TIMEOUT_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT_SECONDS: %w", err)
	}
	cfg.BackendTimeout = time.Duration(timeoutSeconds) * time.Second

	sessionTTLMinutes, err := strconv.ParseInt(getEnv("SESSION_TTL_MINUTES", "720"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}
	cfg.SessionTTL = time.Duration(sessionTTLMinutes) * time.Minute

	cfg.NoticeFeedSize, err = strconv.Atoi(getEnv("NOTICE_FEED_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTICE_FEED_SIZE: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_RATE: %w", err)
	}

	if skip := getEnv("INSECURE_SKIP_TOKEN_VERIFY", ""); skip != "" {
		cfg.InsecureSkipTokenVerify, err = strconv.ParseBool(skip)
		if err != nil {
			return nil, fmt.Errorf("invalid INSECURE_SKIP_TOKEN_VERIFY: %w", err)
		}
	}
	if (cfg.RunMode == "api" || cfg.RunMode == "all") && strings.TrimSpace(cfg.IdentityPublicKeyPEM) == "" && !cfg.InsecureSkipTokenVerify {
		return nil, fmt.Errorf("missing required environment variable: IDENTITY_PUBLIC_KEY_PEM (or INSECURE_SKIP_TOKEN_VERIFY=true for development)")
	}

	if cfg.RunMode == "console" && cfg.ConsoleToken == "" {
		return nil, fmt.Errorf("missing required environment variable: CONSOLE_TOKEN")
	}

	return cfg, nil
}
