package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"qarilive-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr           string
	CORSAllowedOrigins []string

	// Storage
	DatabaseURL string
	RedisAddr   string
	RedisPass   string

	// Identity provider
	IdentityAdminURL   string
	IdentityAdminToken string
	IdentityPageSize   int
	UpstreamTimeout    time.Duration

	// JWT
	JWT jwt.Config

	// File host
	Drive DriveConfig

	// Submission intake
	ProofMaxBytes   int
	ProofFilePrefix string
}

type DriveConfig struct {
	FolderID           string
	ServiceAccountJSON string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:           getEnv("HTTP_ADDR", ":8000"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DatabaseURL: firstEnv("DATABASE_URL", "NEON_DATABASE_URL", "NETLIFY_DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),

		IdentityAdminURL:   getEnv("IDENTITY_ADMIN_URL", ""),
		IdentityAdminToken: getEnv("IDENTITY_ADMIN_TOKEN", ""),
		IdentityPageSize:   getEnvInt("IDENTITY_PAGE_SIZE", 100),
		UpstreamTimeout:    getEnvDuration("UPSTREAM_TIMEOUT", 20*time.Second),

		JWT: jwt.Config{
			Secret:        getEnv("IDENTITY_JWT_SECRET", ""),
			Leeway:        getEnvDuration("JWT_LEEWAY", 30*time.Second),
			AdminSubject:  getEnv("IDENTITY_ADMIN_SUBJECT", "qarilive-service"),
			AdminTokenTTL: 5 * time.Minute,
		},

		Drive: DriveConfig{
			FolderID:           getEnv("DRIVE_FOLDER_ID", ""),
			ServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			ClientID:           getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:       getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken:       getEnv("GOOGLE_REFRESH_TOKEN", ""),
		},

		ProofMaxBytes:   getEnvInt("PROOF_MAX_BYTES", 10<<20),
		ProofFilePrefix: getEnv("PROOF_FILE_PREFIX", "QariLive"),
	}
}

// Validate reports settings the server cannot start without.
func (c AppConfig) Validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "IDENTITY_JWT_SECRET")
	}
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.IdentityAdminURL == "" {
		missing = append(missing, "IDENTITY_ADMIN_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
