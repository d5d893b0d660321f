package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string

	// Shared secret and expected issuer for bearer tokens minted by the
	// identity provider. An empty issuer disables the issuer check.
	AuthSecret string
	AuthIssuer string

	CORSOrigins []string
	LogLevel    string
	LogFormat   string

	// S3-compatible object storage for avatar uploads. An empty bucket
	// disables the upload endpoint.
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	MaxUploadBytes int64
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:            fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AuthSecret:      strings.TrimSpace(os.Getenv("AUTH_TOKEN_SECRET")),
		AuthIssuer:      strings.TrimSpace(os.Getenv("AUTH_TOKEN_ISSUER")),
		CORSOrigins:     parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:        fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:       fallback(os.Getenv("LOG_FORMAT"), "text"),
		S3Bucket:        strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:        fallback(os.Getenv("S3_REGION"), "us-east-1"),
		S3Endpoint:      strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:     strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		S3PublicBaseURL: strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
	}

	megabytes := fallback(os.Getenv("MAX_UPLOAD_MB"), "5")
	if mb, err := strconv.Atoi(megabytes); err == nil && mb > 0 {
		cfg.MaxUploadBytes = int64(mb) << 20
	} else {
		cfg.MaxUploadBytes = 5 << 20
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.AuthSecret == "" {
		return Config{}, errors.New("AUTH_TOKEN_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// UploadsEnabled reports whether the avatar upload endpoint should be served.
func (c Config) UploadsEnabled() bool {
	return c.S3Bucket != ""
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
