package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration. Secrets and endpoints are
// injected here once at startup; nothing below this layer reads the
// environment directly.
type Config struct {
	ServerPort      int
	DatabasePath    string
	JWTSecret       string
	SessionTokenTTL time.Duration
	ResetTokenTTL   time.Duration
	ResetBaseURL    string // base URL the reset link points the client at
	MailAPIKey      string // empty disables real delivery
	MailBaseURL     string
	MailFromEmail   string
	MailFromName    string
	AllowedOrigins  []string
	CleanupSchedule string // cron expression for the reset-token sweeper
	LogLevel        string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	sessionHours, err := strconv.Atoi(getEnv("SESSION_TOKEN_TTL_HOURS", "24"))
	if err != nil {
		return nil, err
	}

	resetMinutes, err := strconv.Atoi(getEnv("RESET_TOKEN_TTL_MINUTES", "15"))
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./ipquest.db"),
		JWTSecret:       secret,
		SessionTokenTTL: time.Duration(sessionHours) * time.Hour,
		ResetTokenTTL:   time.Duration(resetMinutes) * time.Minute,
		ResetBaseURL:    getEnv("RESET_BASE_URL", "http://localhost:3000/reset-password"),
		MailAPIKey:      os.Getenv("MAIL_API_KEY"),
		MailBaseURL:     getEnv("MAIL_BASE_URL", "https://api.sendgrid.com"),
		MailFromEmail:   getEnv("MAIL_FROM_EMAIL", "no-reply@ipquest.app"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "IPQuest"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "@hourly"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
