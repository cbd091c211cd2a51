// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion     string
	S3Bucket      string
	ReportsPrefix string
	ResultsPrefix string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Notifications
	AnalysisWebhookURL string
	SESSenderEmail     string
	DashboardURL       string

	// Simulation
	SessionTTLMinutes    int
	SessionSweepSchedule string

	// Retention
	AnalysisRetentionDays int
	RetentionSchedule     string

	// Application
	Port     string
	Stage    string
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{
		// AWS
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", "fico-simulator-reports-dev"),
		ReportsPrefix: normalizePrefix(getEnv("REPORTS_PREFIX", "reports/")),
		ResultsPrefix: normalizePrefix(getEnv("RESULTS_PREFIX", "results/")),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "fico_simulator"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),

		// Notifications
		AnalysisWebhookURL: getEnv("ANALYSIS_WEBHOOK_URL", ""),
		SESSenderEmail:     getEnv("SES_SENDER_EMAIL", ""),
		DashboardURL:       getEnv("DASHBOARD_URL", "http://localhost:5173"),

		// Simulation
		SessionTTLMinutes:    getEnvInt("SESSION_TTL_MINUTES", 30),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),

		// Retention
		AnalysisRetentionDays: getEnvInt("ANALYSIS_RETENTION_DAYS", 90),
		RetentionSchedule:     getEnv("RETENTION_SCHEDULE", "@daily"),

		// Application
		Port:     getEnv("PORT", "8080"),
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable" // Disable SSL for local development
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// SessionTTL returns the idle timeout for simulation sessions.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// AnalysisRetention returns how long stored analyses are kept. Zero disables
// purging.
func (c *Config) AnalysisRetention() time.Duration {
	if c.AnalysisRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.AnalysisRetentionDays) * 24 * time.Hour
}

// ListenAddr returns the address for the local HTTP server.
func (c *Config) ListenAddr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
