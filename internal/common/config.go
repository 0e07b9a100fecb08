package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Agent    AgentConfig
	Ingest   IngestConfig
	Audit    AuditConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// AgentConfig holds classification-agent configuration. An empty BaseURL
// disables the agent path entirely: classification then runs in LEGACY
// mode only.
type AgentConfig struct {
	BaseURL       string
	ClassifyAgent string
	TriageAgent   string
	Threshold     float64
	Timeout       time.Duration
}

// IngestConfig holds drop-folder configuration
type IngestConfig struct {
	WatchDirs []string
	Debounce  time.Duration
}

// AuditConfig holds the local classification audit log configuration
type AuditConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Agent: AgentConfig{
			BaseURL:       getEnv("AGENT_URL", ""),
			ClassifyAgent: getEnv("AGENT_CLASSIFY_NAME", "clasificador-facturas"),
			TriageAgent:   getEnv("AGENT_TRIAGE_NAME", "triage-facturas"),
			Threshold:     getEnvAsFloat64("AGENT_CONFIDENCE_THRESHOLD", 0.75),
			Timeout:       getEnvAsDuration("AGENT_TIMEOUT", 45*time.Second),
		},
		Ingest: IngestConfig{
			WatchDirs: splitNonEmpty(getEnv("WATCH_DIRS", "")),
			Debounce:  getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
		Audit: AuditConfig{
			Path: getEnv("AUDIT_DB_PATH", ""),
		},
	}
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
