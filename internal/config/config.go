package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port           string
	StorageBackend string // "mongo" or "sqlite"
	MongoURI       string
	SQLitePath     string
	RedisURL       string
	SessionTTL     time.Duration
	AllowedOrigins string
	Environment    string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	backend := getEnv("STORAGE_BACKEND", "")
	if backend == "" {
		// Default to Mongo when a URI is configured, SQLite otherwise.
		if os.Getenv("MONGODB_URI") != "" {
			backend = "mongo"
		} else {
			backend = "sqlite"
		}
	}

	return &Config{
		Port:           getEnv("PORT", "5000"),
		StorageBackend: backend,
		MongoURI:       getEnv("MONGODB_URI", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "drishti.db"),
		RedisURL:       getEnv("REDIS_URL", ""),
		SessionTTL:     time.Duration(getIntEnv("SESSION_TTL_HOURS", 24)) * time.Hour,
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", ""),
		Environment:    getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
