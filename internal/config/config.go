package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the client needs to reach the compliance platform
// and keep its local state.
type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	DBPath     string
	LogLevel   string
	LogFormat  string
}

// Load reads an optional .env file, then resolves configuration from the
// environment with sensible defaults. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL: getEnv("CONFORMLY_API_URL", "http://localhost:8000"),
		APITimeout: getDuration("CONFORMLY_API_TIMEOUT_SECONDS", 120*time.Second),
		DBPath:     os.Getenv("CONFORMLY_DB_PATH"),
		LogLevel:   getEnv("CONFORMLY_LOG_LEVEL", "info"),
		LogFormat:  getEnv("CONFORMLY_LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
