package util

import (
	"os"
	"time"
)

// EnvOrDefault returns the environment variable value or fallback when it is empty.
func EnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// EnvDurationOrDefault parses the environment variable as a duration,
// returning fallback when it is empty or malformed.
func EnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
