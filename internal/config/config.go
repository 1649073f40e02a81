package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         string
	StoreTimeout time.Duration
}

func Load() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		StoreTimeout: time.Duration(getEnvInt("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
