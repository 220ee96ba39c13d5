package config

import (
	"fmt"
	"os"
)

// Config holds everything the server needs, loaded from the environment.
type Config struct {
	ServerPort  string
	DatabaseURL string
	JWTSecret   string
	MinIOURL    string
	MinIOUser   string
	MinIOPass   string
	GinMode     string
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("PORT", "5000"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		MinIOURL:    getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOUser:   getEnv("MINIO_USER", "minioadmin"),
		MinIOPass:   getEnv("MINIO_PASS", "minioadmin"),
		GinMode:     getEnv("GIN_MODE", "debug"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
