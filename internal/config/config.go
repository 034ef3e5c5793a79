package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Version is the single version string reported by the CLI and the health
// endpoint.
const Version = "0.1.0"

// Config holds the runtime settings shared by the CLI commands and the
// search service.
type Config struct {
	DBPath string
	Port   string
	Env    string
}

// Load reads configuration from environment variables, with a .env file
// honored for development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath: getEnv("CHATVAULT_DB", "chat_history.sqlite"),
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
