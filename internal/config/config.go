package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Feed     FeedConfig
	Sync     SyncConfig
	CORS     CORSConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// FeedConfig holds movement-feed provider configuration.
type FeedConfig struct {
	BaseURL  string
	APIToken string
}

// SyncConfig holds history-replay and nightly-job configuration.
type SyncConfig struct {
	// CronSpec is the nightly incremental schedule (cron format).
	CronSpec string
	// Workers bounds how many accounts are processed in parallel. Processing
	// within one account is always sequential.
	Workers int
	// FernetKey encrypts account document IDs at rest.
	FernetKey string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	workers, err := strconv.Atoi(getEnv("SYNC_WORKERS", "4"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid SYNC_WORKERS value: %s", getEnv("SYNC_WORKERS", "4"))
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stocks_ir.db"),
		},
		Feed: FeedConfig{
			BaseURL:  getEnv("FEED_BASE_URL", "https://investidor.b3.com.br/api"),
			APIToken: getEnv("FEED_API_TOKEN", ""),
		},
		Sync: SyncConfig{
			CronSpec:  getEnv("SYNC_CRON", "0 4 * * *"),
			Workers:   workers,
			FernetKey: getEnv("FERNET_KEY", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
