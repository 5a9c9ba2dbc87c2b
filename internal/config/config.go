package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the runtime settings of the client backend.
type Config struct {
	ListenAddr string
	DBPath     string
	FeedURL    string
	JWTSecret  string
}

// Load reads configuration from the environment, with an optional
// .env file. Missing variables fall back to development defaults.
func Load() *Config {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	return &Config{
		ListenAddr: getEnv("TRADEDESK_LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("TRADEDESK_DB_PATH", "tradedesk.db"),
		FeedURL:    getEnv("TRADEDESK_FEED_URL", "wss://feed.tradedesk.local/ws"),
		JWTSecret:  getEnv("TRADEDESK_JWT_SECRET", "dev-secret"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
