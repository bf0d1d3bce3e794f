package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Discord
	Token   string
	GuildID string

	// Ledger
	LedgerPath string

	// HTTP ops surface
	HTTPAddr string

	// Sessions
	SessionTimeout time.Duration

	LogLevel string
}

// Load reads configuration from the environment, with a .env file
// honored when present. The bot token is the one hard requirement.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:          os.Getenv("FIVESNIGHT_TOKEN"),
		GuildID:        os.Getenv("FIVESNIGHT_GUILD_ID"),
		LedgerPath:     getEnv("FIVESNIGHT_LEDGER_PATH", "match_history.json"),
		HTTPAddr:       getEnv("FIVESNIGHT_HTTP_ADDR", ":8080"),
		SessionTimeout: parseDuration(getEnv("FIVESNIGHT_SESSION_TIMEOUT", "180s")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Token == "" {
		return nil, errors.New("FIVESNIGHT_TOKEN is not set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 180 * time.Second
	}
	return d
}
