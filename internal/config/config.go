package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	StatePath           string
	Passphrase          string
	BaseCurrency        string
	QuoteURL            string
	QuoteRetryMax       int
	QuoteRetryBaseDelay time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// The state file defaults to ~/.folio/state.enc.
func Load() Config {
	return Config{
		StatePath:           envOrDefault("FOLIO_STATE_PATH", defaultStatePath()),
		Passphrase:          envOrDefaultWarn("FOLIO_PASSPHRASE", ""),
		BaseCurrency:        envOrDefault("FOLIO_CURRENCY", "EUR"),
		QuoteURL:            envOrDefault("FOLIO_QUOTE_URL", "https://api.coingecko.com/api/v3"),
		QuoteRetryMax:       envOrDefaultInt("FOLIO_QUOTE_RETRY_MAX", 5),
		QuoteRetryBaseDelay: envOrDefaultDuration("FOLIO_QUOTE_RETRY_BASE_DELAY", 2*time.Second),
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "folio-state.enc"
	}
	return filepath.Join(home, ".folio", "state.enc")
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
