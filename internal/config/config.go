package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token                  string
	ActiveGuilds           []string
	SoundsDir              string
	SoundExtension         string
	IdleCheckInterval      time.Duration
	MaxUploadBytes         int64
	CommandSyncRate        float64
	CommandSyncConcurrency int
	MetricsAddr            string
	DatabaseURL            string
	CatalogReloadSchedule  string
	LogLevel               string
	LogFile                string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	token := readSecret("discord_token")
	if token == "" {
		token = takeEnv("DISCORD_TOKEN")
	}
	if token == "" {
		token = takeEnv("TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set (via secret or env var)")
	}

	dbURL := readSecret("database_url")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	cfg := &Config{
		Token:                  token,
		ActiveGuilds:           parseGuildIDs(os.Getenv("ACTIVE_GUILDS")),
		SoundsDir:              envString("SOUNDS_DIR", "data/mp3"),
		SoundExtension:         envString("SOUND_EXTENSION", ".mp3"),
		IdleCheckInterval:      envDuration("IDLE_CHECK_INTERVAL", 100*time.Millisecond),
		MaxUploadBytes:         int64(envInt("MAX_UPLOAD_BYTES", 8<<20)),
		CommandSyncRate:        envFloat("COMMAND_SYNC_RATE", 2),
		CommandSyncConcurrency: envInt("COMMAND_SYNC_CONCURRENCY", 4),
		MetricsAddr:            envLookup("METRICS_ADDR", ":9090"),
		DatabaseURL:            dbURL,
		CatalogReloadSchedule:  envString("CATALOG_RELOAD_SCHEDULE", ""),
		LogLevel:               envString("LOG_LEVEL", "info"),
		LogFile:                envString("LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var secretsDir = "/run/secrets/"

func readSecret(name string) string {
	data, err := os.ReadFile(secretsDir + name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// takeEnv reads key and removes it from the process environment.
func takeEnv(key string) string {
	v := os.Getenv(key)
	if v != "" {
		_ = os.Unsetenv(key)
	}
	return v
}

// parseGuildIDs splits a comma separated list of snowflakes. Invalid entries
// are logged and skipped.
func parseGuildIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			slog.Warn("Invalid guild id provided, ignoring", "id", id)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envLookup is envString, except that an explicitly empty value is kept.
func envLookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
