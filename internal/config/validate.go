package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validation constants define acceptable bounds for configuration values
const (
	// Token validation
	minTokenLength = 50 // Discord tokens are typically 50+ characters

	// IdleCheckInterval validation
	minIdleCheckInterval = 10 * time.Millisecond
	maxIdleCheckInterval = time.Minute

	// MaxUploadBytes validation
	minUploadBytes = 1 << 10
	maxUploadBytes = 500 << 20 // largest attachment the platform accepts

	// Command sync validation
	maxCommandSyncRate        = 50 // global REST rate limit per second
	minCommandSyncConcurrency = 1
	maxCommandSyncConcurrency = 32
)

// Validate checks if the configuration values are valid and within acceptable ranges.
// It returns all validation errors at once using errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateToken(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateIdleCheckInterval(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateStorage(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateCommandSync(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateSchedule(); err != nil {
		errs = append(errs, err)
	}

	if err := c.validateLogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %w", errors.Join(errs...))
	}

	return nil
}

// validateToken ensures the Discord token is present and has valid length
func (c *Config) validateToken() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required but not set")
	}

	if len(c.Token) < minTokenLength {
		return fmt.Errorf(
			"DISCORD_TOKEN appears invalid (too short: %d chars, expected %d+)",
			len(c.Token), minTokenLength,
		)
	}

	return nil
}

func (c *Config) validateIdleCheckInterval() error {
	if c.IdleCheckInterval < minIdleCheckInterval || c.IdleCheckInterval > maxIdleCheckInterval {
		return fmt.Errorf(
			"IDLE_CHECK_INTERVAL must be between %v and %v, got %v",
			minIdleCheckInterval, maxIdleCheckInterval, c.IdleCheckInterval,
		)
	}
	return nil
}

func (c *Config) validateStorage() error {
	var errs []error

	if c.SoundsDir == "" {
		errs = append(errs, fmt.Errorf("SOUNDS_DIR cannot be empty"))
	}

	ext := c.SoundExtension
	if len(ext) < 2 || !strings.HasPrefix(ext, ".") || strings.ContainsAny(ext[1:], `./\`) {
		errs = append(errs, fmt.Errorf("SOUND_EXTENSION must look like \".mp3\", got %q", ext))
	} else if ext != strings.ToLower(ext) {
		errs = append(errs, fmt.Errorf("SOUND_EXTENSION must be lower case, got %q", ext))
	}

	if c.MaxUploadBytes < minUploadBytes || c.MaxUploadBytes > maxUploadBytes {
		errs = append(errs, fmt.Errorf(
			"MAX_UPLOAD_BYTES must be between %d and %d, got %d",
			minUploadBytes, maxUploadBytes, c.MaxUploadBytes,
		))
	}

	return errors.Join(errs...)
}

func (c *Config) validateCommandSync() error {
	var errs []error

	if c.CommandSyncRate <= 0 || c.CommandSyncRate > maxCommandSyncRate {
		errs = append(errs, fmt.Errorf(
			"COMMAND_SYNC_RATE must be in (0, %d], got %v",
			maxCommandSyncRate, c.CommandSyncRate,
		))
	}

	if c.CommandSyncConcurrency < minCommandSyncConcurrency || c.CommandSyncConcurrency > maxCommandSyncConcurrency {
		errs = append(errs, fmt.Errorf(
			"COMMAND_SYNC_CONCURRENCY must be between %d and %d, got %d",
			minCommandSyncConcurrency, maxCommandSyncConcurrency, c.CommandSyncConcurrency,
		))
	}

	return errors.Join(errs...)
}

func (c *Config) validateSchedule() error {
	if c.CatalogReloadSchedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.CatalogReloadSchedule); err != nil {
		return fmt.Errorf("CATALOG_RELOAD_SCHEDULE is not a valid cron spec: %w", err)
	}
	return nil
}

func (c *Config) validateLogLevel() error {
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	return nil
}

// SlogLevel parses LogLevel; an empty level means info.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}
