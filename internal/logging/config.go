package logging

import (
	"fmt"
)

// Config holds logging-related configuration
type Config struct {
	Level       string // debug, info, warn, error
	Format      string // text or json
	File        string // Optional path to a rotated log file
	MaxSize     int    // Max size in MB
	MaxBackups  int    // Number of backups to keep
	MaxAge      int    // Max age in days
	LogRequests bool   // Emit one line per HTTP request
	SentryDSN   string
	Environment string
}

// Validate checks if the configuration is valid
func (l *Config) Validate() error {
	validLevels := map[string]bool{
		LevelDebug: true,
		LevelInfo:  true,
		LevelWarn:  true,
		LevelError: true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != FormatText && l.Format != FormatJSON {
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	if l.File != "" && l.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive")
	}

	if l.MaxBackups < 0 {
		return fmt.Errorf("max_backups must be non-negative")
	}

	if l.MaxAge < 0 {
		return fmt.Errorf("max_age must be non-negative")
	}

	return nil
}
