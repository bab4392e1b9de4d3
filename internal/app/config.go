package app

import (
	"io"

	"readinglist/internal/config"
	"readinglist/internal/dispatch"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Silent suppresses log output
	Silent bool

	// LogOutput receives log lines when not silent (default: stderr)
	LogOutput io.Writer

	// LogLevel names the log level; Debug takes precedence
	LogLevel string

	// Custom configuration path (optional)
	// When empty, ~/.config/readinglist is used
	ConfigPath string

	// Navigator carries out redirects produced by the dispatcher
	Navigator dispatch.Navigator

	// Settings is the loaded configuration. When pre-populated,
	// loading from ConfigPath is skipped.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
