package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"readinglist/internal/config"
	"readinglist/pkg/logging"
)

// Application holds the loaded configuration and the wired client pipeline.
//
// Example usage:
//
//	cfg := app.NewConfig(false, false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	list, err := application.Services().Books.List(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication initializes logging, loads and validates configuration,
// then wires the request pipeline. Session resolution is left to the
// caller so commands that never touch the API skip it.
func NewApplication(cfg *Config) (*Application, error) {
	settings, err := loadSettings(cfg)
	if err != nil {
		return nil, err
	}

	services, err := InitializeServices(cfg, settings)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the wired components.
func (a *Application) Services() *Services {
	return a.services
}

// Settings returns the effective configuration.
func (a *Application) Settings() *config.Config {
	return a.config.Settings
}

// loadSettings configures logging and resolves cfg.Settings.
func loadSettings(cfg *Config) (*config.Config, error) {
	appLogLevel, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return nil, config.NewConfigurationErrorWithDetails("", "flags", "validation",
			fmt.Sprintf("unknown log level %q", cfg.LogLevel), "",
			[]string{"Use one of: debug, info, warn, error"})
	}
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)

	if cfg.Settings == nil {
		configPath := cfg.ConfigPath
		if configPath == "" {
			p, err := config.GetDefaultConfigPath()
			if err != nil {
				return nil, err
			}
			configPath = p
		}

		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", configPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", configPath, err)
		}
		cfg.Settings = &loaded
	}

	if err := config.ValidateConfig(*cfg.Settings); err != nil {
		logging.Error("Bootstrap", err, "Invalid configuration")
		var coll config.ConfigurationErrorCollection
		if errors.As(err, &coll) {
			logging.Debug("Bootstrap", "%s", coll.GetDetailedReport())
		}
		return nil, err
	}
	return cfg.Settings, nil
}
