package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"readinglist/pkg/logging"
)

const (
	userConfigDir  = ".config/readinglist"
	configFileName = "config.yaml"
	envFileName    = ".env"
	sessionDirName = "session"
)

// Environment variables that override file values.
const (
	EnvServiceURL     = "SERVICEURL"
	EnvConsumerKey    = "CONSUMERKEY"
	EnvConsumerSecret = "CONSUMERSECRET"
	EnvTokenURL       = "TOKENURL"
	EnvAPIKey         = "CHOREOAPIKEY"
	EnvDatabaseURL    = "READINGLIST_DATABASE_URL"
	EnvStorage        = "READINGLIST_STORAGE"
)

// Package-level seams for tests.
var (
	osUserHomeDir = os.UserHomeDir
	osLookupEnv   = os.LookupEnv
	osGetwd       = os.Getwd
)

// GetDefaultConfigPath returns ~/.config/readinglist.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig builds the effective configuration. Precedence, lowest first:
// defaults, config.yaml in configPath, .env files (configPath, then the
// working directory), the process environment.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, NewConfigurationError(configFilePath, "file", "io", err.Error())
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, NewConfigurationErrorWithDetails(configFilePath, "file", "parse",
				"malformed YAML", err.Error(), []string{"check indentation and key names against the documented sections"})
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	dotenv, err := readDotEnv(configPath)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&config, func(key string) (string, bool) {
		if v, ok := osLookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	if config.Session.StateDir == "" {
		config.Session.StateDir = filepath.Join(configPath, sessionDirName)
	}
	return config, nil
}

// readDotEnv merges .env files without touching the process environment.
// Entries in the config directory win over the working directory.
func readDotEnv(configPath string) (map[string]string, error) {
	values := map[string]string{}

	var paths []string
	if wd, err := osGetwd(); err == nil {
		paths = append(paths, filepath.Join(wd, envFileName))
	}
	paths = append(paths, filepath.Join(configPath, envFileName))

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		env, err := godotenv.Read(p)
		if err != nil {
			return nil, NewConfigurationError(p, "env", "parse", err.Error())
		}
		for k, v := range env {
			values[k] = v
		}
		logging.Debug("ConfigLoader", "Loaded %d entries from %s", len(env), p)
	}
	return values, nil
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvServiceURL, &config.API.BaseURL)
	set(EnvConsumerKey, &config.MachineAuth.ConsumerKey)
	set(EnvConsumerSecret, &config.MachineAuth.ConsumerSecret)
	set(EnvTokenURL, &config.MachineAuth.TokenURL)
	set(EnvAPIKey, &config.MachineAuth.APIKey)
	set(EnvDatabaseURL, &config.Server.DatabaseURL)

	if v, ok := lookup(EnvStorage); ok && v != "" {
		config.Server.Storage = StorageDriver(v)
	}
}
