package config

import (
	"time"

	"readinglist/pkg/oauth"
)

const (
	DefaultBaseURL     = "http://localhost:8080"
	DefaultTimeout     = 30 * time.Second
	DefaultLoginPath   = "/auth/login"
	DefaultLogoutPath  = "/auth/logout"
	DefaultRefreshPath = "/auth/refresh"
	DefaultServerHost  = "localhost"
	DefaultServerPort  = 8080
)

// GetDefaultConfig returns the configuration used when no file or
// environment overrides are present.
func GetDefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			Timeout:     DefaultTimeout,
			LoginPath:   DefaultLoginPath,
			LogoutPath:  DefaultLogoutPath,
			RefreshPath: DefaultRefreshPath,
		},
		MachineAuth: MachineAuthConfig{
			TokenURL:     oauth.DefaultTokenURL,
			APIKeyHeader: oauth.DefaultAPIKeyHeader,
		},
		Server: ServerConfig{
			Host:    DefaultServerHost,
			Port:    DefaultServerPort,
			Storage: StorageMemory,
		},
	}
}
