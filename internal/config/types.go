package config

import (
	"time"

	"readinglist/pkg/oauth"
)

// Config is the top-level configuration structure for readinglist.
type Config struct {
	API         APIConfig         `yaml:"api"`
	MachineAuth MachineAuthConfig `yaml:"machineAuth"`
	Session     SessionConfig     `yaml:"session"`
	Server      ServerConfig      `yaml:"server"`
}

// APIConfig locates the book API and the managed-auth endpoints next to it.
type APIConfig struct {
	BaseURL     string        `yaml:"baseURL,omitempty"`     // Book API base URL (env: SERVICEURL)
	Timeout     time.Duration `yaml:"timeout,omitempty"`     // Per-request timeout (default: 30s)
	LoginPath   string        `yaml:"loginPath,omitempty"`   // Sign-in route (default: /auth/login)
	LogoutPath  string        `yaml:"logoutPath,omitempty"`  // Sign-out route (default: /auth/logout)
	RefreshPath string        `yaml:"refreshPath,omitempty"` // Session refresh route (default: /auth/refresh)
}

// MachineAuthConfig holds the OAuth2 client-credentials pair. When both
// halves are set every request carries a bearer token.
type MachineAuthConfig struct {
	ConsumerKey    string `yaml:"consumerKey,omitempty"`    // env: CONSUMERKEY
	ConsumerSecret string `yaml:"consumerSecret,omitempty"` // env: CONSUMERSECRET
	TokenURL       string `yaml:"tokenURL,omitempty"`       // env: TOKENURL
	APIKey         string `yaml:"apiKey,omitempty"`         // env: CHOREOAPIKEY
	APIKeyHeader   string `yaml:"apiKeyHeader,omitempty"`   // Header carrying APIKey (default: Choreo-API-Key)
}

// Credentials converts the section into issuer credentials.
func (m MachineAuthConfig) Credentials() oauth.Credentials {
	return oauth.Credentials{
		ConsumerKey:    m.ConsumerKey,
		ConsumerSecret: m.ConsumerSecret,
		TokenEndpoint:  m.TokenURL,
		APIKey:         m.APIKey,
		APIKeyHeader:   m.APIKeyHeader,
	}
}

// SessionConfig controls where the CLI keeps its session and cookie files.
type SessionConfig struct {
	StateDir string `yaml:"stateDir,omitempty"` // default: <config dir>/session
}

// StorageDriver selects the BookService repository.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StoragePostgres StorageDriver = "postgres"
)

// ServerConfig configures `readinglist serve`.
type ServerConfig struct {
	Host        string        `yaml:"host,omitempty"`
	Port        int           `yaml:"port,omitempty"`
	Storage     StorageDriver `yaml:"storage,omitempty"`
	DatabaseURL string        `yaml:"databaseURL,omitempty"` // env: READINGLIST_DATABASE_URL
}
