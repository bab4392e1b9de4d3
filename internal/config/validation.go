package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"readinglist/pkg/oauth"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, section string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", section),
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateAbsoluteURL checks that value parses as an http(s) URL with a host.
func ValidateAbsoluteURL(field, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be an absolute http or https URL",
		}
	}
	return nil
}

// ValidatePath checks that value is an absolute URL path.
func ValidatePath(field, value string) error {
	if !strings.HasPrefix(value, "/") {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must start with /",
		}
	}
	return nil
}

// ValidatePort checks that port is a usable TCP port. Zero picks a free port.
func ValidatePort(field string, port int) error {
	if port < 0 || port > 65535 {
		return ValidationError{
			Field:   field,
			Value:   port,
			Message: "must be between 0 and 65535",
		}
	}
	return nil
}

// ValidateConfig checks every section and returns a
// ConfigurationErrorCollection when anything is wrong.
func ValidateConfig(cfg Config) error {
	errs := NewConfigurationErrorCollection()
	add := func(section string, err error) {
		if err != nil {
			errs.Add(NewConfigurationError("", section, "validation", err.Error()))
		}
	}

	add("api", ValidateAbsoluteURL("baseURL", cfg.API.BaseURL))
	add("api", ValidatePath("loginPath", cfg.API.LoginPath))
	add("api", ValidatePath("logoutPath", cfg.API.LogoutPath))
	add("api", ValidatePath("refreshPath", cfg.API.RefreshPath))
	if cfg.API.Timeout < 0 {
		add("api", ValidationError{Field: "timeout", Value: cfg.API.Timeout, Message: "must not be negative"})
	}

	if err := cfg.MachineAuth.Credentials().Validate(); err != nil {
		var cerr *oauth.ConfigurationError
		if errors.As(err, &cerr) {
			errs.Add(NewConfigurationErrorWithDetails("", "machineAuth", "validation", err.Error(), "",
				[]string{fmt.Sprintf("set both %s and %s, or neither", EnvConsumerKey, EnvConsumerSecret)}))
		} else {
			add("machineAuth", err)
		}
	}
	if cfg.MachineAuth.Credentials().Configured() {
		add("machineAuth", ValidateAbsoluteURL("tokenURL", cfg.MachineAuth.Credentials().Endpoint()))
	}

	add("server", ValidatePort("port", cfg.Server.Port))
	add("server", ValidateOneOf("storage", string(cfg.Server.Storage),
		[]string{string(StorageMemory), string(StoragePostgres)}))
	if cfg.Server.Storage == StoragePostgres {
		add("server", ValidateRequired("databaseURL", cfg.Server.DatabaseURL, "postgres storage"))
	}

	if errs.HasErrors() {
		return *errs
	}
	return nil
}

// NewConfigurationErrorCollection creates a new empty error collection
func NewConfigurationErrorCollection() *ConfigurationErrorCollection {
	return &ConfigurationErrorCollection{
		Errors: make([]ConfigurationError, 0),
	}
}
