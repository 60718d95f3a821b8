package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequireSecrets bool
	RequireDBHost  bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {RequireSecrets: false, RequireDBHost: false},
	Test:        {RequireSecrets: false, RequireDBHost: false},
	CI:          {RequireSecrets: true, RequireDBHost: true},
	Production:  {RequireSecrets: true, RequireDBHost: true},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	reqs := requirements[env]

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if reqs.RequireDBHost && cfg.DBHost == "" {
			add("DB_HOST", "is required")
		}
		if reqs.RequireDBHost && cfg.DBName == "" {
			add("DB_NAME", "is required")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite driver")
		}
	default:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if reqs.RequireSecrets {
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			add("db_password", "secret is required")
		}
		if cfg.JWTSecret == "" {
			add("jwt_secret", "secret is required")
		}
	}
	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "must not be empty")
	}
	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}
	if cfg.TokenTTL <= 0 {
		add("TOKEN_TTL", "must be positive")
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > 100 {
		add("PAGE_SIZE", "must be between 1 and 100")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
