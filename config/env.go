package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment.
// CI=true wins over ENV; an unknown or empty ENV means development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := Environment(strings.ToLower(os.Getenv("ENV"))); env {
	case Production, Test, Development:
		return env
	default:
		return Development
	}
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}

// IsTest returns true if the current environment is test
func IsTest() bool {
	return GetEnvironment() == Test
}
