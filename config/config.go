package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Image storage
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string

	// Logging
	LogLevel  string
	LogFormat string

	// API behaviour
	DefaultPageSize   int
	RecipeCreateLimit int
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCommon reads the settings that are never secret.
func loadCommon(cfg *Config, defaults bool) {
	def := func(v string) string {
		if defaults {
			return v
		}
		return ""
	}

	cfg.ServerPort = getEnv("SERVER_PORT", def("8080"))
	cfg.ServerHost = getEnv("SERVER_HOST", def("0.0.0.0"))
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))

	cfg.DBDriver = getEnv("DB_DRIVER", "postgres")
	cfg.DBHost = getEnv("DB_HOST", def("localhost"))
	cfg.DBPort = getEnv("DB_PORT", def("5432"))
	cfg.DBName = getEnv("DB_NAME", def("foodgram"))
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "foodgram.db")
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", "migrations")

	cfg.RedisHost = getEnv("REDIS_HOST", def("localhost"))
	cfg.RedisPort = getEnv("REDIS_PORT", def("6379"))
	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)

	cfg.S3Bucket = getEnv("S3_BUCKET_NAME", "")
	cfg.S3Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	cfg.DefaultPageSize = getEnvInt("PAGE_SIZE", 6)
	cfg.RecipeCreateLimit = getEnvInt("RECIPE_CREATE_LIMIT", 20)
}

// loadCIConfig loads configuration for CI environment using ONLY environment variables
func loadCIConfig(cfg *Config) {
	loadCommon(cfg, false)
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
}

// loadDevConfig loads configuration for development and test environments.
// Secrets fall back to environment variables and then to local defaults.
func loadDevConfig(cfg *Config) {
	loadCommon(cfg, true)
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")
	cfg.DBUser = secretOrEnv("db_user", "DB_USER", "postgres")
	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD", "postgres")
	cfg.JWTSecret = secretOrEnv("jwt_secret", "JWT_SECRET", "dev-secret-key")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD", "")
}

// loadProdConfig loads configuration for production environment, sensitive values from Docker secrets
func loadProdConfig(cfg *Config) {
	loadCommon(cfg, false)
	cfg.DBUser = secretOrEnv("db_user", "DB_USER", "")
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func secretOrEnv(secret, envKey, fallback string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return getEnv(envKey, fallback)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
