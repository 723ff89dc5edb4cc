// Package config loads and validates application configuration from environment
// variables. Loading collects every problem it finds and reports them together,
// so a misconfigured deployment fails once with the full list instead of
// failing variable by variable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvProduction is the APP_ENV value that switches the session cookie to its
// cross-site production policy (Secure, SameSite=None).
const EnvProduction = "production"

// PoolConfig holds settings for the PostgreSQL connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// AuthConfig holds everything the token codec and session transport consume:
// the signing secret, the token lifetime and the cookie policy. It is built
// once at startup and passed into the auth components explicitly.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration // session token lifetime
	CookieMaxAge time.Duration // session cookie Max-Age
	Environment  string        // "production" hardens the cookie attributes
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB     *PoolConfig
	Auth   *AuthConfig
	Server *ServerConfig
}

// getRequiredEnv reads a required environment variable, recording an error if
// it is missing.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an optional environment variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an optional integer variable. A malformed value is
// recorded as an error and the default is kept.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration reads an optional duration variable ("15m", "24h").
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig builds an AppConfig from the environment. It returns a single
// aggregated error when any variable is missing or malformed.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	// Database
	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := getOptionalEnvInt("DB_POOL_SIZE", 10, &errs)
	if poolSize < 1 {
		errs = append(errs, fmt.Sprintf("DB_POOL_SIZE must be at least 1, got %d", poolSize))
		poolSize = 1
	}

	db := &PoolConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	// Auth: signing secret, token lifetime, cookie policy.
	jwtSecret := getRequiredEnv("JWT_SECRET", &errs)
	tokenTTL := getOptionalEnvDuration("TOKEN_TTL", 24*time.Hour, &errs)
	cookieMaxAge := getOptionalEnvDuration("COOKIE_MAX_AGE", 24*time.Hour, &errs)
	environment := getOptionalEnv("APP_ENV", "development")

	auth := &AuthConfig{
		JWTSecret:    jwtSecret,
		TokenTTL:     tokenTTL,
		CookieMaxAge: cookieMaxAge,
		Environment:  environment,
	}

	server := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:     db,
		Auth:   auth,
		Server: server,
	}, nil
}

// IsProduction reports whether the cookie policy should use its hardened
// cross-site settings.
func (c *AuthConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}
