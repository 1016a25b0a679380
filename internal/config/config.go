package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port          string `validate:"required,numeric"`
	AppEnv        string `validate:"required"`
	StaticDir     string
	AllowedOrigin string `validate:"required"`

	// Database configuration
	DBType            string `validate:"required,oneof=sqlite mysql mariadb postgres postgresql sqlserver mssql"`
	DBDSN             string
	DBHost            string
	DBPort            string
	DBDatabase        string `validate:"required_without=DBDSN"`
	DBUser            string
	DBPassword        string
	DBConnectionLimit int `validate:"min=1"`

	// Authentication configuration
	AuthProvider      string `validate:"required,oneof=jwt authorizer"`
	JWTSecret         string
	JWTPublicKey      string
	JWTIssuer         string
	JWTAudience       string
	AuthzURL          string `validate:"required_if=AuthProvider authorizer"`
	AuthzClientID     string `validate:"required_if=AuthProvider authorizer"`
	IdentityDomain    string
	IdentityMgmtToken string
	IdentityAdminRole string

	// Role cache configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"min=0"`
	RoleCacheTTL  time.Duration `validate:"gt=0"`

	// Logging configuration
	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=text json"`
}

// IsDevelopment reports whether the service runs without the static front end
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AllowedOrigins splits ALLOWED_ORIGIN into its entries
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.AllowedOrigin, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// Load loads configuration from environment variables, after applying an optional .env file
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3001"),
		AppEnv:            getEnv("APP_ENV", "development"),
		StaticDir:         getEnv("STATIC_DIR", "client/build"),
		AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "*"),
		DBType:            getEnv("DB_TYPE", "sqlite"),
		DBDSN:             getEnv("DB_DSN", ""),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", ""),
		DBDatabase:        getEnv("DB_DATABASE", "sportfed.db"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		AuthProvider:      getEnv("AUTH_PROVIDER", "jwt"),
		JWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
		JWTPublicKey:      getEnv("AUTH_JWT_PUBLIC_KEY", ""),
		JWTIssuer:         getEnv("AUTH_JWT_ISSUER", ""),
		JWTAudience:       getEnv("AUTH_JWT_AUDIENCE", ""),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
		IdentityDomain:    getEnv("IDENTITY_DOMAIN", ""),
		IdentityMgmtToken: getEnv("IDENTITY_MGMT_TOKEN", ""),
		IdentityAdminRole: getEnv("IDENTITY_ADMIN_ROLE_ID", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RoleCacheTTL:      getEnvAsDuration("ROLE_CACHE_TTL", 5*time.Minute),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the field rules and the cross-field auth requirements
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.AuthProvider == "jwt" && c.JWTSecret == "" && c.JWTPublicKey == "" {
		return fmt.Errorf("AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY is required")
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a time.Duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
