package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client and the stub server.
type Config struct {
	App     AppConfig
	API     APIConfig
	Logger  LoggerConfig
	Session SessionConfig
	Stub    StubConfig
}

// AppConfig controls client level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig locates the analysis backend.
type APIConfig struct {
	BaseURL string
	// VersionPrefix is prepended to every endpoint path.
	VersionPrefix string
	AuthToken     string
	// RequestTimeoutSeconds of 0 disables the client timeout; calls then rely
	// on the platform default.
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig seeds the mock session passed into each flow.
type SessionConfig struct {
	UserID     string
	Name       string
	Email      string
	Department string
}

// StubConfig configures the development stub server.
type StubConfig struct {
	Host            string
	Port            string
	JWTSecret       string
	TokenTTLMinutes int
	Redis           RedisConfig
}

// RedisConfig holds Redis connection values for the stub's task registry.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("STUB_REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid STUB_REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticketflow"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
			VersionPrefix:         getEnv("API_VERSION_PREFIX", "/api/v1"),
			AuthToken:             os.Getenv("API_AUTH_TOKEN"),
			RequestTimeoutSeconds: getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 0),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			UserID:     getEnv("SESSION_USER_ID", "local-user"),
			Name:       getEnv("SESSION_NAME", "Local User"),
			Email:      getEnv("SESSION_EMAIL", "user@example.com"),
			Department: getEnv("SESSION_DEPARTMENT", ""),
		},
		Stub: StubConfig{
			Host:            getEnv("STUB_HOST", "0.0.0.0"),
			Port:            getEnv("STUB_PORT", "8000"),
			JWTSecret:       getEnv("STUB_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes: getEnvAsInt("STUB_TOKEN_TTL_MINUTES", 60),
			Redis: RedisConfig{
				Addr:     getEnv("STUB_REDIS_ADDR", "127.0.0.1:6379"),
				Password: os.Getenv("STUB_REDIS_PASSWORD"),
				DB:       redisDB,
			},
		},
	}

	return cfg, nil
}

// Addr returns the stub server bind address.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// RequestTimeout returns the configured client timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
