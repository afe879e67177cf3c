package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the accounts client.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Auth    AuthConfig    `yaml:"auth"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	LoginRateRPS   int           `yaml:"login_rate_rps"`
	LoginRateBurst int           `yaml:"login_rate_burst"`
}

// BackendConfig holds configuration for the DuoCortex backend API.
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// AuthConfig holds session lifecycle configuration.
type AuthConfig struct {
	// RevalidationWindow is the minimum interval between token
	// revalidation calls against the backend.
	RevalidationWindow time.Duration `yaml:"revalidation_window"`

	// DevicePrefix is prepended to generated device identifiers.
	DevicePrefix string `yaml:"device_prefix"`

	// LoginPath is where the client is sent when a session is rejected.
	LoginPath string `yaml:"login_path"`
}

// OAuthConfig holds identity-provider configuration.
type OAuthConfig struct {
	GoogleClientID string `yaml:"google_client_id"`
	AppleClientID  string `yaml:"apple_client_id"`
	RedirectPath   string `yaml:"redirect_path"`
}

// StoreConfig holds credential store configuration.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory or file
	Path   string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Environment   string `yaml:"environment"`
	StoreEnabled  bool   `yaml:"store_enabled"`
	DBPath        string `yaml:"db_path"`
	BufferSize    int    `yaml:"buffer_size"`
	RetentionDays int    `yaml:"retention_days"`
}

// Load builds configuration from defaults, an optional YAML file pointed at
// by CONFIG_FILE, and environment variables, in that order of precedence.
func Load() *Config {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
		}
	}

	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           3000,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
			LoginRateRPS:   5,
			LoginRateBurst: 10,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:4000",
			RequestTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			RevalidationWindow: 10 * time.Minute,
			DevicePrefix:       "web-client",
			LoginPath:          "/login",
		},
		OAuth: OAuthConfig{
			RedirectPath: "/auth/google/callback",
		},
		Store: StoreConfig{
			Driver: "file",
			Path:   "./data/session.json",
		},
		Logging: LoggingConfig{
			Level:         "info",
			Environment:   "development",
			StoreEnabled:  false,
			DBPath:        "./data/logs.db",
			BufferSize:    1000,
			RetentionDays: 7,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.AllowedOrigins = getEnvSlice("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.LoginRateRPS = getEnvInt("LOGIN_RATE_RPS", cfg.Server.LoginRateRPS)
	cfg.Server.LoginRateBurst = getEnvInt("LOGIN_RATE_BURST", cfg.Server.LoginRateBurst)

	cfg.Backend.BaseURL = getEnv("BACKEND_URL", cfg.Backend.BaseURL)
	cfg.Backend.RequestTimeout = getEnvDuration("BACKEND_REQUEST_TIMEOUT", cfg.Backend.RequestTimeout)

	cfg.Auth.RevalidationWindow = getEnvDuration("AUTH_REVALIDATION_WINDOW", cfg.Auth.RevalidationWindow)
	cfg.Auth.DevicePrefix = getEnv("AUTH_DEVICE_PREFIX", cfg.Auth.DevicePrefix)
	cfg.Auth.LoginPath = getEnv("AUTH_LOGIN_PATH", cfg.Auth.LoginPath)

	cfg.OAuth.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", cfg.OAuth.GoogleClientID)
	cfg.OAuth.AppleClientID = getEnv("APPLE_CLIENT_ID", cfg.OAuth.AppleClientID)
	cfg.OAuth.RedirectPath = getEnv("OAUTH_REDIRECT_PATH", cfg.OAuth.RedirectPath)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.Path = getEnv("STORE_PATH", cfg.Store.Path)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Environment = getEnv("LOG_ENVIRONMENT", cfg.Logging.Environment)
	cfg.Logging.StoreEnabled = getEnvBool("LOG_STORE_ENABLED", cfg.Logging.StoreEnabled)
	cfg.Logging.DBPath = getEnv("LOG_DB_PATH", cfg.Logging.DBPath)
	cfg.Logging.BufferSize = getEnvInt("LOG_BUFFER_SIZE", cfg.Logging.BufferSize)
	cfg.Logging.RetentionDays = getEnvInt("LOG_RETENTION_DAYS", cfg.Logging.RetentionDays)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
