package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	S3           S3Config
	Email        EmailConfig
	Push         PushConfig
	Notification NotificationConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for coupon import files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "coupons/")
}

// Email providers.
const (
	EmailProviderLog      = "log"
	EmailProviderPostmark = "postmark"
	EmailProviderSendGrid = "sendgrid"
)

// EmailConfig selects and configures the transactional email provider.
type EmailConfig struct {
	Provider            string
	From                string
	FromName            string
	PostmarkServerToken string
	SendGridAPIKey      string
}

// PushConfig configures the push notification gateway.
type PushConfig struct {
	Enabled     bool
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
}

// NotificationConfig bounds the post-commit notification fan-out.
type NotificationConfig struct {
	MaxConcurrent int
	Timeout       time.Duration
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "marketplace"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "coupons/"),
		},
		Email: EmailConfig{
			Provider:            getEnv("EMAIL_PROVIDER", EmailProviderLog),
			From:                getEnv("EMAIL_FROM", "orders@marketplace.local"),
			FromName:            getEnv("EMAIL_FROM_NAME", "Marketplace"),
			PostmarkServerToken: getEnv("POSTMARK_SERVER_TOKEN", ""),
			SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		},
		Push: PushConfig{
			Enabled:     getEnvAsBool("PUSH_ENABLED", false),
			Endpoint:    getEnv("PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send"),
			AccessToken: getEnv("PUSH_ACCESS_TOKEN", ""),
			Timeout:     getEnvAsDuration("PUSH_TIMEOUT", 5*time.Second),
		},
		Notification: NotificationConfig{
			MaxConcurrent: getEnvAsInt("NOTIFY_MAX_CONCURRENT", 8),
			Timeout:       getEnvAsDuration("NOTIFY_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	switch c.Email.Provider {
	case EmailProviderLog:
	case EmailProviderPostmark:
		if c.Email.PostmarkServerToken == "" {
			return fmt.Errorf("postmark server token is required when email provider is postmark")
		}
	case EmailProviderSendGrid:
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid API key is required when email provider is sendgrid")
		}
	default:
		return fmt.Errorf("invalid email provider: %s (must be log, postmark, or sendgrid)", c.Email.Provider)
	}

	if c.Email.From == "" {
		return fmt.Errorf("email sender address is required")
	}

	if c.Push.Enabled && c.Push.Endpoint == "" {
		return fmt.Errorf("push endpoint is required when push is enabled")
	}

	if c.Notification.MaxConcurrent < 1 {
		return fmt.Errorf("notification max concurrent must be at least 1")
	}

	if c.Notification.Timeout <= 0 {
		return fmt.Errorf("notification timeout must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
