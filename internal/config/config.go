package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT"`
		Mode           string `yaml:"mode" env:"SERVER_MODE"`
		CORSOrigins    string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
		TrustedProxies string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER,POSTGRES_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD,POSTGRES_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME,POSTGRES_DB"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		ResetGrantExpiration   string `yaml:"reset_grant_expiration" env:"JWT_RESET_GRANT_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	Fees struct {
		RegistrationThreshold float64 `yaml:"registration_threshold" env:"FEES_REGISTRATION_THRESHOLD"`
	} `yaml:"fees"`

	OTP struct {
		CodeLength  int    `yaml:"code_length" env:"OTP_CODE_LENGTH"`
		CodeTTL     string `yaml:"code_ttl" env:"OTP_CODE_TTL"`
		TokenTTL    string `yaml:"token_ttl" env:"OTP_TOKEN_TTL"`
		MaxAttempts int    `yaml:"max_attempts" env:"OTP_MAX_ATTEMPTS"`
	} `yaml:"otp"`

	Email struct {
		Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"`
		SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername   string `yaml:"smtp_username" env:"SMTP_USERNAME"`
		SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SMTPUseTLS     bool   `yaml:"smtp_use_tls" env:"SMTP_USE_TLS"`
		SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail      string `yaml:"from_email" env:"EMAIL_FROM"`
		BaseURL        string `yaml:"base_url" env:"APP_BASE_URL"`
	} `yaml:"email"`

	RateLimit struct {
		RequestsPerWindow int    `yaml:"requests_per_window" env:"RATE_LIMIT_REQUESTS"`
		Window            string `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	} `yaml:"rate_limit"`

	Sweeper struct {
		Interval string `yaml:"interval" env:"SWEEPER_INTERVAL"`
	} `yaml:"sweeper"`

	Seed struct {
		Enabled       bool   `yaml:"enabled" env:"SEED_ENABLED"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	// EnvOverrides lists the env tags that replaced file or default values
	EnvOverrides []string `yaml:"-"`
}

// Email providers
const (
	EmailProviderLog      = "log"
	EmailProviderSMTP     = "smtp"
	EmailProviderSendGrid = "sendgrid"
)

// LoadConfig loads configuration from an optional .env file, a YAML file and environment variables.
// Precedence, lowest first: defaults, YAML, environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// .env never overrides variables already present in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.CORSOrigins = "*"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "uniportal"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.ResetGrantExpiration = "15m"
	config.JWT.Issuer = "uniportal"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Fees.RegistrationThreshold = 50000

	config.OTP.CodeLength = 6
	config.OTP.CodeTTL = "10m"
	config.OTP.TokenTTL = "60m"
	config.OTP.MaxAttempts = 5

	config.Email.Provider = EmailProviderLog
	config.Email.SMTPPort = 587
	config.Email.SMTPUseTLS = true
	config.Email.FromName = "University Portal"
	config.Email.FromEmail = "no-reply@uniportal.local"
	config.Email.BaseURL = "http://localhost:8080"

	config.RateLimit.RequestsPerWindow = 5
	config.RateLimit.Window = "1m"

	config.Sweeper.Interval = "1m"

	config.Seed.Enabled = true
	config.Seed.AdminEmail = "admin@uniportal.local"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	applied, err := applyEnv(config)
	if err != nil {
		return err
	}
	config.EnvOverrides = applied
	return nil
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"JWT reset grant expiration":   config.JWT.ResetGrantExpiration,
		"OTP code TTL":                 config.OTP.CodeTTL,
		"OTP token TTL":                config.OTP.TokenTTL,
		"rate limit window":            config.RateLimit.Window,
		"sweeper interval":             config.Sweeper.Interval,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	for _, proxy := range config.TrustedProxyList() {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy %q: must be an IP or CIDR", proxy)
		}
	}

	if config.Fees.RegistrationThreshold < 0 {
		return fmt.Errorf("fee registration threshold must not be negative")
	}

	if config.OTP.CodeLength < 4 || config.OTP.CodeLength > 10 {
		return fmt.Errorf("OTP code length must be between 4 and 10")
	}

	if config.OTP.MaxAttempts < 1 {
		return fmt.Errorf("OTP max attempts must be at least 1")
	}

	switch config.Email.Provider {
	case EmailProviderLog:
	case EmailProviderSMTP:
		if config.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required for the smtp email provider")
		}
	case EmailProviderSendGrid:
		if config.Email.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required for the sendgrid email provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// CORSOriginList splits the comma separated CORS origin setting.
func (c *Config) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// TrustedProxyList splits the comma-separated trusted proxy IPs and CIDRs.
// Empty means forwarding headers are ignored and the peer address is the client IP.
func (c *Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.Server.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// MustDuration parses a duration already checked by validateConfig.
func MustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("config: unvalidated duration %q: %v", value, err))
	}
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
