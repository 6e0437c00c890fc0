// Package config loads the metabo-ui runtime configuration from the
// environment (and an optional .env file) and exposes build metadata.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// Config holds everything the server needs at startup.
type Config struct {
	SecretKey     string `env:"APP_SECRET_KEY"`
	Listen        string `env:"METABO_LISTEN"`
	Port          int    `env:"METABO_PORT" envDefault:"5000"`
	SessionMaxAge int    `env:"METABO_SESSION_MAX_AGE" envDefault:"60"` // minutes

	// TrustedProxies lists the addresses or CIDRs whose forwarding headers
	// are believed. Empty means the socket peer is the client.
	TrustedProxies []string `env:"METABO_TRUSTED_PROXIES" envSeparator:","`

	Admin    AdminConfig
	Database DatabaseConfig
}

// AdminConfig identifies the god user bootstrapped at startup.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("METABO_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("METABO_DEBUG") == "true"
}

// GetLogFolder returns the folder for the log file, or "" when file logging is off.
func GetLogFolder() string {
	return os.Getenv("METABO_LOG_FOLDER")
}

// LoadDotEnv reads a .env file from the working directory when one exists.
// A missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("APP_SECRET_KEY cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be positive, got %d", c.SessionMaxAge)
	}
	if c.Admin.Email == "" {
		return errors.New("ADMIN_EMAIL cannot be empty")
	}
	if c.Admin.Password == "" {
		return errors.New("ADMIN_PASSWORD cannot be empty")
	}
	return c.Database.ValidateConfig()
}

// LoadDatabase parses only the database settings, for offline commands
// that never start the web server.
func LoadDatabase() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Database.ValidateConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}
