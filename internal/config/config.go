// Package config handles the XDG configuration directory and backend settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// BackendFile holds the backend URL and public key.
	BackendFile = "backend.yaml"

	// EnvFile is loaded from the config directory and the working directory.
	EnvFile = ".env"

	// DefaultRequestTimeout bounds every backend call.
	DefaultRequestTimeout = 10 * time.Second
)

// ErrBackendNotConfigured is returned when the backend URL or key is missing.
var ErrBackendNotConfigured = errors.New("backend not configured (set SUPABASE_URL and SUPABASE_ANON_KEY)")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// URL is the backend base URL, e.g. https://xyz.supabase.co.
	URL string

	// AnonKey is the backend's public key.
	AnonKey string

	// Email and Password, when both set, sign the one-shot commands in.
	Email    string
	Password string

	// DatabaseURL is used only by setup --apply.
	DatabaseURL string

	RequestTimeout time.Duration
	LogLevel       string
	LogEncoding    string
}

// backendFile mirrors backend.yaml.
type backendFile struct {
	URL            string `yaml:"url"`
	AnonKey        string `yaml:"anon_key"`
	RequestTimeout string `yaml:"request_timeout"`
	LogLevel       string `yaml:"log_level"`
	LogEncoding    string `yaml:"log_encoding"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// Settings are read from backend.yaml, then .env files, then the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:            dir,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       "warn",
		LogEncoding:    "console",
	}

	if err := cfg.loadBackendFile(); err != nil {
		return nil, err
	}

	// .env never overrides variables already set in the process.
	_ = godotenv.Load(filepath.Join(dir, EnvFile))
	_ = godotenv.Load(EnvFile)

	cfg.applyEnv()
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// BackendPath returns the path to backend.yaml.
func (c *Config) BackendPath() string {
	return filepath.Join(c.Dir, BackendFile)
}

// HasBackend reports whether both the backend URL and key are known.
func (c *Config) HasBackend() bool {
	return c.URL != "" && c.AnonKey != ""
}

// HasCredentials reports whether email and password are both set.
func (c *Config) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

// Validate checks the settings needed to reach the backend.
func (c *Config) Validate() error {
	if !c.HasBackend() {
		return ErrBackendNotConfigured
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func (c *Config) loadBackendFile() error {
	data, err := os.ReadFile(c.BackendPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", BackendFile, err)
	}

	var f backendFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid %s: %w", BackendFile, err)
	}

	c.URL = f.URL
	c.AnonKey = f.AnonKey
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.LogEncoding != "" {
		c.LogEncoding = f.LogEncoding
	}
	if f.RequestTimeout != "" {
		d, err := time.ParseDuration(f.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid %s: request_timeout: %w", BackendFile, err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c *Config) applyEnv() {
	c.URL = getString("SUPABASE_URL", c.URL)
	c.AnonKey = getString("SUPABASE_ANON_KEY", c.AnonKey)
	c.Email = getString("TODO_EMAIL", c.Email)
	c.Password = getString("TODO_PASSWORD", c.Password)
	c.DatabaseURL = getString("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getString("LOG_LEVEL", c.LogLevel)
	c.LogEncoding = getString("LOG_ENCODING", c.LogEncoding)
	c.RequestTimeout = getDuration("TODO_REQUEST_TIMEOUT", c.RequestTimeout)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
