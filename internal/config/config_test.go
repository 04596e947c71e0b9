package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every variable the config reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "TODO_EMAIL", "TODO_PASSWORD",
		"DATABASE_URL", "LOG_LEVEL", "LOG_ENCODING", "TODO_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestNew_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected Dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("expected default timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.HasBackend() {
		t.Error("expected no backend configured")
	}
	if err := cfg.Validate(); err != ErrBackendNotConfigured {
		t.Errorf("expected ErrBackendNotConfigured, got %v", err)
	}
}

func TestNew_BackendFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	content := "url: https://example.supabase.co\nanon_key: public-key\nrequest_timeout: 3s\nlog_level: info\n"
	if err := os.WriteFile(filepath.Join(dir, BackendFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", BackendFile, err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.URL != "https://example.supabase.co" {
		t.Errorf("unexpected URL %q", cfg.URL)
	}
	if cfg.AnonKey != "public-key" {
		t.Errorf("unexpected key %q", cfg.AnonKey)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %q", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	content := "url: https://file.example\nanon_key: file-key\n"
	if err := os.WriteFile(filepath.Join(dir, BackendFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", BackendFile, err)
	}
	t.Setenv("SUPABASE_URL", "https://env.example")
	t.Setenv("TODO_REQUEST_TIMEOUT", "7")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.URL != "https://env.example" {
		t.Errorf("expected env URL, got %q", cfg.URL)
	}
	if cfg.AnonKey != "file-key" {
		t.Errorf("expected file key, got %q", cfg.AnonKey)
	}
	if cfg.RequestTimeout != 7*time.Second {
		t.Errorf("expected 7s timeout, got %s", cfg.RequestTimeout)
	}
}

func TestNew_DotEnvInConfigDir(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	content := "SUPABASE_URL=https://dotenv.example\nSUPABASE_ANON_KEY=dotenv-key\nTODO_EMAIL=a@b.com\nTODO_PASSWORD=secret\n"
	if err := os.WriteFile(filepath.Join(dir, EnvFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", EnvFile, err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.HasBackend() {
		t.Error("expected backend from .env")
	}
	if !cfg.HasCredentials() {
		t.Error("expected credentials from .env")
	}
}

func TestNew_InvalidBackendFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, BackendFile), []byte("url: [unterminated"), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", BackendFile, err)
	}

	if _, err := New(dir); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}
