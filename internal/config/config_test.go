package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{envSyncURL, envFootballAPIKey, envWeatherAPIKey} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	// Keep a stray .env in the package directory from leaking in.
	t.Chdir(t.TempDir())
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.PushDelay != 2*time.Second {
		t.Fatalf("PushDelay = %v, want 2s", cfg.PushDelay)
	}
	if cfg.FixtureCacheTTL != 4*time.Hour {
		t.Fatalf("FixtureCacheTTL = %v, want 4h", cfg.FixtureCacheTTL)
	}
	if cfg.WeatherCity != "Falkirk" || cfg.WeatherCountry != "GB" {
		t.Fatalf("weather location = %q,%q, want Falkirk,GB", cfg.WeatherCity, cfg.WeatherCountry)
	}
	if cfg.SyncEnabled() {
		t.Fatalf("SyncEnabled = true with no sync_url")
	}
	if cfg.DatabasePath() != filepath.Join(wantDataDir, "matchday.db") {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
sync_url = "  https://script.example.com/exec  "
data_dir = "  ~/.matchday  "
push_delay_ms = 500
football_api_key = " abc "
weather_city = "Glasgow"
fixture_cache_hours = 1
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SyncURL != "https://script.example.com/exec" || !cfg.SyncEnabled() {
		t.Fatalf("SyncURL = %q, want trimmed URL", cfg.SyncURL)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.PushDelay != 500*time.Millisecond {
		t.Fatalf("PushDelay = %v, want 500ms", cfg.PushDelay)
	}
	if cfg.FootballAPIKey != "abc" {
		t.Fatalf("FootballAPIKey = %q, want abc", cfg.FootballAPIKey)
	}
	if cfg.WeatherCity != "Glasgow" || cfg.WeatherCountry != "GB" {
		t.Fatalf("weather location = %q,%q, want Glasgow,GB", cfg.WeatherCity, cfg.WeatherCountry)
	}
	if cfg.FixtureCacheTTL != time.Hour {
		t.Fatalf("FixtureCacheTTL = %v, want 1h", cfg.FixtureCacheTTL)
	}
	if cfg.Path() != path {
		t.Fatalf("Path = %q, want %q", cfg.Path(), path)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`sync_url = "https://file.example.com"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(envSyncURL, "https://env.example.com")
	t.Setenv(envWeatherAPIKey, "wkey")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SyncURL != "https://env.example.com" {
		t.Fatalf("SyncURL = %q, want env override", cfg.SyncURL)
	}
	if cfg.WeatherAPIKey != "wkey" {
		t.Fatalf("WeatherAPIKey = %q, want wkey", cfg.WeatherAPIKey)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	if err := os.WriteFile(".env", []byte("MATCHDAY_FOOTBALL_API_KEY=fromdotenv\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv(envFootballAPIKey) })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FootballAPIKey != "fromdotenv" {
		t.Fatalf("FootballAPIKey = %q, want fromdotenv", cfg.FootballAPIKey)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("sync_url = [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/data")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("expandPath = %q, want %q", got, filepath.Join(home, "data"))
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath(blank) returned nil error")
	}
}
