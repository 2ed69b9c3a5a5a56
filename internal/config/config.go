package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds matchday's runtime settings.
type Config struct {
	SyncURL         string
	DataDir         string
	PushDelay       time.Duration
	FootballAPIKey  string
	WeatherAPIKey   string
	WeatherCity     string
	WeatherCountry  string
	FixtureCacheTTL time.Duration
	WeatherCacheTTL time.Duration
	RolloverCheck   time.Duration
	path            string
}

const (
	defaultConfigPath        = "~/.config/matchday/config.toml"
	defaultDataDir           = "~/.local/share/matchday"
	defaultPushDelayMS       = 2000
	defaultWeatherCity       = "Falkirk"
	defaultWeatherCountry    = "GB"
	defaultFixtureCacheHours = 4
	defaultWeatherCacheMins  = 30
	defaultRolloverCheck     = time.Minute

	envSyncURL        = "MATCHDAY_SYNC_URL"
	envFootballAPIKey = "MATCHDAY_FOOTBALL_API_KEY"
	envWeatherAPIKey  = "MATCHDAY_WEATHER_API_KEY"
)

// Load parses the TOML config at path (or the default location), falling
// back to defaults when the file is missing. A .env file in the working
// directory is loaded first; environment variables override file values.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env not loaded: %v", err)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw struct {
		SyncURL           string `toml:"sync_url"`
		DataDir           string `toml:"data_dir"`
		PushDelayMS       int    `toml:"push_delay_ms"`
		FootballAPIKey    string `toml:"football_api_key"`
		WeatherAPIKey     string `toml:"weather_api_key"`
		WeatherCity       string `toml:"weather_city"`
		WeatherCountry    string `toml:"weather_country"`
		FixtureCacheHours int    `toml:"fixture_cache_hours"`
	}

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := Config{
		SyncURL:         strings.TrimSpace(raw.SyncURL),
		FootballAPIKey:  strings.TrimSpace(raw.FootballAPIKey),
		WeatherAPIKey:   strings.TrimSpace(raw.WeatherAPIKey),
		WeatherCity:     strings.TrimSpace(raw.WeatherCity),
		WeatherCountry:  strings.TrimSpace(raw.WeatherCountry),
		WeatherCacheTTL: defaultWeatherCacheMins * time.Minute,
		RolloverCheck:   defaultRolloverCheck,
		path:            resolved,
	}
	if v, ok := lookupEnv(envSyncURL); ok {
		cfg.SyncURL = v
	}
	if v, ok := lookupEnv(envFootballAPIKey); ok {
		cfg.FootballAPIKey = v
	}
	if v, ok := lookupEnv(envWeatherAPIKey); ok {
		cfg.WeatherAPIKey = v
	}

	dataDir := strings.TrimSpace(raw.DataDir)
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	cfg.DataDir, err = expandPath(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("data_dir: %w", err)
	}

	if raw.PushDelayMS <= 0 {
		raw.PushDelayMS = defaultPushDelayMS
	}
	cfg.PushDelay = time.Duration(raw.PushDelayMS) * time.Millisecond

	if raw.FixtureCacheHours <= 0 {
		raw.FixtureCacheHours = defaultFixtureCacheHours
	}
	cfg.FixtureCacheTTL = time.Duration(raw.FixtureCacheHours) * time.Hour

	if cfg.WeatherCity == "" {
		cfg.WeatherCity = defaultWeatherCity
	}
	if cfg.WeatherCountry == "" {
		cfg.WeatherCountry = defaultWeatherCountry
	}

	return cfg, nil
}

// SyncEnabled reports whether a sync endpoint is configured.
func (c Config) SyncEnabled() bool {
	return strings.TrimSpace(c.SyncURL) != ""
}

// Path returns the resolved config file location.
func (c Config) Path() string {
	return c.path
}

// DatabasePath returns the SQLite file holding game state and caches.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "matchday.db")
}

// LogPath returns the file that receives log output while the TUI runs.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "matchday.log")
}

func lookupEnv(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
