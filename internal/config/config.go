package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend names accepted in [database] backend.
const (
	BackendFirebase = "firebase"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config is the resolved catch configuration.
type Config struct {
	Database Database
	Orders   Orders
	Log      Log
}

// Database selects and configures the remote store.
type Database struct {
	Backend      string
	URL          string
	Auth         string
	Path         string // sqlite file
	PollInterval time.Duration
}

// Orders locates the saved customer orders.
type Orders struct {
	Dir string
}

// Log configures the slog handler.
type Log struct {
	Path   string
	Level  string
	Format string
}

const (
	defaultConfigPath   = "~/.config/catch/config.toml"
	defaultBackend      = BackendSQLite
	defaultDBPath       = "~/.local/share/catch/catch.db"
	defaultPollInterval = time.Second
	defaultOrdersDir    = "~/.local/share/catch/orders"
	defaultLogPath      = "~/.local/share/catch/catch.log"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"

	envDatabaseURL  = "CATCH_DATABASE_URL"
	envDatabaseAuth = "CATCH_DATABASE_AUTH"
)

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database: Database{
			Backend:      defaultBackend,
			Path:         mustExpand(defaultDBPath),
			PollInterval: defaultPollInterval,
		},
		Orders: Orders{Dir: mustExpand(defaultOrdersDir)},
		Log: Log{
			Path:   mustExpand(defaultLogPath),
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// Load locates and parses the config, falling back to defaults when missing.
// CATCH_DATABASE_URL and CATCH_DATABASE_AUTH override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Database struct {
			Backend      string `toml:"backend"`
			URL          string `toml:"url"`
			Auth         string `toml:"auth"`
			Path         string `toml:"path"`
			PollInterval string `toml:"poll_interval"`
		} `toml:"database"`
		Orders struct {
			Dir string `toml:"dir"`
		} `toml:"orders"`
		Log struct {
			Path   string `toml:"path"`
			Level  string `toml:"level"`
			Format string `toml:"format"`
		} `toml:"log"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Database.Backend)); v != "" {
		cfg.Database.Backend = v
	}
	cfg.Database.URL = strings.TrimSpace(raw.Database.URL)
	cfg.Database.Auth = strings.TrimSpace(raw.Database.Auth)
	if v := strings.TrimSpace(raw.Database.Path); v != "" {
		cfg.Database.Path = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Database.PollInterval); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse database.poll_interval %q: %w", v, err)
		}
		cfg.Database.PollInterval = interval
	}
	if v := strings.TrimSpace(raw.Orders.Dir); v != "" {
		cfg.Orders.Dir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		cfg.Log.Path = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Log.Level)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Log.Format)); v != "" {
		cfg.Log.Format = v
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot fall back to a default.
func (c Config) Validate() error {
	switch c.Database.Backend {
	case BackendFirebase:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the %s backend", BackendFirebase)
		}
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown database.backend %q (want %s, %s or %s)",
			c.Database.Backend, BackendFirebase, BackendSQLite, BackendMemory)
	}
	if c.Database.PollInterval <= 0 {
		return fmt.Errorf("database.poll_interval must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q (want text or json)", c.Log.Format)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envDatabaseURL)); v != "" {
		cfg.Database.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(envDatabaseAuth)); v != "" {
		cfg.Database.Auth = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
