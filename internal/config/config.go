package config

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/bytehow/HotkeyMuzzle/internal/settings"
)

const (
	configFileName = "config.yaml"
	configDirName  = "hotkeymuzzle"
	statsSubDir    = "stats"

	DefaultListenAddr = "127.0.0.1:47800"
)

// Environment variables, highest priority.
const (
	EnvAddr      = "MUZZLE_ADDR"
	EnvStorage   = "MUZZLE_STORAGE"
	EnvConfigDir = "MUZZLE_CONFIG_DIR"
	EnvLogLevel  = "MUZZLE_LOG_LEVEL"
)

// Config represents the daemon configuration
type Config struct {
	ListenAddr           string `yaml:"listen_addr"`
	Storage              string `yaml:"storage"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	Beep                 bool   `yaml:"beep"`
	GlobalHotkey         bool   `yaml:"global_hotkey"`
	WatchSettings        bool   `yaml:"watch_settings"`
	LogLevel             string `yaml:"log_level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ListenAddr:           DefaultListenAddr,
		Storage:              settings.BackendJSON,
		DesktopNotifications: true,
		Beep:                 true,
		GlobalHotkey:         true,
		WatchSettings:        true,
		LogLevel:             "info",
	}
}

// getConfigDir returns the user's config directory for HotkeyMuzzle
func getConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", err
	}

	return filepath.Join(usr.HomeDir, ".config", configDirName), nil
}

// getConfigPath returns the full path to the config file
func getConfigPath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfig loads configuration from file on top of the defaults
func LoadConfig() (*Config, error) {
	config := Defaults()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// GetConfigPath returns the full path to the config file (exported for CLI commands)
func GetConfigPath() (string, error) {
	return getConfigPath()
}

// GetConfigDir returns the directory holding the config, settings and stats
func GetConfigDir() (string, error) {
	return getConfigDir()
}

// GetStatsDir returns the blocked-shortcut statistics directory path
func GetStatsDir() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, statsSubDir), nil
}

// Load resolves the configuration using the fallback priority system:
// environment variable, then .env file, then config file, then defaults.
func Load() (*Config, error) {
	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("⚠️  Warning: could not read .env: %v\n", err)
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvAddr); v != "" {
		config.ListenAddr = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		config.Storage = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	switch c.Storage {
	case settings.BackendJSON, settings.BackendSQLite:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", settings.ErrUnknownBackend, c.Storage, settings.BackendJSON, settings.BackendSQLite)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel accepts debug, info, warn and error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
