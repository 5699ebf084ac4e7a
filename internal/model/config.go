package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DatabaseConfig holds local storage settings.
type DatabaseConfig struct {
	// Path is the SQLite database file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// CheckConfig holds due-item check loop settings.
type CheckConfig struct {
	// IntervalMinutes is how often the periodic checker re-evaluates due items.
	IntervalMinutes int `mapstructure:"interval_minutes" yaml:"interval_minutes"`

	// UpcomingWindowDays bounds the "upcoming" status window.
	UpcomingWindowDays int `mapstructure:"upcoming_window_days" yaml:"upcoming_window_days"`
}

// AnalyticsConfig holds streak/compliance settings.
type AnalyticsConfig struct {
	// LookbackDays is the trailing window for streak and compliance math.
	LookbackDays int `mapstructure:"lookback_days" yaml:"lookback_days"`
}

// NotificationsConfig holds reminder delivery settings.
type NotificationsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database      DatabaseConfig      `mapstructure:"database" yaml:"database"`
	Check         CheckConfig         `mapstructure:"check" yaml:"check"`
	Analytics     AnalyticsConfig     `mapstructure:"analytics" yaml:"analytics"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/cpapcare/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "cpapcare", "config.yaml")
}

// defaultDatabasePath returns the default SQLite file location next to the
// config file.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cpapcare.db")
	}
	return filepath.Join(home, ".config", "cpapcare", "cpapcare.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: defaultDatabasePath(),
		},
		Check: CheckConfig{
			IntervalMinutes:    15,
			UpcomingWindowDays: 7,
		},
		Analytics: AnalyticsConfig{
			LookbackDays: 365,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", defaultDatabasePath())
	v.SetDefault("check.interval_minutes", 15)
	v.SetDefault("check.upcoming_window_days", 7)
	v.SetDefault("analytics.lookback_days", 365)
	v.SetDefault("notifications.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Check.IntervalMinutes <= 0 {
		cfg.Check.IntervalMinutes = 15
	}
	if cfg.Check.UpcomingWindowDays <= 0 {
		cfg.Check.UpcomingWindowDays = 7
	}
	if cfg.Analytics.LookbackDays <= 0 {
		cfg.Analytics.LookbackDays = 365
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("check", cfg.Check)
	v.Set("analytics", cfg.Analytics)
	v.Set("notifications", cfg.Notifications)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
