// Package config loads Horizon daemon configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the daemon configuration.
type Config struct {
	Listen   string         `mapstructure:"listen"`
	DBPath   string         `mapstructure:"db"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
}

// CalendarConfig selects and authenticates the calendar provider.
type CalendarConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Credentials string `mapstructure:"credentials"`
	Token       string `mapstructure:"token"`
	CalendarID  string `mapstructure:"id"`
}

// RefreshConfig tunes the calendar refresh loop.
type RefreshConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	PastDays   int           `mapstructure:"past_days"`
	WindowDays int           `mapstructure:"window_days"`
}

// Dir returns the Horizon home directory (~/.horizon).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".horizon"
	}
	return filepath.Join(home, ".horizon")
}

// Load reads config.yaml from the Horizon home directory, applying
// defaults and HORIZON_* environment overrides. A missing config file
// is not an error; the defaults stand alone.
func Load() (*Config, error) {
	dir := Dir()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("horizon")
	v.AutomaticEnv()

	v.SetDefault("listen", "127.0.0.1:7467")
	v.SetDefault("db", filepath.Join(dir, "horizon.db"))
	v.SetDefault("calendar.enabled", false)
	v.SetDefault("calendar.credentials", filepath.Join(dir, "credentials.json"))
	v.SetDefault("calendar.token", filepath.Join(dir, "token.json"))
	v.SetDefault("calendar.id", "primary")
	v.SetDefault("refresh.interval", 30*time.Second)
	v.SetDefault("refresh.past_days", 1)
	v.SetDefault("refresh.window_days", 14)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
