// Package config loads client configuration from file, environment, and
// flags via viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the client needs to reach the backend and keep
// its local state.
type Config struct {
	// APIBaseURL is the root of the Genta backend, e.g.
	// https://api.genta.app. Paths from the versioned contract are appended
	// to it.
	APIBaseURL string `mapstructure:"api_base_url"`

	// TokenPath is where `genta login` stores the bearer token.
	TokenPath string `mapstructure:"token_path"`

	// DBPath is the local practice-history SQLite file.
	DBPath string `mapstructure:"db_path"`

	// LogPath is the zap log file. Empty disables file logging.
	LogPath string `mapstructure:"log_path"`

	// Theme is "dark" or "light".
	Theme string `mapstructure:"theme"`
}

const envPrefix = "GENTA"

// Load reads config.yaml from $XDG_CONFIG_HOME/genta (or ~/.config/genta),
// applying GENTA_* env overrides on top of defaults. A missing config file
// is not an error.
func Load() (*Config, error) {
	v := viper.New()

	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	dataDir, err := dataDir()
	if err != nil {
		return nil, err
	}

	v.SetDefault("api_base_url", "https://api.genta.app")
	v.SetDefault("token_path", filepath.Join(dir, "token"))
	v.SetDefault("db_path", filepath.Join(dataDir, "genta.db"))
	v.SetDefault("log_path", filepath.Join(dataDir, "genta.log"))
	v.SetDefault("theme", "dark")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return &cfg, nil
}

// Save persists the given config back to config.yaml. Used by the settings
// screen for the theme preference.
func Save(cfg *Config) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	v := viper.New()
	v.Set("api_base_url", cfg.APIBaseURL)
	v.Set("token_path", cfg.TokenPath)
	v.Set("db_path", cfg.DBPath)
	v.Set("log_path", cfg.LogPath)
	v.Set("theme", cfg.Theme)
	return v.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}

// configDir resolves $XDG_CONFIG_HOME/genta, falling back to ~/.config/genta.
func configDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "genta"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "genta"), nil
}

// dataDir resolves $XDG_DATA_HOME/genta, falling back to ~/.local/share/genta.
func dataDir() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "genta"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "genta"), nil
}
