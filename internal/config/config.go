// Package config handles application configuration management.
// It supports YAML files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultPostalCode is used until the user submits one
const DefaultPostalCode = "10011"

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Flyer   FlyerConfig   `mapstructure:"flyer" yaml:"flyer"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Clipped ClippedConfig `mapstructure:"clipped" yaml:"clipped"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// APIConfig holds flyer API deployment settings
type APIConfig struct {
	RootURL     string        `mapstructure:"root_url" yaml:"root_url"`
	Version     string        `mapstructure:"version" yaml:"version"`
	AccessToken string        `mapstructure:"access_token" yaml:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// FlyerConfig holds flyer selection settings
type FlyerConfig struct {
	DefaultFlyerID int64 `mapstructure:"default_flyer_id" yaml:"default_flyer_id"`
}

// SessionConfig holds the state carried between invocations
type SessionConfig struct {
	PostalCode string `mapstructure:"postal_code" yaml:"postal_code"`
}

// StorageConfig holds storage settings
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// ClippedConfig holds the retry policy for the remote clipped coupon list
type ClippedConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("api.root_url", "https://api.flipp.com/")
	v.SetDefault("api.version", "v4.0")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("flyer.default_flyer_id", 1)
	v.SetDefault("session.postal_code", DefaultPostalCode)
	v.SetDefault("clipped.max_attempts", 3)
	v.SetDefault("clipped.base_delay", 250*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	// Determine config directory
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Set default storage directory
	v.SetDefault("storage.data_dir", configDir)

	// Configure viper to read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	// Environment variable overrides
	v.SetEnvPrefix("FLYERKIT")
	v.AutomaticEnv()

	// Specific env var bindings
	_ = v.BindEnv("api.access_token", "FLYERKIT_ACCESS_TOKEN")
	_ = v.BindEnv("session.postal_code", "FLYERKIT_POSTAL_CODE")

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to determine config directory: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	v := viper.New()
	v.Set("api", cfg.API)
	v.Set("flyer", cfg.Flyer)
	v.Set("session", cfg.Session)
	v.Set("storage", cfg.Storage)
	v.Set("clipped", cfg.Clipped)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Set restrictive permissions on config file (contains the access token)
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	if configDir := os.Getenv("FLYERKIT_CONFIG_DIR"); configDir != "" {
		return configDir, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "flyerkit"), nil
	}

	// Fall back to ~/.config/flyerkit
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "flyerkit"), nil
}

// GetConfigDir returns the configuration directory (exported for other packages)
func GetConfigDir() (string, error) {
	return getConfigDir()
}
