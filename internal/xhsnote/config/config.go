package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "XHSNOTE"

	// ConfigFileName is the name of the config file
	ConfigFileName = "config"
	// ConfigFileType is the type of the config file
	ConfigFileType = "toml"

	// DefaultBaseURL is the TikHub API base URL
	DefaultBaseURL = "https://api.tikhub.io"
	// DefaultTimeout bounds one upstream request
	DefaultTimeout = 10 * time.Second
	// DefaultLogLevel is the zap level used when none is configured
	DefaultLogLevel = "info"
	// DefaultListen is the address used by the serve command
	DefaultListen = ":8080"
)

// Config holds the application configuration
type Config struct {
	Token    string        `mapstructure:"token"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	LogLevel string        `mapstructure:"log_level"`
	Listen   string        `mapstructure:"listen"`
}

// Load loads configuration from environment variables, the config file and
// defaults, in that order of precedence
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config directory")
	}
	return LoadFrom(configDir)
}

// LoadFrom is like Load but reads the config file from dir
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("listen", DefaultListen)

	// Set up environment variable binding
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", "TIKHUB_TOKEN"); err != nil {
		return nil, errors.Wrap(err, "failed to bind token env")
	}

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		// Config file not found, env and defaults still apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "xhsnote"), nil
}

// ConfigFilePath returns the full path of the config file
func ConfigFilePath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileType), nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required. Set XHSNOTE_TOKEN/TIKHUB_TOKEN environment variable or add token to ~/.config/xhsnote/config.toml")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// MaskToken hides all but the first and last four characters of a secret
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****" + token[len(token)-4:]
}
