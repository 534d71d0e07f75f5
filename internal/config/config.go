// Package config loads parser defaults for the CLI from an optional YAML
// config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the file-configurable parser defaults. Flags override file
// values, file values override the built-in defaults.
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ParserConfig mirrors the parser option surface.
type ParserConfig struct {
	Cache         bool `mapstructure:"cache"`
	CacheCapacity int  `mapstructure:"cache_capacity"`
	Metrics       bool `mapstructure:"metrics"`
	Callouts      bool `mapstructure:"callouts"`
	Sanitize      bool `mapstructure:"sanitize"`
	MaxDepth      int  `mapstructure:"max_depth"`
}

// LoggingConfig controls CLI diagnostics output.
type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose"`
}

// GetConfigDir returns the config directory, honoring CHATBLOCKS_CONFIG as
// an override.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("CHATBLOCKS_CONFIG"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatblocks"), nil
}

// Load reads the optional config file and applies defaults. A missing file
// is not an error.
func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	v.SetDefault("parser.cache", true)
	v.SetDefault("parser.cache_capacity", 100)
	v.SetDefault("parser.metrics", true)
	v.SetDefault("parser.callouts", true)
	v.SetDefault("parser.sanitize", true)
	v.SetDefault("parser.max_depth", 10)
	v.SetDefault("logging.verbose", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
