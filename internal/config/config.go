package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type RegistryConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	MetadataURL string `mapstructure:"metadata_url"`
	UserAgent   string `mapstructure:"user_agent"`
}

type SearchConfig struct {
	Limit int `mapstructure:"limit"`
}

type NavConfig struct {
	MaxSuggestions int `mapstructure:"max_suggestions"`
}

type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	Search   SearchConfig   `mapstructure:"search"`
	Nav      NavConfig      `mapstructure:"nav"`
}

// cacheBase returns the base cache directory for ferritin.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/ferritin as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ferritin")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "ferritin")
	}
	return filepath.Join(os.TempDir(), "ferritin")
}

// BundleCacheDir returns the directory holding fetched registry bundles.
func BundleCacheDir() string {
	return filepath.Join(cacheBase(), "bundles")
}

// IndexCacheDir returns the directory holding serialized search indexes.
func IndexCacheDir() string {
	return filepath.Join(cacheBase(), "index")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "ferritin"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ferritin"))
	}

	viper.SetDefault("registry.base_url", "https://docs.rs")
	viper.SetDefault("registry.metadata_url", "https://crates.io")
	viper.SetDefault("registry.user_agent", "ferritin/0.1.0")
	viper.SetDefault("search.limit", 20)
	viper.SetDefault("nav.max_suggestions", 5)

	viper.SetEnvPrefix("FERRITIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
