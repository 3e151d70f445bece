// Package config loads the CLI configuration: which products to index,
// where their data roots and stores live, and the sync behavior flags.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/icepolcka/icecat/pkg/errors"
)

// ProductConfig holds the per-product paths.
type ProductConfig struct {
	// Data is the root directory scanned for this product's files.
	Data string `mapstructure:"data"`

	// Store is the path of the product's store file.
	Store string `mapstructure:"store"`
}

// Config is the resolved CLI configuration.
type Config struct {
	// Products maps product name to its paths.
	Products map[string]ProductConfig `mapstructure:"products"`

	// Sync makes commands sync their catalogs on open.
	Sync bool `mapstructure:"sync"`

	// Recheck makes syncs verify known files against their modification
	// time.
	Recheck bool `mapstructure:"recheck"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// Load reads configuration in order of precedence: environment variables
// (ICECAT_*), .env files, the config file (--config or ~/.icecat.yaml),
// then defaults.
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("ICECAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("sync", false)
	v.SetDefault("recheck", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".icecat")
		// A missing config file is fine; products can come from flags.
		_ = v.ReadInConfig()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "invalid configuration", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	return cfg, nil
}

// Product returns the configuration for the named product.
func (c *Config) Product(name string) (ProductConfig, error) {
	p, ok := c.Products[name]
	if !ok {
		return ProductConfig{}, errors.NewConfigError("config",
			"product "+name+" not configured; add it under products: in the config file", nil)
	}
	if p.Data == "" || p.Store == "" {
		return ProductConfig{}, errors.NewConfigError("config",
			"product "+name+" needs both data and store paths", nil)
	}
	return p, nil
}

// Names returns the configured product names.
func (c *Config) Names() []string {
	out := make([]string, 0, len(c.Products))
	for name := range c.Products {
		out = append(out, name)
	}
	return out
}

// loadEnvFiles loads .env files from the working directory. Missing files
// are not an error.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}
