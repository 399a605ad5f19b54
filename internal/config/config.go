// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type RepositoryConfig struct {
	Root string `toml:"root"`
}

type ObjectStoreConfig struct {
	CacheSize int `toml:"cache_size"`
}

type Config struct {
	Repository  RepositoryConfig  `toml:"repository"`
	ObjectStore ObjectStoreConfig `toml:"object_store"`

	Environment string `toml:"environment"` // e.g. development (the default)
	LogLevel    string `toml:"log_level"`   // debug, info, warn, error
}

func getConfigPath() string {
	env := os.Getenv("GITLET_ENV")
	if env == "" {
		env = "development"
	}
	return fmt.Sprintf("config/config.%s.toml", env)
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		Environment: "development",
		LogLevel:    "info",
		ObjectStore: ObjectStoreConfig{CacheSize: 256},
	}
}

// Load reads and decodes a TOML config file at path. A missing file is not
// an error: Default() is returned instead.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}

	return cfg, nil
}
