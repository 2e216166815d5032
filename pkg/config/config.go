// Package config provides a reusable loader for dgc-processor configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"dgc-processor/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for a dgc-processor instance: where to
// reach the validator, how verbose to log, and whether to run the optional
// read-only inspection server.
type Config struct {
	Processor struct {
		Connect    string `mapstructure:"connect" json:"connect"`
		Verbosity  int    `mapstructure:"verbosity" json:"verbosity"`
	} `mapstructure:"processor" json:"processor"`

	Inspect struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Addr    string `mapstructure:"addr" json:"addr"`
	} `mapstructure:"inspect" json:"inspect"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned. A missing default config file is not an error: sensible defaults
// plus environment variables are enough to run the processor standalone. A
// non-empty env names a config file that must exist; failing to merge it is
// returned as an error.
func Load(env string) (*Config, error) {
	// A missing .env is normal outside of local development.
	_ = godotenv.Load()

	viper.SetDefault("processor.connect", "tcp://localhost:4004")
	viper.SetDefault("processor.verbosity", 0)
	viper.SetDefault("inspect.enabled", false)
	viper.SetDefault("inspect.addr", ":8080")
	viper.SetDefault("logging.level", "info")

	viper.SetConfigName("default")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, utils.Wrap(err, "load config")
		}
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the DGC_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("DGC_ENV", ""))
}
