package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	Export ExportConfig `mapstructure:"export"`
	Log    LogConfig    `mapstructure:"log"`
}

type StoreConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Supported store drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ConfigFile overrides the search paths when set (the --config flag)
var ConfigFile string

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", "data/ecommerce.sqlite")
	v.SetDefault("store.max_open_conns", 4)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("export.dir", "data/export")
	v.SetDefault("export.prefix", "csv_ecommerce_")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig loads configuration from config.yaml and environment variables.
// A missing config file is not an error; defaults apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if ConfigFile != "" {
		v.SetConfigFile(ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME/.shopstats/")
		v.AddConfigPath("/etc/shopstats/")
	}

	// SHOPSTATS_STORE_DSN overrides store.dsn
	v.SetEnvPrefix("SHOPSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}
	if c.Store.MaxOpenConns < 0 {
		return fmt.Errorf("store.max_open_conns must not be negative")
	}
	return nil
}
