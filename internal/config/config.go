package config

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	PokeAPI  PokeAPIConfig  `mapstructure:"pokeapi"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Export   ExportConfig   `mapstructure:"export"`
}

// PokeAPIConfig holds PokeAPI client configuration
type PokeAPIConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"` // seconds
	Limit                int      `mapstructure:"limit"`
	MaxWorkers           int      `mapstructure:"max_workers"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"` // 0 means unlimited
	Proxies              []string `mapstructure:"proxies"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"` // seconds
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ExportConfig holds the S3 destination for species snapshots
type ExportConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// Load loads config.yaml from the current directory with environment
// variable overrides
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads config.yaml from dir. A missing file is not an error:
// defaults and environment variables are used instead.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debugf("No config.yaml in %s, using defaults", dir)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.PokeAPI.Limit <= 0 {
		return nil, fmt.Errorf("pokeapi.limit must be positive, got %d", config.PokeAPI.Limit)
	}
	if config.PokeAPI.MaxWorkers <= 0 {
		config.PokeAPI.MaxWorkers = 1
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("pokeapi.timeout", 30)
	v.SetDefault("pokeapi.limit", 151)
	v.SetDefault("pokeapi.max_workers", 4)
	v.SetDefault("pokeapi.max_requests_per_second", 0)
	v.SetDefault("pokeapi.proxies", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "pokedex")
	v.SetDefault("database.user", "pokedex_user")
	v.SetDefault("database.password", "pokedex_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "pokedex_consumer")
	v.SetDefault("redis.min_idle_time", 60)

	v.SetDefault("export.bucket", "")
	v.SetDefault("export.prefix", "species")
	v.SetDefault("export.region", "us-east-1")
}
