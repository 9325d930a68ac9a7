// Package config loads forge settings from forge.yaml and FORGE_* variables
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dosanma1/forge-sub000/internal/web/cache"
	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
)

// EnvPrefix is prepended to environment overrides, e.g. FORGE_SERVER_PORT
const EnvPrefix = "FORGE"

// Config represents the forge configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Encoder EncoderConfig `mapstructure:"encoder"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
	// Fixtures is the YAML file served by forge serve
	Fixtures string `mapstructure:"fixtures"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// EncoderConfig represents encoder defaults of the CLI
type EncoderConfig struct {
	DefaultMode string `mapstructure:"default_mode"`
	Pretty      bool   `mapstructure:"pretty"`
}

// Mode parses DefaultMode
func (e EncoderConfig) Mode() (jsonapi.Mode, error) {
	return jsonapi.ParseMode(e.DefaultMode)
}

// CacheConfig represents document cache configuration
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig represents redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Options converts the settings to the cache package configuration
func (c CacheConfig) Options() cache.Config {
	return cache.Config{
		Backend: c.Backend,
		CacheConfig: cache.CacheConfig{
			DefaultTTL: c.TTL,
			Prefix:     c.Prefix,
		},
		Redis: cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		},
	}
}

// LogConfig represents logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Options tune Load
type Options struct {
	// File is an explicit config path; empty searches ./forge.yaml
	File string
	// Dirs are searched for forge.yaml when File is empty
	Dirs []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("encoder.default_mode", jsonapi.ClientCreate.String())
	v.SetDefault("encoder.pretty", false)
	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.prefix", "forge:")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("fixtures", "")
}

// Load reads defaults, then forge.yaml, then FORGE_* environment variables
func Load() (*Config, error) {
	return LoadWithOptions(Options{})
}

// LoadWithOptions loads the configuration using explicit search options
func LoadWithOptions(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("forge")
		v.SetConfigType("yaml")
		dirs := opts.Dirs
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "dpanic": true, "panic": true, "fatal": true,
}

func validateConfig(cfg *Config) error {
	if _, err := cfg.Encoder.Mode(); err != nil {
		return fmt.Errorf("encoder.default_mode: %w", err)
	}

	switch cfg.Cache.Backend {
	case cache.BackendMemory, cache.BackendRedis:
	default:
		return fmt.Errorf("cache.backend must be %q or %q, got: %q", cache.BackendMemory, cache.BackendRedis, cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got: %d", cfg.Server.Port)
	}

	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("log.level %q is not a zap level", cfg.Log.Level)
	}
	return nil
}
