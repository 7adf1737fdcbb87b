// Package config loads the engine configuration from an optional YAML file
// and FIELD_ASSEMBLER_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"field-assembler/internal/cache"
	"field-assembler/internal/executor"
	"field-assembler/internal/log"
)

// ErrNoDescriptors is returned when descriptor files are required but none
// are configured.
var ErrNoDescriptors = errors.New("no descriptor files configured")

// EnvPrefix prefixes environment overrides, e.g. FIELD_ASSEMBLER_EXECUTOR_PARALLELISM.
const EnvPrefix = "FIELD_ASSEMBLER"

// Config holds all configuration options of the engine.
type Config struct {
	Executor    ExecutorConfig `mapstructure:"executor"`
	Cache       CacheConfig    `mapstructure:"cache"`
	Log         LogConfig      `mapstructure:"log"`
	Descriptors []string       `mapstructure:"descriptors"` // descriptor files, see internal/mapping
}

// ExecutorConfig selects and tunes the executor.
type ExecutorConfig struct {
	Ordered          bool   `mapstructure:"ordered"`
	Parallelism      int    `mapstructure:"parallelism"`
	ConversionPolicy string `mapstructure:"conversion_policy"` // abort, collect or ignore
}

// CacheConfig configures the caches of cached namespaces.
type CacheConfig struct {
	Policy          string        `mapstructure:"policy"` // none, ttl or size
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Size            int           `mapstructure:"size"`

	// Namespaces lists the namespaces whose containers are wrapped in a cache.
	Namespaces []string `mapstructure:"namespaces"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Executor: ExecutorConfig{
			Parallelism:      4,
			ConversionPolicy: executor.ConversionAbort.String(),
		},
		Cache: CacheConfig{
			Policy:          cache.PolicyTTL.String(),
			TTL:             cache.DefaultTTL,
			CleanupInterval: cache.DefaultCleanupInterval,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// New returns a viper instance with defaults and environment overrides set up.
func New() *viper.Viper {
	d := Default()

	v := viper.New()
	v.SetDefault("executor.ordered", d.Executor.Ordered)
	v.SetDefault("executor.parallelism", d.Executor.Parallelism)
	v.SetDefault("executor.conversion_policy", d.Executor.ConversionPolicy)
	v.SetDefault("cache.policy", d.Cache.Policy)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("cache.namespaces", []string{})
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("descriptors", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads path, if not empty, on top of the defaults and environment.
func Load(path string) (Config, error) {
	v := New()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg, err := FromViper(v)
	if err != nil {
		return Config{}, err
	}

	log.Debug(log.CatConfig, "configuration loaded", "file", v.ConfigFileUsed(),
		"ordered", cfg.Executor.Ordered, "cache_policy", cfg.Cache.Policy)

	return cfg, nil
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports every invalid option.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.Executor.Parallelism < 1 {
		result = multierror.Append(result, fmt.Errorf("executor.parallelism must be positive, got %d", c.Executor.Parallelism))
	}

	if _, err := executor.ParseConversionPolicy(c.Executor.ConversionPolicy); err != nil {
		result = multierror.Append(result, fmt.Errorf("executor.conversion_policy: %w", err))
	}

	if cc, err := c.Cache.ToCache(); err != nil {
		result = multierror.Append(result, fmt.Errorf("cache.policy: %w", err))
	} else if err := cc.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("cache: %w", err))
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, fmt.Errorf("log.level: %w", err))
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		result = multierror.Append(result, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	for i, d := range c.Descriptors {
		if d == "" {
			result = multierror.Append(result, fmt.Errorf("descriptors[%d] is empty", i))
		}
	}

	return result.ErrorOrNil()
}

// ToCache converts the cache options into a cache.Config.
func (c CacheConfig) ToCache() (cache.Config, error) {
	policy, err := cache.ParsePolicy(c.Policy)
	if err != nil {
		return cache.Config{}, err
	}

	return cache.Config{
		Policy:          policy,
		TTL:             c.TTL,
		CleanupInterval: c.CleanupInterval,
		Size:            c.Size,
	}, nil
}

// Policy parses the configured conversion policy.
func (c ExecutorConfig) Policy() (executor.ConversionPolicy, error) {
	return executor.ParseConversionPolicy(c.ConversionPolicy)
}

// Apply configures the package logger.
func (c LogConfig) Apply() error {
	if err := log.SetLevel(c.Level); err != nil {
		return err
	}

	return log.SetFormatter(c.Format)
}
