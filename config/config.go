// Package config loads runtime settings from TOML files and THREADPRIO_*
// environment variables using Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Swind/go-thread/core"
	"github.com/Swind/go-thread/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "THREADPRIO"

// DefaultFileName is the config file searched for in the working directory.
const DefaultFileName = "threadprio.toml"

// Config is the full file/env configuration.
type Config struct {
	Runtime  RuntimeConfig  `mapstructure:"runtime" toml:"runtime" yaml:"runtime"`
	Priority PriorityConfig `mapstructure:"priority" toml:"priority" yaml:"priority"`
	Log      LogConfig      `mapstructure:"log" toml:"log" yaml:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics" toml:"metrics" yaml:"metrics"`
	History  HistoryConfig  `mapstructure:"history" toml:"history" yaml:"history"`
}

type RuntimeConfig struct {
	Name string `mapstructure:"name" toml:"name" yaml:"name"`
}

// PriorityConfig controls the main thread priority and optional clamping.
type PriorityConfig struct {
	Default int  `mapstructure:"default" toml:"default" yaml:"default"`
	Clamp   bool `mapstructure:"clamp" toml:"clamp" yaml:"clamp"`
	Min     int  `mapstructure:"min" toml:"min" yaml:"min"`
	Max     int  `mapstructure:"max" toml:"max" yaml:"max"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" toml:"json" yaml:"json"`
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled"`
	Namespace      string `mapstructure:"namespace" toml:"namespace" yaml:"namespace"`
	Listen         string `mapstructure:"listen" toml:"listen" yaml:"listen"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms" toml:"poll_interval_ms" yaml:"poll_interval_ms"`
}

type HistoryConfig struct {
	Capacity int `mapstructure:"capacity" toml:"capacity" yaml:"capacity"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{Name: "default"},
		Priority: PriorityConfig{
			Default: 0,
			Clamp:   false,
			Min:     -3,
			Max:     3,
		},
		Log: LogConfig{Level: "info"},
		Metrics: MetricsConfig{
			Namespace:      "threadprio",
			Listen:         ":9090",
			PollIntervalMs: 1000,
		},
		History: HistoryConfig{Capacity: 100},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("runtime.name", d.Runtime.Name)

	// Min/Max only apply when clamp is enabled
	v.SetDefault("priority.default", d.Priority.Default)
	v.SetDefault("priority.clamp", d.Priority.Clamp)
	v.SetDefault("priority.min", d.Priority.Min)
	v.SetDefault("priority.max", d.Priority.Max)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
	v.SetDefault("metrics.poll_interval_ms", d.Metrics.PollIntervalMs)

	v.SetDefault("history.capacity", d.History.Capacity)
}

// NewViper returns a Viper instance with defaults and env binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads configuration from path, or from DefaultFileName in the working
// directory when path is empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := NewViper()
	v.SetConfigType("toml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else if _, err := os.Stat(DefaultFileName); err == nil {
		v.SetConfigFile(DefaultFileName)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", DefaultFileName)
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration from v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Priority.Clamp {
		if err := c.Bounds().Validate(); err != nil {
			return errors.WithHint(err, "set priority.min <= priority.max")
		}
	}
	if c.History.Capacity < 0 {
		return errors.Newf("history.capacity must not be negative, got %d", c.History.Capacity)
	}
	if c.Metrics.PollIntervalMs < 0 {
		return errors.Newf("metrics.poll_interval_ms must not be negative, got %d", c.Metrics.PollIntervalMs)
	}
	return nil
}

// Bounds returns the priority bounds described by the configuration.
func (c *Config) Bounds() core.PriorityBounds {
	if !c.Priority.Clamp {
		return core.DefaultPriorityBounds()
	}
	return core.ClampedPriorityBounds(c.Priority.Min, c.Priority.Max)
}

// PollInterval returns the metrics snapshot interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Metrics.PollIntervalMs) * time.Millisecond
}

// RuntimeConfig converts the configuration into a core.RuntimeConfig.
// Logger, PanicHandler and Metrics are left for the caller to fill in.
func (c *Config) RuntimeConfig() *core.RuntimeConfig {
	return &core.RuntimeConfig{
		Name:            c.Runtime.Name,
		DefaultPriority: c.Priority.Default,
		Bounds:          c.Bounds(),
		HistoryCapacity: c.History.Capacity,
	}
}

// WriteDefault writes the default configuration as TOML to path.
// Existing files are not overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.WithHint(errors.Newf("config file %s already exists", path), "remove it or choose another path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := toml.NewEncoder(f).Encode(Default()); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", path)
	}
	return nil
}
