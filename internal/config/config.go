// Package config loads the engine configuration: per-metal baseline rates and
// fluctuation bounds, booking validation rules, and timer/server settings.
// It supports a YAML config file with environment variable overrides; every
// value has a built-in default so the engine runs with no file at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete engine configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Rates   RatesConfig   `mapstructure:"rates"   yaml:"rates"`
	Booking BookingConfig `mapstructure:"booking" yaml:"booking"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// RatesConfig holds the price-simulation settings.
type RatesConfig struct {
	TickInterval time.Duration          `mapstructure:"tick_interval" yaml:"tick_interval"`
	Metals       map[string]MetalConfig `mapstructure:"metals"        yaml:"metals"`
}

// MetalConfig holds the per-metal baseline and booking bounds. BasePrice is
// in rupees per quoted unit (gold: per 10 g, silver: per kg); quantities are
// in grams.
type MetalConfig struct {
	BasePrice      float64 `mapstructure:"base_price"      yaml:"base_price"`
	MaxFluctuation float64 `mapstructure:"max_fluctuation" yaml:"max_fluctuation"` // full width of the per-tick walk
	MinQuantity    float64 `mapstructure:"min_quantity"    yaml:"min_quantity"`
	MaxQuantity    float64 `mapstructure:"max_quantity"    yaml:"max_quantity"`
}

// BookingConfig holds the form validation rules, keyed by field name
// (name, phone, email, quantity). A field with no rule is never rejected.
type BookingConfig struct {
	Fields map[string]FieldRule `mapstructure:"fields" yaml:"fields"`
}

// FieldRule is the constraint set for one form field. Only the constraints
// meaningful for a field's kind are consulted: lengths and pattern for name,
// starting digits for phone, pattern for email, min for quantity.
type FieldRule struct {
	Required       bool    `mapstructure:"required"        yaml:"required"`
	MinLength      int     `mapstructure:"min_length"      yaml:"min_length"`
	MaxLength      int     `mapstructure:"max_length"      yaml:"max_length"`
	Pattern        string  `mapstructure:"pattern"         yaml:"pattern"`
	StartingDigits string  `mapstructure:"starting_digits" yaml:"starting_digits"`
	Min            float64 `mapstructure:"min"             yaml:"min"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./booking-engine.yaml
//  2. ./config/booking-engine.yaml
//
// Environment variables override config file values.
// Format: GOLDMANDI_<SECTION>_<KEY>, e.g., GOLDMANDI_RATES_TICK_INTERVAL.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("booking-engine")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GOLDMANDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional — defaults + env vars are a complete config.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("GOLDMANDI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration with no file or env applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are statically well-formed; Unmarshal cannot fail on them.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults sets the production storefront defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// Rate simulation defaults
	v.SetDefault("rates.tick_interval", "3s")
	v.SetDefault("rates.metals.gold.base_price", 99320) // ₹ per 10 g
	v.SetDefault("rates.metals.gold.max_fluctuation", 120)
	v.SetDefault("rates.metals.gold.min_quantity", 1) // grams
	v.SetDefault("rates.metals.gold.max_quantity", 1000)
	v.SetDefault("rates.metals.silver.base_price", 106780) // ₹ per kg
	v.SetDefault("rates.metals.silver.max_fluctuation", 350)
	v.SetDefault("rates.metals.silver.min_quantity", 1) // grams
	v.SetDefault("rates.metals.silver.max_quantity", 10000)

	// Booking validation defaults
	v.SetDefault("booking.fields.name.required", true)
	v.SetDefault("booking.fields.name.min_length", 3)
	v.SetDefault("booking.fields.name.max_length", 50)
	v.SetDefault("booking.fields.name.pattern", "^[A-Za-z ]+$")
	v.SetDefault("booking.fields.phone.required", true)
	v.SetDefault("booking.fields.phone.starting_digits", "6789") // Indian mobile numbering
	v.SetDefault("booking.fields.email.required", true)
	v.SetDefault("booking.fields.email.pattern", `^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	v.SetDefault("booking.fields.quantity.required", true)
	v.SetDefault("booking.fields.quantity.min", 1)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Rates.TickInterval <= 0 {
		return fmt.Errorf("config: rates.tick_interval must be positive, got %s", c.Rates.TickInterval)
	}
	for name, mc := range c.Rates.Metals {
		if mc.BasePrice < 0 {
			return fmt.Errorf("config: rates.metals.%s.base_price must be non-negative, got %v", name, mc.BasePrice)
		}
		if mc.MaxFluctuation < 0 {
			return fmt.Errorf("config: rates.metals.%s.max_fluctuation must be non-negative, got %v", name, mc.MaxFluctuation)
		}
		if mc.MaxQuantity > 0 && mc.MaxQuantity < mc.MinQuantity {
			return fmt.Errorf("config: rates.metals.%s quantity bounds inverted (min %v > max %v)",
				name, mc.MinQuantity, mc.MaxQuantity)
		}
	}
	return nil
}
