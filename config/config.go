//
// Copyright (C) 2025 The deskpilot authors. All rights reserved.
//
// deskpilot is licensed under the Apache License Version 2.0.
//

// Package config loads application configuration from, in priority order:
// environment variables (DESKPILOT_ prefix), an optional YAML config file
// and built-in defaults. CLI flags override the loaded values.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid indicates a configuration value out of range.
var ErrInvalid = errors.New("invalid configuration")

// Defaults.
const (
	DefaultModel            = "gpt-4o-mini"
	DefaultMaxSteps         = 20
	DefaultSelectionRetries = 2
	DefaultMinStepDelay     = time.Second
	DefaultLogLevel         = "info"
)

// Config stores the runtime configuration of one agent process.
type Config struct {
	// Model is the decision-maker model name.
	Model string `mapstructure:"model"`
	// APIKey authenticates against the model endpoint. Falls back to
	// OPENAI_API_KEY inside the model client when empty.
	APIKey string `mapstructure:"api_key"`
	// BaseURL points at an OpenAI-compatible endpoint; empty selects the
	// default endpoint.
	BaseURL string `mapstructure:"base_url"`

	// MaxSteps bounds loop iterations.
	MaxSteps int `mapstructure:"max_steps"`
	// SelectionRetries is the per-step selection retry budget.
	SelectionRetries int `mapstructure:"selection_retries"`
	// MinStepDelay is the pause between loop iterations.
	MinStepDelay time.Duration `mapstructure:"min_step_delay"`
	// Planning enables plan mode.
	Planning bool `mapstructure:"planning"`

	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration. path optionally names a config file; when empty
// a config.yaml in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("model", DefaultModel)
	v.SetDefault("max_steps", DefaultMaxSteps)
	v.SetDefault("selection_retries", DefaultSelectionRetries)
	v.SetDefault("min_step_delay", DefaultMinStepDelay)
	v.SetDefault("planning", false)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix("DESKPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalid)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("%w: max_steps must be at least 1, got %d", ErrInvalid, c.MaxSteps)
	}
	if c.SelectionRetries < 0 {
		return fmt.Errorf("%w: selection_retries must not be negative", ErrInvalid)
	}
	if c.MinStepDelay < 0 {
		return fmt.Errorf("%w: min_step_delay must not be negative", ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
