// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/go-a2a/googleai-go/option"
)

// Persistent flag names. They double as viper keys and config file keys.
const (
	flagAPIKey      = "api-key"
	flagBaseURL     = "base-url"
	flagAPIVersion  = "api-version"
	flagAPIClient   = "api-client"
	flagTimeout     = "timeout"
	flagRate        = "rate"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagMetricsAddr = "metrics-addr"
	flagConfig      = "config"
	flagEnvFile     = "env-file"
)

const envPrefix = "GOOGLEAI"

// Config is the resolved CLI configuration.
type Config struct {
	APIKey      string        `mapstructure:"api-key"`
	BaseURL     string        `mapstructure:"base-url"`
	APIVersion  string        `mapstructure:"api-version"`
	APIClient   string        `mapstructure:"api-client"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Rate        float64       `mapstructure:"rate"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFormat   string        `mapstructure:"log-format"`
	MetricsAddr string        `mapstructure:"metrics-addr"`
}

func addPersistentFlags(flags *pflag.FlagSet) {
	flags.String(flagAPIKey, "", "API key (default $GOOGLE_API_KEY)")
	flags.String(flagBaseURL, option.DefaultBaseURL, "API base URL")
	flags.String(flagAPIVersion, option.DefaultAPIVersion, "API version")
	flags.String(flagAPIClient, "", "value appended to the x-goog-api-client header")
	flags.Duration(flagTimeout, 0, "per-request timeout, 0 for none")
	flags.Float64(flagRate, 0, "maximum requests per second, 0 for unlimited")
	flags.String(flagLogLevel, "warn", "log level: debug, info, warn or error")
	flags.String(flagLogFormat, "text", "log format: text or json")
	flags.String(flagMetricsAddr, "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.String(flagConfig, "", "config file (yaml, json or toml)")
	flags.String(flagEnvFile, ".env", "dotenv file loaded before reading the environment")
}

// loadConfig resolves the configuration from flags, the environment, the
// dotenv file and the config file, in that order of precedence.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString(flagEnvFile); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(flagAPIKey, envPrefix+"_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// requestOptions converts cfg into SDK request options.
func (cfg *Config) requestOptions() []option.RequestOption {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIVersion(cfg.APIVersion),
		option.WithAPIClient(cfg.APIClient),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithTimeout(cfg.Timeout))
	}
	if cfg.Rate > 0 {
		opts = append(opts, option.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Rate), 1)))
	}
	return opts
}
