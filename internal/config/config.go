package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"metalrates/internal/fetcher"
	"metalrates/internal/maybank"
)

// EnvPrefix is prepended to every environment variable, e.g. METALRATES_POLL_INTERVAL.
const EnvPrefix = "METALRATES"

// Config holds all configuration for the rate poller.
type Config struct {
	// Source page and the trust check applied after redirects
	SourceURL            string `mapstructure:"source_url"`
	ExpectedHostSuffix   string `mapstructure:"expected_host_suffix"`
	ExpectedPathFragment string `mapstructure:"expected_path_fragment"`

	// Scheduling. PollSchedule, a standard cron expression, wins over PollInterval when set.
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	PollSchedule   string        `mapstructure:"poll_schedule"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Characters allowed between a metal name and its numbers in the loose strategies
	SearchWindow int `mapstructure:"search_window"`

	ListenAddr string `mapstructure:"listen_addr"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
}

// NewViper returns a viper instance with defaults, environment binding and
// config file search paths set up. Nothing is read yet.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("source_url", maybank.SourceURL)
	v.SetDefault("expected_host_suffix", maybank.HostSuffix)
	v.SetDefault("expected_path_fragment", maybank.PathFragment)
	v.SetDefault("poll_interval", 30*time.Minute)
	v.SetDefault("poll_schedule", "")
	v.SetDefault("request_timeout", fetcher.DefaultTimeout)
	v.SetDefault("search_window", maybank.DefaultWindow)
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.metalrates")

	return v
}

// ReadFile reads the config file if one exists. A missing file is not an error.
func ReadFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values.
func Load() (*Config, error) {
	v := NewViper()
	if err := ReadFile(v); err != nil {
		return nil, err
	}
	return LoadFrom(v)
}

// LoadFrom unmarshals and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.LogLevel = strings.ToLower(strings.TrimSpace(config.LogLevel))
	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	config.PollSchedule = strings.TrimSpace(config.PollSchedule)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports every invalid key at once.
func (c *Config) Validate() error {
	var invalid []string

	if u, err := url.Parse(c.SourceURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid = append(invalid, "source_url must be an absolute http(s) url")
	}
	if strings.TrimSpace(c.ExpectedHostSuffix) == "" {
		invalid = append(invalid, "expected_host_suffix must not be empty")
	}
	if strings.TrimSpace(c.ExpectedPathFragment) == "" {
		invalid = append(invalid, "expected_path_fragment must not be empty")
	}
	if c.PollSchedule != "" {
		if sched, err := cron.ParseStandard(c.PollSchedule); err != nil {
			invalid = append(invalid, fmt.Sprintf("poll_schedule is not a valid cron expression (%v)", err))
		} else if sched.Next(time.Now()).IsZero() {
			invalid = append(invalid, "poll_schedule never fires")
		}
	} else if c.PollInterval < time.Second {
		invalid = append(invalid, "poll_interval must be at least 1s")
	}
	if c.RequestTimeout <= 0 {
		invalid = append(invalid, "request_timeout must be positive")
	}
	if c.SearchWindow < 1 || c.SearchWindow > maybank.MaxWindow {
		invalid = append(invalid, fmt.Sprintf("search_window must be between 1 and %d", maybank.MaxWindow))
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		invalid = append(invalid, "listen_addr must not be empty")
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		invalid = append(invalid, "log_level must be one of debug, info, warn, error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		invalid = append(invalid, "log_format must be text or json")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Schedule returns the poll schedule: the cron expression when set,
// otherwise a fixed interval.
func (c *Config) Schedule() (cron.Schedule, error) {
	if c.PollSchedule != "" {
		return cron.ParseStandard(c.PollSchedule)
	}
	return cron.Every(c.PollInterval), nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}
