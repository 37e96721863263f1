// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "BOARDING_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the console configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	API     APIConfig     `yaml:"api"`
	Feed    FeedConfig    `yaml:"feed"`
	Store   StoreConfig   `yaml:"store"`
	Session SessionConfig `yaml:"session"`
	State   StateConfig   `yaml:"state"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections an environment may override.
// Only non-zero fields replace base values.
type ConfigOverrides struct {
	API     *APIConfig     `yaml:"api,omitempty"`
	Feed    *FeedConfig    `yaml:"feed,omitempty"`
	Store   *StoreConfig   `yaml:"store,omitempty"`
	Session *SessionConfig `yaml:"session,omitempty"`
	State   *StateConfig   `yaml:"state,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// APIConfig locates the REST API.
type APIConfig struct {
	// BaseURL is the REST root, for example https://host/api. The
	// change feed is served from the same host.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds one collection fetch. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// FeedConfig configures the change-feed connection.
type FeedConfig struct {
	// Path is the notifications endpoint. Default: /ws/notifications/
	Path string `yaml:"path"`

	// Backoff is "fixed" or "exponential". Default: fixed.
	Backoff string `yaml:"backoff"`

	// RetryDelay is the fixed delay, or the first exponential delay.
	// Default: 3s.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// MaxDelay caps exponential backoff. Default: 30s.
	MaxDelay time.Duration `yaml:"max_delay"`
}

// StoreConfig selects entity store policies.
type StoreConfig struct {
	// InsertPolicy is "append" or "upsert". Default: append.
	InsertPolicy string `yaml:"insert_policy"`

	// LoadRace is "replay" or "snapshot". Default: replay.
	LoadRace string `yaml:"load_race"`
}

// SessionConfig locates the session token.
type SessionConfig struct {
	// TokenFile holds the bearer token written at login.
	TokenFile string `yaml:"token_file"`

	// PollInterval is how often the token file is checked for login
	// and logout. Default: 2s.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// StateConfig configures the read-only state socket.
type StateConfig struct {
	// SocketPath is where the state socket listens. Empty disables it.
	SocketPath string `yaml:"socket_path"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address serving /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: info.
	Level string `yaml:"level"`

	// Format is json or text. Default: json.
	Format string `yaml:"format"`
}

// Default returns the base configuration the file is decoded onto.
func Default() *Config {
	return &Config{
		Environment: Development,
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 30 * time.Second,
		},
		Feed: FeedConfig{
			Path:       "/ws/notifications/",
			Backoff:    "fixed",
			RetryDelay: 3 * time.Second,
			MaxDelay:   30 * time.Second,
		},
		Store: StoreConfig{
			InsertPolicy: "append",
			LoadRace:     "replay",
		},
		Session: SessionConfig{
			TokenFile:    "${HOME}/.config/boarding/token",
			PollInterval: 2 * time.Second,
		},
		State: StateConfig{
			SocketPath: "${XDG_RUNTIME_DIR:-/tmp}/boarding-state.sock",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from the file named by BOARDING_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your boarding.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// Resolved returns Default with overrides and expansion applied, for
// running without a config file.
func Resolved() *Config {
	cfg := Default()
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if o := overrides.API; o != nil {
		override(&c.API.BaseURL, o.BaseURL)
		override(&c.API.Timeout, o.Timeout)
	}
	if o := overrides.Feed; o != nil {
		override(&c.Feed.Path, o.Path)
		override(&c.Feed.Backoff, o.Backoff)
		override(&c.Feed.RetryDelay, o.RetryDelay)
		override(&c.Feed.MaxDelay, o.MaxDelay)
	}
	if o := overrides.Store; o != nil {
		override(&c.Store.InsertPolicy, o.InsertPolicy)
		override(&c.Store.LoadRace, o.LoadRace)
	}
	if o := overrides.Session; o != nil {
		override(&c.Session.TokenFile, o.TokenFile)
		override(&c.Session.PollInterval, o.PollInterval)
	}
	if o := overrides.State; o != nil {
		override(&c.State.SocketPath, o.SocketPath)
	}
	if o := overrides.Metrics; o != nil {
		override(&c.Metrics.Listen, o.Listen)
	}
	if o := overrides.Log; o != nil {
		override(&c.Log.Level, o.Level)
		override(&c.Log.Format, o.Format)
	}
}

func override[T comparable](target *T, value T) {
	var zero T
	if value != zero {
		*target = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Session.TokenFile = expandVars(c.Session.TokenFile, vars)
	c.State.SocketPath = expandVars(c.State.SocketPath, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if parsed, err := url.Parse(c.API.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an http or https URL: %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}

	if !strings.HasPrefix(c.Feed.Path, "/") {
		errs = append(errs, fmt.Errorf("feed.path must start with /: %q", c.Feed.Path))
	}
	errs = appendChoice(errs, "feed.backoff", c.Feed.Backoff, "fixed", "exponential")
	if c.Feed.RetryDelay <= 0 {
		errs = append(errs, errors.New("feed.retry_delay must be positive"))
	}
	if c.Feed.Backoff == "exponential" && c.Feed.MaxDelay < c.Feed.RetryDelay {
		errs = append(errs, errors.New("feed.max_delay must be at least feed.retry_delay"))
	}

	errs = appendChoice(errs, "store.insert_policy", c.Store.InsertPolicy, "append", "upsert")
	errs = appendChoice(errs, "store.load_race", c.Store.LoadRace, "replay", "snapshot")

	if c.Session.TokenFile == "" {
		errs = append(errs, errors.New("session.token_file is required"))
	}
	if c.Session.PollInterval <= 0 {
		errs = append(errs, errors.New("session.poll_interval must be positive"))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	errs = appendChoice(errs, "log.format", c.Log.Format, "json", "text")

	return errors.Join(errs...)
}

func appendChoice(errs []error, field, value string, choices ...string) []error {
	if slices.Contains(choices, value) {
		return errs
	}
	return append(errs, fmt.Errorf("%s must be one of %v, got %q", field, choices, value))
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
