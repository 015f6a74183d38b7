// Package config handles LexDesk configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".lexdesk")

	return &Config{
		Remote: RemoteConfig{
			BaseURL:  "http://localhost:3001/api",
			Provider: ProviderBackend,
			Model:    "gpt-4o-mini",
			Timeout:  D(5 * time.Second),
		},
		Probe: ProbeConfig{
			CacheInterval: D(30 * time.Second),
			Interval:      D(30 * time.Second),
			Timeout:       D(5 * time.Second),
		},
		Dispatch: DispatchConfig{
			MaxErrors: 3,
		},
		Mock: MockConfig{
			MinLatency: D(1 * time.Second),
			MaxLatency: D(2 * time.Second),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RateLimit:       10,
			Burst:           20,
			ShutdownTimeout: D(10 * time.Second),
		},
		Paths: PathsConfig{
			DataDir: dataDir,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// DefaultPath is ~/.lexdesk/config.toml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".lexdesk", "config.toml")
}

// Load loads the configuration from the given path.
// If the file doesn't exist, defaults are used. Environment variables
// (optionally from a .env file next to the working directory) override both.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "failed to parse config", apperrors.KindInvalidInput)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "failed to read config", apperrors.KindInvalidInput)
		}
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// HealthPath is the probe path: probe.health_path when set, otherwise the
// provider's default. OpenAI-compatible APIs have no /health route, so
// they are probed with the authenticated model list.
func (c *Config) HealthPath() string {
	if c.Probe.HealthPath != "" {
		return c.Probe.HealthPath
	}
	if c.Remote.Provider == ProviderOpenAI {
		return "/models"
	}
	return "/health"
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Remote.Provider {
	case ProviderBackend, ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("remote.provider must be %q or %q", ProviderBackend, ProviderOpenAI))
	}
	if c.Remote.Timeout.Duration <= 0 {
		problems = append(problems, "remote.timeout must be positive")
	}
	if c.Probe.Timeout.Duration <= 0 {
		problems = append(problems, "probe.timeout must be positive")
	}
	if c.Probe.CacheInterval.Duration <= 0 {
		problems = append(problems, "probe.cache_interval must be positive")
	}
	if c.Dispatch.MaxErrors < 1 {
		problems = append(problems, "dispatch.max_errors must be at least 1")
	}
	if c.Mock.MinLatency.Duration < 0 || c.Mock.MaxLatency.Duration < c.Mock.MinLatency.Duration {
		problems = append(problems, "mock latency range is invalid")
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		problems = append(problems, "server rate limit must not be negative")
	}

	if len(problems) > 0 {
		return apperrors.NewBuilder(apperrors.CodeConfigInvalid, strings.Join(problems, "; ")).
			Kind(apperrors.KindInvalidInput).
			WithSuggestion("Check the [remote], [probe], [dispatch] and [mock] sections").
			Build()
	}
	return nil
}

// applyEnv overlays LEXDESK_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) error {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return apperrors.Wrap(err, apperrors.CodeConfigInvalid, key, apperrors.KindInvalidInput)
			}
		}
		return nil
	}

	str("LEXDESK_REMOTE_URL", &c.Remote.BaseURL)
	str("LEXDESK_REMOTE_PROVIDER", &c.Remote.Provider)
	str("LEXDESK_REMOTE_API_KEY", &c.Remote.APIKey)
	str("LEXDESK_REMOTE_MODEL", &c.Remote.Model)
	str("LEXDESK_PROBE_HEALTH_PATH", &c.Probe.HealthPath)
	str("LEXDESK_SERVER_ADDR", &c.Server.Addr)
	str("LEXDESK_JOURNAL_DB", &c.Paths.JournalDB)
	str("LEXDESK_LOG_LEVEL", &c.Log.Level)

	for key, dst := range map[string]*Duration{
		"LEXDESK_REMOTE_TIMEOUT":       &c.Remote.Timeout,
		"LEXDESK_PROBE_TIMEOUT":        &c.Probe.Timeout,
		"LEXDESK_PROBE_CACHE_INTERVAL": &c.Probe.CacheInterval,
		"LEXDESK_PROBE_INTERVAL":       &c.Probe.Interval,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("LEXDESK_MAX_ERRORS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeConfigInvalid, "LEXDESK_MAX_ERRORS", apperrors.KindInvalidInput)
		}
		c.Dispatch.MaxErrors = n
	}

	return nil
}

// expandPaths expands a leading ~ in paths.
func (c *Config) expandPaths() {
	homeDir, _ := os.UserHomeDir()

	expand := func(p string) string {
		if strings.HasPrefix(p, "~") {
			return filepath.Join(homeDir, p[1:])
		}
		return p
	}

	c.Paths.DataDir = expand(c.Paths.DataDir)
	c.Paths.JournalDB = expand(c.Paths.JournalDB)
}
