// Package config provides configuration types for LexDesk.
package config

import (
	"fmt"
	"time"
)

// Config represents the main LexDesk configuration.
type Config struct {
	Remote   RemoteConfig   `toml:"remote"`
	Probe    ProbeConfig    `toml:"probe"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Mock     MockConfig     `toml:"mock"`
	Server   ServerConfig   `toml:"server"`
	Paths    PathsConfig    `toml:"paths"`
	Log      LogConfig      `toml:"log"`
}

// RemoteConfig configures the remote AI backend.
type RemoteConfig struct {
	BaseURL  string   `toml:"base_url"`
	Provider string   `toml:"provider"` // backend, openai
	APIKey   string   `toml:"api_key"`
	Model    string   `toml:"model"` // openai provider only
	Timeout  Duration `toml:"timeout"`
}

// ProbeConfig configures the availability prober.
type ProbeConfig struct {
	CacheInterval Duration `toml:"cache_interval"`
	Interval      Duration `toml:"interval"`
	Timeout       Duration `toml:"timeout"`
	HealthPath    string   `toml:"health_path"` // empty: provider default
}

// DispatchConfig configures the fallback dispatcher.
type DispatchConfig struct {
	MaxErrors int `toml:"max_errors"`
}

// MockConfig configures the local mock generator.
type MockConfig struct {
	MinLatency Duration `toml:"min_latency"`
	MaxLatency Duration `toml:"max_latency"`
	Seed       int64    `toml:"seed"` // 0 picks a time-based seed
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	RateLimit       float64  `toml:"rate_limit"` // requests per second per client
	Burst           int      `toml:"burst"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// PathsConfig contains file path settings.
type PathsConfig struct {
	DataDir   string `toml:"data_dir"`
	JournalDB string `toml:"journal_db"` // empty disables the journal
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `toml:"level"`
	Console bool   `toml:"console"`
}

// Provider names.
const (
	ProviderBackend = "backend"
	ProviderOpenAI  = "openai"
)

// Duration is a time.Duration that reads "5s" style strings from TOML.
type Duration struct {
	time.Duration
}

// D wraps a time.Duration.
func D(d time.Duration) Duration {
	return Duration{Duration: d}
}

// D returns the wrapped time.Duration.
func (d Duration) D() time.Duration {
	return d.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
