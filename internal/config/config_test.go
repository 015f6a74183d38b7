package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lexdesk/lexdesk/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Dispatch.MaxErrors)
	assert.Equal(t, 5*time.Second, cfg.Probe.Timeout.Duration)
	assert.Equal(t, 30*time.Second, cfg.Probe.CacheInterval.Duration)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderBackend, cfg.Remote.Provider)
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexdesk.toml")
	content := `
[remote]
base_url = "https://api.example.test"
provider = "openai"
timeout = "3s"

[probe]
cache_interval = "45s"

[dispatch]
max_errors = 5

[paths]
journal_db = "~/journal.db"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.test", cfg.Remote.BaseURL)
	assert.Equal(t, ProviderOpenAI, cfg.Remote.Provider)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout.Duration)
	assert.Equal(t, 45*time.Second, cfg.Probe.CacheInterval.Duration)
	assert.Equal(t, 5, cfg.Dispatch.MaxErrors)
	assert.NotContains(t, cfg.Paths.JournalDB, "~")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[remote]\ntimeout = \"soon\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LEXDESK_REMOTE_URL":     "http://backend:9000",
		"LEXDESK_PROBE_TIMEOUT":  "2s",
		"LEXDESK_MAX_ERRORS":     "4",
		"LEXDESK_REMOTE_API_KEY": "secret",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "http://backend:9000", cfg.Remote.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout.Duration)
	assert.Equal(t, 4, cfg.Dispatch.MaxErrors)
	assert.Equal(t, "secret", cfg.Remote.APIKey)

	env["LEXDESK_MAX_ERRORS"] = "many"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestHealthPathFollowsProvider(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/health", cfg.HealthPath())

	cfg.Remote.Provider = ProviderOpenAI
	assert.Equal(t, "/models", cfg.HealthPath())

	cfg.Probe.HealthPath = "/status"
	assert.Equal(t, "/status", cfg.HealthPath())
}

func TestDurationD(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout.D())
	assert.Equal(t, time.Duration(0), Duration{}.D())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Remote.Provider = "carrier-pigeon"
	cfg.Dispatch.MaxErrors = 0
	cfg.Mock.MinLatency = D(3 * time.Second)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote.provider")
	assert.Contains(t, err.Error(), "max_errors")
	assert.Contains(t, err.Error(), "latency")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lexdesk.toml")
	cfg := Default()
	cfg.Remote.BaseURL = "http://saved:1234"
	cfg.Probe.Interval = D(time.Minute)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved:1234", loaded.Remote.BaseURL)
	assert.Equal(t, time.Minute, loaded.Probe.Interval.Duration)
}
