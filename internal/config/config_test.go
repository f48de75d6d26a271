package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/learnlog/internal/store"
)

// isolate points every lookup at a temp home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvDB, "")
	return home
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(home), cfg)
	assert.Equal(t, filepath.Join(home, "learnings.db"), cfg.Database.Path)
	assert.Equal(t, store.DriverPure, cfg.Database.Driver)
	assert.Equal(t, 72*time.Hour, time.Duration(cfg.Review.Staleness))
	assert.Equal(t, 7, cfg.Export.Days)
}

func TestLoad_HomeConfigFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, `
database:
  driver: sqlite3
  busy_timeout_ms: 250
review:
  staleness: 24h
export:
  max_per_kind: 10
log:
  level: debug
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, store.DriverCgo, cfg.Database.Driver)
	assert.Equal(t, 250, cfg.Database.BusyTimeoutMS)
	assert.Equal(t, 24*time.Hour, time.Duration(cfg.Review.Staleness))
	assert.Equal(t, 10, cfg.Export.MaxPerKind)
	assert.Equal(t, 7, cfg.Export.Days, "unset keys keep defaults")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	other := t.TempDir()
	path := writeConfig(t, other, "review:\n  limit: 5\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDB, "/tmp/elsewhere.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Review.Limit)
	assert.Equal(t, "/tmp/elsewhere.db", cfg.Database.Path)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown top-level key", body: "colour: blue\n"},
		{name: "unknown nested key", body: "database:\n  pth: x.db\n"},
		{name: "bad driver", body: "database:\n  driver: postgres\n"},
		{name: "bad duration", body: "review:\n  staleness: three days\n"},
		{name: "zero days", body: "export:\n  days: 0\n"},
		{name: "wrong type", body: "review:\n  limit: lots\n"},
		{name: "bad level", body: "log:\n  level: loud\n"},
		{name: "invalid yaml", body: "database: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default("/home")
			assert.Error(t, Parse([]byte(tc.body), "config.yaml", &cfg))
		})
	}
}

func TestParse_EmptyKeepsDefaults(t *testing.T) {
	cfg := Default("/home")
	require.NoError(t, Parse([]byte("\n  \n"), "config.yaml", &cfg))
	assert.Equal(t, Default("/home"), cfg)
}

func TestDuration_RoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Review{Staleness: Duration(90 * time.Minute), Limit: 3})
	require.NoError(t, err)
	assert.Contains(t, string(out), "staleness: 1h30m0s")

	var r Review
	require.NoError(t, yaml.Unmarshal(out, &r))
	assert.Equal(t, 90*time.Minute, time.Duration(r.Staleness))
}

func TestEnsureDirAndOpen(t *testing.T) {
	home := isolate(t)
	cfg := Default(filepath.Join(home, "nested", "dir"))

	require.NoError(t, cfg.EnsureDir())
	s, err := store.Open(cfg.Database.Path, cfg.StoreOptions()...)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestLogLevel_UnknownIsInfo(t *testing.T) {
	cfg := Config{Log: Log{Level: ""}}
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}
