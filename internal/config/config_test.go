package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "agewise.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agewise.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agewise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider:
  timeout: 10s
redis:
  addr: ""
report:
  periods: 6
  show_current: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, Duration(10*time.Second), cfg.Provider.Timeout)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 6, cfg.Report.Periods)
	assert.False(t, cfg.Report.ShowCurrent)

	// Untouched values keep their defaults.
	assert.Equal(t, Default().Provider.BaseURL, cfg.Provider.BaseURL)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, Default().Report.PeriodType, cfg.Report.PeriodType)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agewise.yaml")

	want := Default()
	want.Provider.BaseURL = "https://provider.test/api"
	want.Database.DSN = "postgres://app@db:5432/agewise"
	want.Server.WorkerCount = 8

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
