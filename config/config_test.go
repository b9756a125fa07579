package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp_RefreshIntervalBounds(t *testing.T) {
	tooLow := Config{RefreshInterval: 10 * time.Millisecond, HistorySeconds: 120}.Clamp()
	assert.Equal(t, minRefreshInterval, tooLow.RefreshInterval)

	tooHigh := Config{RefreshInterval: 10 * time.Second, HistorySeconds: 120}.Clamp()
	assert.Equal(t, maxRefreshInterval, tooHigh.RefreshInterval)

	inRange := Config{RefreshInterval: time.Second, HistorySeconds: 120}.Clamp()
	assert.Equal(t, time.Second, inRange.RefreshInterval)
}

func TestClamp_HistorySecondsBounds(t *testing.T) {
	tooLow := Config{RefreshInterval: time.Second, HistorySeconds: 1}.Clamp()
	assert.Equal(t, minHistorySeconds, tooLow.HistorySeconds)

	tooHigh := Config{RefreshInterval: time.Second, HistorySeconds: 100_000}.Clamp()
	assert.Equal(t, maxHistorySeconds, tooHigh.HistorySeconds)
}

func TestDefault_IsAlreadyWithinBounds(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg, cfg.Clamp())
}

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ClampsOutOfRangeValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"refreshIntervalMs": 50, "historySeconds": 5000}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, minRefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, maxHistorySeconds, cfg.HistorySeconds)
}
