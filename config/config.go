// Package config holds the two knobs the core exposes to a collaborator
// (spec §6): sampling cadence and history length. Adapted from the
// teacher's JSON config loader, trimmed to the fields the core owns —
// theme/font/panel settings belong to the out-of-scope rendering layer.
package config

import (
	"encoding/json"
	"os"
	"time"
)

const (
	minRefreshInterval = 100 * time.Millisecond
	maxRefreshInterval = 5000 * time.Millisecond
	minHistorySeconds  = 10
	maxHistorySeconds  = 1800
)

// Config is the set of plain values injected into the sampler and models
// on construction, never read from a global (spec §9 design note).
type Config struct {
	RefreshInterval time.Duration `json:"refreshIntervalMs"`
	HistorySeconds  int           `json:"historySeconds"`
}

// Default returns the recommended starting point: 1s cadence, 120s of
// history (the spec's default H at 1 Hz).
func Default() Config {
	return Config{
		RefreshInterval: time.Second,
		HistorySeconds:  120,
	}
}

// Load reads a JSON config file and clamps both fields to their valid
// ranges. A missing file yields Default() rather than an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	var raw struct {
		RefreshIntervalMs int `json:"refreshIntervalMs"`
		HistorySeconds    int `json:"historySeconds"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}
	if raw.RefreshIntervalMs > 0 {
		cfg.RefreshInterval = time.Duration(raw.RefreshIntervalMs) * time.Millisecond
	}
	if raw.HistorySeconds > 0 {
		cfg.HistorySeconds = raw.HistorySeconds
	}
	return cfg.Clamp(), nil
}

// Clamp enforces refreshIntervalMs in [100, 5000] and historySeconds in
// [10, 1800], per spec §6.
func (c Config) Clamp() Config {
	if c.RefreshInterval < minRefreshInterval {
		c.RefreshInterval = minRefreshInterval
	}
	if c.RefreshInterval > maxRefreshInterval {
		c.RefreshInterval = maxRefreshInterval
	}
	if c.HistorySeconds < minHistorySeconds {
		c.HistorySeconds = minHistorySeconds
	}
	if c.HistorySeconds > maxHistorySeconds {
		c.HistorySeconds = maxHistorySeconds
	}
	return c
}
