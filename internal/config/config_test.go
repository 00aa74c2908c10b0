package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing listen address",
			mutate:  func(cfg *Config) { cfg.Server.ListenAddress = "" },
			wantErr: "server.listen_address must be set",
		},
		{
			name:    "zero frame interval",
			mutate:  func(cfg *Config) { cfg.Server.FrameInterval = 0 },
			wantErr: "server.frame_interval must be positive",
		},
		{
			name:    "non positive grid",
			mutate:  func(cfg *Config) { cfg.Scene.GridSize = 0 },
			wantErr: "scene.grid_size must be positive",
		},
		{
			name:    "negative tree count",
			mutate:  func(cfg *Config) { cfg.Scene.TreeCount = -1 },
			wantErr: "scene.tree_count cannot be negative",
		},
		{
			name:    "too few radial segments",
			mutate:  func(cfg *Config) { cfg.Scene.RadialSegments = 2 },
			wantErr: "scene.radial_segments must be at least 3",
		},
		{
			name:    "no flakes",
			mutate:  func(cfg *Config) { cfg.Snowfall.FlakeCount = 0 },
			wantErr: "snowfall.flake_count must be positive",
		},
		{
			name:    "non positive spawn radius",
			mutate:  func(cfg *Config) { cfg.Snowfall.SpawnRadius = -1 },
			wantErr: "snowfall.spawn_radius must be positive",
		},
		{
			name:    "negative fall",
			mutate:  func(cfg *Config) { cfg.Snowfall.FallAmount = -3 },
			wantErr: "snowfall.fall_amount cannot be negative",
		},
		{
			name:    "negative jitter",
			mutate:  func(cfg *Config) { cfg.Snowfall.Jitter = -1 },
			wantErr: "snowfall.jitter cannot be negative",
		},
		{
			name:    "negative threshold",
			mutate:  func(cfg *Config) { cfg.Snowfall.OcclusionThreshold = -1 },
			wantErr: "snowfall.occlusion_threshold cannot be negative",
		},
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.Snowfall.Workers = -1 },
			wantErr: "snowfall.workers cannot be negative",
		},
		{
			name:    "no repeat",
			mutate:  func(cfg *Config) { cfg.Shake.Repeat = 0 },
			wantErr: "shake.repeat must be positive",
		},
		{
			name:    "no interval",
			mutate:  func(cfg *Config) { cfg.Shake.Interval = 0 },
			wantErr: "shake.interval must be positive",
		},
		{
			name:    "empty render",
			mutate:  func(cfg *Config) { cfg.Render.Width = 0 },
			wantErr: "render dimensions must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tc.wantErr)
			}
		})
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snowglobe.yaml")
	data := `
server:
  frame_interval: 33ms
scene:
  seed: 2022
  tree_count: 5
shake:
  interval: 1000000
  allow_overlap: true
greeting:
  name: Marta
  locale: e
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 33*time.Millisecond, cfg.Server.FrameInterval.Duration())
	assert.Equal(t, int64(2022), cfg.Scene.Seed)
	assert.Equal(t, 5, cfg.Scene.TreeCount)
	assert.Equal(t, 300.0, cfg.Scene.GridSize, "untouched fields keep defaults")
	assert.Equal(t, time.Millisecond, cfg.Shake.Interval.Duration())
	assert.True(t, cfg.Shake.AllowOverlap)
	assert.Equal(t, "Marta", cfg.Greeting.Name)
	assert.Equal(t, 1000, cfg.Snowfall.FlakeCount)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/snowglobe.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server:\n  frame_interval: soon\n"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("snowfall:\n  flake_count: 0\n"), 0o600))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "snowfall.flake_count must be positive")
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snowglobe.yaml")
	require.NoError(t, WriteDefault(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "frame_interval: 16ms")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDurationRejectsNonScalar(t *testing.T) {
	var out struct {
		D Duration `yaml:"d"`
	}
	err := yaml.Unmarshal([]byte("d: [1, 2]\n"), &out)
	assert.Error(t, err)
}
