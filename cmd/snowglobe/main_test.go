package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"snowglobe/internal/config"
)

const smallScene = `
scene:
  seed: 3
  tree_count: 2
  radial_segments: 6
snowfall:
  flake_count: 24
shake:
  repeat: 2
  interval: 1ms
render:
  width: 48
  height: 32
`

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snowglobe.yml")
	cfg, err := loadConfig(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.FileExists(t, path)
}

func TestLoadConfigReportsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snowglobe.yml")
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  grid_size: -1\n"), 0o600))
	_, err := loadConfig(path, zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "scene.grid_size")
}

func TestRenderCommandWritesPNG(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "snowglobe.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(smallScene), 0o600))
	out := filepath.Join(dir, "card.png")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "render", "--out", out, "--frames", "3", "--shake", "--name", "Núria", "--locale", "c"})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestRenderCommandRejectsNegativeFrames(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "snowglobe.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(smallScene), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "render", "--frames", "-1", "--out", filepath.Join(dir, "x.png")})
	assert.Error(t, cmd.Execute())
}
