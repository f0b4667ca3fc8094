package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termcat/termcat/internal/config"
)

// chdir is restored when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 1.0, cfg.Stretch)
	assert.Equal(t, "auto", cfg.Pixelation)
	assert.Equal(t, 1, cfg.Loops)
	assert.False(t, cfg.Upscale)
	assert.Empty(t, cfg.Title)
}

func TestLoadNoFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadWorkingDirFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "termcat.toml"), []byte(`
title = "%b (%wx%h)"
stretch = 0.5
upscale = true
loops = -1
`), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "%b (%wx%h)", cfg.Title)
	assert.Equal(t, 0.5, cfg.Stretch)
	assert.True(t, cfg.Upscale)
	assert.Equal(t, -1, cfg.Loops)
	// Unset keys keep their defaults.
	assert.Equal(t, "auto", cfg.Pixelation)
}

func TestLoadHomeFileOverriddenByWorkingDir(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, work)

	confDir := filepath.Join(home, ".config", "termcat")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "config.toml"), []byte(`
pixelation = "kitty"
loops = 3
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "termcat.toml"), []byte(`
loops = 5
`), 0o644))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "kitty", cfg.Pixelation)
	assert.Equal(t, 5, cfg.Loops)
}

func TestLoadBadToml(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "termcat.toml"), []byte("not = toml ="), 0o644))
	_, err := config.Load()
	assert.Error(t, err)
}
