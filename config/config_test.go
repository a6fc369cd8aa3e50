package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Swind/go-thread/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, core.DefaultPriorityBounds(), cfg.Bounds())
	assert.Equal(t, time.Second, cfg.PollInterval())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.toml", `
[runtime]
name = "workers"

[priority]
default = 2
clamp = true
min = -3
max = 3

[log]
level = "debug"
json = true

[history]
capacity = 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "workers", cfg.Runtime.Name)
	assert.Equal(t, 2, cfg.Priority.Default)
	assert.Equal(t, core.ClampedPriorityBounds(-3, 3), cfg.Bounds())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)

	rc := cfg.RuntimeConfig()
	assert.Equal(t, "workers", rc.Name)
	assert.Equal(t, 2, rc.DefaultPriority)
	assert.Equal(t, 8, rc.HistoryCapacity)
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultFileName, "[priority]\ndefault = -1\n")
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Priority.Default)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "env.toml", "[priority]\ndefault = 1\n")
	t.Setenv("THREADPRIO_PRIORITY_DEFAULT", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Priority.Default)
}

func TestLoad_InvalidBounds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "[priority]\nclamp = true\nmin = 5\nmax = 1\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[history]")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.Error(t, WriteDefault(path), "existing files are not overwritten")
}
