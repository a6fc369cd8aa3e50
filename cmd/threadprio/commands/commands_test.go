package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/Swind/go-thread/core"
	"github.com/Swind/go-thread/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParsePriorityArg(t *testing.T) {
	assert.Equal(t, 3, parsePriorityArg("3"))
	assert.Equal(t, -2, parsePriorityArg("-2"))
	assert.Equal(t, "high", parsePriorityArg("high"))
	assert.Equal(t, "1.5", parsePriorityArg("1.5"))
}

func TestRunScenarios(t *testing.T) {
	rt, err := core.NewRuntime(nil)
	require.NoError(t, err)
	defer func() { _ = rt.Shutdown(context.Background()) }()

	results, err := runScenarios(context.Background(), rt)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %s", r.Scenario, r.Detail)
	}
}

func TestDemoCommand_YAML(t *testing.T) {
	out, err := execute(t, "demo", "--output", "yaml")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &results))
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, true, r["passed"], r["scenario"])
	}
}

func TestDemoCommand_Table(t *testing.T) {
	out, err := execute(t, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "set after death")
	assert.NotContains(t, out, "FAIL")
}

func TestDemoCommand_UnknownFormat(t *testing.T) {
	_, err := execute(t, "demo", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestSetCommand_Integer(t *testing.T) {
	out, err := execute(t, "set", "--priority", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "0 -> 3 (returned 3)")
}

func TestSetCommand_NonInteger(t *testing.T) {
	out, err := execute(t, "set", "--priority", "high")
	require.Error(t, err)
	assert.True(t, errors.IsTypeMismatch(err))
	assert.Contains(t, out, "priority stays 0")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "threadprio.toml")

	_, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)

	out, err := execute(t, "config", "show", "--config", path, "--format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, `namespace = "threadprio"`)

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Contains(t, shown, "priority")
}

func TestDemoCommand_MetricsEnabled(t *testing.T) {
	t.Setenv("THREADPRIO_METRICS_ENABLED", "true")

	out, err := execute(t, "demo", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "threadprio_thread_spawned_total 3")
	assert.Contains(t, out, "threadprio_priority_rejected_total 1")
}

func TestRootHelp_SetExamplesUseFlag(t *testing.T) {
	long := NewRootCmd().Long
	assert.Contains(t, long, "threadprio set --priority 3")
	assert.Contains(t, long, "threadprio set --priority high")
	assert.NotContains(t, long, "threadprio set 3")
}
