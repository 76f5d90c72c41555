package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd("1.2.3")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCmd(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "auth-front version 1.2.3\n", out)
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	out, err := runCmd(t, "config-init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated default config at: "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err = runCmd(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Result: PASS")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := runCmd(t, "config-init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCmd(t, "config-init", "--force", path)
	require.NoError(t, err)
}

func TestValidate_ReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "v0.1.0"}`), 0o600))

	out, err := runCmd(t, "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, out, "Errors (3):")
	assert.Contains(t, out, "server: server field is required and must be an object")
	assert.Contains(t, out, "Result: FAIL")
}

func TestServe_RequiresConfig(t *testing.T) {
	_, err := runCmd(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "config" not set`)
}

func TestServe_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "v0.1.0"}`), 0o600))

	_, err := runCmd(t, "serve", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
