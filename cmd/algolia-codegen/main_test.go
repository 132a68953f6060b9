package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.RunContext(context.Background(), append([]string{"algolia-codegen", "--log-file", filepath.Join(t.TempDir(), "test.log")}, args...))
	return out.String(), err
}

func TestSchemaCommand(t *testing.T) {
	out, err := runApp(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"generates"`)
	assert.Contains(t, out, `"overwrite"`)
}

func TestGenerate_MissingConfig(t *testing.T) {
	_, err := runApp(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestGenerate_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algolia-codegen.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"generates": {}}`), 0o644))

	_, err := runApp(t, "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config file")
}

func TestGenerate_NoTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algolia-codegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("overwrite: false\ngenerates: {}\n"), 0o644))

	_, err := runApp(t, "--dry-run", "-c", path, "generate", "--jobs", "2")
	assert.NoError(t, err)
}
