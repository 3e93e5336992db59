package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello, {{name}}!"), 0o644))

	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"name": "World"}`), 0o644))

	out, err := runCmd(t, "render", tmplPath, "--data", dataPath)
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", out)
}

func TestRenderCommandYAMLData(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello, {{name}}!"), 0o644))

	dataPath := filepath.Join(dir, "data.yaml")
	require.NoError(t, os.WriteFile(dataPath, []byte("name: World\n"), 0o644))

	out, err := runCmd(t, "render", tmplPath, "--data", dataPath)
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", out)
}

func TestRenderCommandStrictMissingVariable(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello, {{name}}!"), 0o644))

	_, err := runCmd(t, "render", tmplPath, "--strict")
	require.Error(t, err)
}

func TestRenderCommandAlternateDelims(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello, <%name%>!"), 0o644))

	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"name": "World"}`), 0o644))

	out, err := runCmd(t, "render", tmplPath, "--data", dataPath, "--delims", "<% %>")
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", out)
}

func TestRenderCommandV1Compat(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello, {{name}}!"), 0o644))

	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"name": "World"}`), 0o644))

	out, err := runCmd(t, "render", tmplPath, "--data", dataPath, "--v1compat")
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", out)
}

func TestRenderCommandV1CompatRaw(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "greeting.mustache")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Hello, {{name}}!"), 0o644))

	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"name": "<b>World</b>"}`), 0o644))

	out, err := runCmd(t, "render", tmplPath, "--data", dataPath, "--v1compat", "--escape", "raw")
	require.NoError(t, err)
	require.Equal(t, "Hello, <b>World</b>!", out)
}

func TestLintCommand(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.mustache")
	require.NoError(t, os.WriteFile(ok, []byte("{{#a}}{{/a}}"), 0o644))

	out, err := runCmd(t, "lint", ok)
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)

	bad := filepath.Join(dir, "bad.mustache")
	require.NoError(t, os.WriteFile(bad, []byte("{{#a}}"), 0o644))

	_, err = runCmd(t, "lint", bad)
	require.Error(t, err)
}
