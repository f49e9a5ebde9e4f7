package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCreatesPackageFile(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", animalManifest)

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(ws.rootOpts("text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath})

	require.NoError(t, cmd.Execute())

	content := ws.readFTL(t, "en-US", "app.ftl")
	assert.Equal(t, "## Animal\n\nanimal = Animal\n\nanimal-dog = Dog\n", content)
	assert.Contains(t, buf.String(), "1 changed")
}

func TestGenerateConservativeKeepsTranslations(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", animalManifest)
	ws.writeFTL(t, "en-US", "app.ftl", "animal-dog = Good Boy\n")

	cmd := NewGenerateCommand(ws.rootOpts("text"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, ws.readFTL(t, "en-US", "app.ftl"), "animal-dog = Good Boy")
}

func TestGenerateAggressiveRegenerates(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", animalManifest)
	ws.writeFTL(t, "en-US", "app.ftl", "animal-dog = Good Boy\n\nstale = Old\n")

	cmd := NewGenerateCommand(ws.rootOpts("text"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath, "--aggressive"})

	require.NoError(t, cmd.Execute())
	content := ws.readFTL(t, "en-US", "app.ftl")
	assert.Contains(t, content, "animal-dog = Dog")
	assert.NotContains(t, content, "Good Boy")
	assert.NotContains(t, content, "stale")
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", animalManifest)

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(ws.rootOpts("text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath, "--dry-run"})

	require.NoError(t, cmd.Execute())
	assert.False(t, ws.ftlExists("en-US", "app.ftl"))
	assert.Contains(t, buf.String(), "+animal-dog = Dog")
}

func TestGenerateWorkersKeepOffFormatterWriters(t *testing.T) {
	ws := newWorkspace(t)
	first := ws.writeManifest(t, "app.json", animalManifest)
	second := ws.writeManifest(t, "admin.json", `{
  "package": "admin",
  "types": [
    {
      "type_name": "Role",
      "variants": [{"name": "Owner", "ftl_key": "role-owner"}]
    }
  ]
}`)

	opts := ws.rootOpts("text")
	opts.Verbose = true

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewGenerateCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{first, second, "--workers", "2"})

	require.NoError(t, cmd.Execute())

	// Per-package progress comes from worker goroutines, which must not
	// share the formatter's unsynchronized writers.
	assert.NotContains(t, errBuf.String(), "generating")
	assert.Contains(t, out.String(), "2 package(s)")
}

func TestGenerateJSONEnvelope(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", animalManifest)

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(ws.rootOpts("json"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestGenerateMissingManifestIsCommandError(t *testing.T) {
	ws := newWorkspace(t)

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(ws.rootOpts("text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/app.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E003")
}

func TestGenerateMissingConfigIsCommandError(t *testing.T) {
	opts := &RootOptions{Format: "text", Config: "/nonexistent/fluent.yaml"}

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"whatever.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
