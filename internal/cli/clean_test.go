package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalManifest = `{"package": "app"}`

func TestCleanRemovesOrphans(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", minimalManifest)
	ws.writeFTL(t, "en-US", "app.ftl", "a = A\n")
	ws.writeFTL(t, "de-DE", "app.ftl", "a = Ah\n")
	ws.writeFTL(t, "de-DE", "app/orphan.ftl", "gone = G\n")

	buf := &bytes.Buffer{}
	cmd := NewCleanCommand(ws.rootOpts("text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath})

	require.NoError(t, cmd.Execute())

	assert.True(t, ws.ftlExists("de-DE", "app.ftl"))
	assert.False(t, ws.ftlExists("de-DE", "app/orphan.ftl"))
	assert.Contains(t, buf.String(), "removed: de-DE/app/orphan.ftl")
}

func TestCleanSparesOtherRegisteredPackages(t *testing.T) {
	ws := newWorkspace(t)
	appPath := ws.writeManifest(t, "app.json", `{"package": "app"}`)
	adminPath := ws.writeManifest(t, "admin.json", `{"package": "admin"}`)
	ws.writeFTL(t, "en-US", "app.ftl", "a = A\n")
	ws.writeFTL(t, "en-US", "admin.ftl", "b = B\n")
	ws.writeFTL(t, "de-DE", "app.ftl", "a = Ah\n")
	ws.writeFTL(t, "de-DE", "admin.ftl", "b = Beh\n")

	cmd := NewCleanCommand(ws.rootOpts("text"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{appPath, adminPath})

	require.NoError(t, cmd.Execute())

	assert.True(t, ws.ftlExists("de-DE", "app.ftl"))
	assert.True(t, ws.ftlExists("de-DE", "admin.ftl"))
}

func TestCleanDryRunReportsWithoutDeleting(t *testing.T) {
	ws := newWorkspace(t)
	manifestPath := ws.writeManifest(t, "app.json", minimalManifest)
	ws.writeFTL(t, "en-US", "app.ftl", "a = A\n")
	ws.writeFTL(t, "de-DE", "stray.ftl", "x = X\n")

	buf := &bytes.Buffer{}
	cmd := NewCleanCommand(ws.rootOpts("text"))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{manifestPath, "--dry-run"})

	require.NoError(t, cmd.Execute())

	assert.True(t, ws.ftlExists("de-DE", "stray.ftl"))
	assert.Contains(t, buf.String(), "orphan: de-DE/stray.ftl")
}
