package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// workspace is a throwaway project layout: a fluent.yaml, an assets
// tree and a directory for package manifests.
type workspace struct {
	Root       string
	ConfigPath string
	AssetsDir  string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	cfgPath := filepath.Join(root, "fluent.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("fallback_language: en-US\nassets_dir: assets\n"), 0o644))
	return &workspace{
		Root:       root,
		ConfigPath: cfgPath,
		AssetsDir:  filepath.Join(root, "assets"),
	}
}

func (w *workspace) writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.Root, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (w *workspace) writeFTL(t *testing.T, locale, rel, content string) {
	t.Helper()
	path := filepath.Join(w.AssetsDir, locale, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (w *workspace) readFTL(t *testing.T, locale, rel string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(w.AssetsDir, locale, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(raw)
}

func (w *workspace) ftlExists(locale, rel string) bool {
	_, err := os.Stat(filepath.Join(w.AssetsDir, locale, filepath.FromSlash(rel)))
	return err == nil
}

func (w *workspace) rootOpts(format string) *RootOptions {
	return &RootOptions{Format: format, Config: w.ConfigPath}
}

const animalManifest = `{
  "package": "app",
  "types": [
    {
      "type_name": "Animal",
      "variants": [
        {"name": "Dog", "ftl_key": "animal-dog"},
        {"name": "This", "ftl_key": "animal"}
      ]
    }
  ],
  "keys": [
    {"key": "greeting", "variables": ["name"], "source_file": "src/app.go", "source_line": 12}
  ]
}`
