package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugmark/pkg/manifest"
)

func writePluginFixture(t *testing.T, dir, name string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".claude-plugin"), 0o755))
	manifestJSON := `{
  "name": "` + name + `",
  "description": "A test plugin",
  "version": "1.0.0",
  "author": {"name": "Dev Team"}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".claude-plugin", "plugin.json"), []byte(manifestJSON), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "commands"), 0o755))
	command := "---\ndescription: Review a change\n---\n\nReview the staged diff.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commands", "review.md"), []byte(command), 0o644))
}

func newTestInstaller(t *testing.T) (*Installer, *Store) {
	t.Helper()

	store, _ := openTestStore(t)
	installer, err := NewInstaller(filepath.Join(t.TempDir(), "plugins"), store)
	require.NoError(t, err)
	return installer, store
}

func localEntry(name string) manifest.MarketplaceEntry {
	return manifest.MarketplaceEntry{
		Name:   name,
		Source: manifest.Source{Kind: manifest.SourceKindLocal, Path: "./plugins/" + name},
	}
}

func TestInstall(t *testing.T) {
	installer, store := newTestInstaller(t)

	src := filepath.Join(t.TempDir(), "code-review")
	writePluginFixture(t, src, "code-review")

	receipt, err := installer.Install(context.TODO(), "dev-tools", localEntry("code-review"), src, false)
	require.NoError(t, err)
	assert.Equal(t, "code-review", receipt.Name)
	assert.Equal(t, "dev-tools", receipt.Marketplace)
	assert.Equal(t, "1.0.0", receipt.Version)
	assert.NotEmpty(t, receipt.ID)

	// The tree was copied into the install root.
	assert.FileExists(t, filepath.Join(installer.InstallDir("code-review"), ".claude-plugin", "plugin.json"))
	assert.FileExists(t, filepath.Join(installer.InstallDir("code-review"), "commands", "review.md"))

	got, err := store.Get(context.TODO(), "code-review", "dev-tools")
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, got.ID)
}

func TestInstallRefusesInvalidPlugin(t *testing.T) {
	installer, _ := newTestInstaller(t)

	src := filepath.Join(t.TempDir(), "broken")
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".claude-plugin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".claude-plugin", "plugin.json"), []byte(`{"name": "broken"}`), 0o644))

	_, err := installer.Install(context.TODO(), "dev-tools", localEntry("broken"), src, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to install")
	assert.NoDirExists(t, installer.InstallDir("broken"))
}

func TestInstallRefusesExistingWithoutForce(t *testing.T) {
	installer, _ := newTestInstaller(t)

	src := filepath.Join(t.TempDir(), "code-review")
	writePluginFixture(t, src, "code-review")

	_, err := installer.Install(context.TODO(), "dev-tools", localEntry("code-review"), src, false)
	require.NoError(t, err)

	_, err = installer.Install(context.TODO(), "dev-tools", localEntry("code-review"), src, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
}

func TestInstallForceOverwrites(t *testing.T) {
	installer, store := newTestInstaller(t)

	src := filepath.Join(t.TempDir(), "code-review")
	writePluginFixture(t, src, "code-review")

	_, err := installer.Install(context.TODO(), "dev-tools", localEntry("code-review"), src, false)
	require.NoError(t, err)

	// Leave a stale file behind so the overwrite is observable.
	stale := filepath.Join(installer.InstallDir("code-review"), "stale.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	entry := localEntry("code-review")
	entry.Version = "1.1.0"
	receipt, err := installer.Install(context.TODO(), "dev-tools", entry, src, true)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", receipt.Version)
	assert.NoFileExists(t, stale)

	receipts, err := store.List(context.TODO())
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "1.1.0", receipts[0].Version)
}

func TestUninstall(t *testing.T) {
	installer, store := newTestInstaller(t)

	src := filepath.Join(t.TempDir(), "code-review")
	writePluginFixture(t, src, "code-review")

	_, err := installer.Install(context.TODO(), "dev-tools", localEntry("code-review"), src, false)
	require.NoError(t, err)

	require.NoError(t, installer.Uninstall(context.TODO(), "code-review", "dev-tools"))
	assert.NoDirExists(t, installer.InstallDir("code-review"))

	_, err = store.Get(context.TODO(), "code-review", "dev-tools")
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestUninstallNotInstalled(t *testing.T) {
	installer, _ := newTestInstaller(t)

	err := installer.Uninstall(context.TODO(), "ghost", "dev-tools")
	assert.ErrorIs(t, err, ErrNotInstalled)
}
