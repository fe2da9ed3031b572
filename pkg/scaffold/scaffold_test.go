package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugmark/pkg/lint"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

func TestPluginScaffold(t *testing.T) {
	parent := t.TempDir()

	dir, err := Plugin(context.TODO(), parent, PluginOptions{
		Name:        "code-review",
		Description: "Review helpers",
		AuthorName:  "Dev Team",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "code-review"), dir)

	p, err := plugin.Load(context.TODO(), dir)
	require.NoError(t, err)
	require.NotNil(t, p.Manifest)
	assert.Equal(t, "code-review", p.Manifest.Name)
	assert.Equal(t, "Review helpers", p.Manifest.Description)
	assert.Equal(t, "0.1.0", p.Manifest.Version)

	// The skeleton passes its own validation.
	report := lint.CheckPlugin(context.TODO(), p)
	assert.Equal(t, 0, report.Errors(), "issues: %v", report.Issues)
	assert.Equal(t, 0, report.Warnings(), "issues: %v", report.Issues)
}

func TestPluginScaffoldRejectsBadName(t *testing.T) {
	_, err := Plugin(context.TODO(), t.TempDir(), PluginOptions{Name: "Bad Name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kebab-case")
}

func TestPluginScaffoldRefusesExisting(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "code-review"), 0o755))

	_, err := Plugin(context.TODO(), parent, PluginOptions{Name: "code-review"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestMarketplaceScaffold(t *testing.T) {
	parent := t.TempDir()

	dir, err := Marketplace(context.TODO(), parent, MarketplaceOptions{
		Name:      "dev-tools",
		OwnerName: "Example Org",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".claude-plugin", "marketplace.json"))
	require.NoError(t, err)

	m, err := manifest.ParseMarketplace(data)
	require.NoError(t, err)
	assert.Equal(t, "dev-tools", m.Name)
	require.NotNil(t, m.Owner)
	assert.Equal(t, "Example Org", m.Owner.Name)
	assert.Empty(t, m.Plugins)
}
