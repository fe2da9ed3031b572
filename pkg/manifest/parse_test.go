package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlugin(t *testing.T) {
	data := []byte(`{
		"name": "code-review",
		"description": "Automated code review helpers",
		"version": "1.2.0",
		"author": {"name": "Dev Team", "email": "dev@example.com"}
	}`)

	m, err := ParsePlugin(data)
	require.NoError(t, err)
	assert.Equal(t, "code-review", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	require.NotNil(t, m.Author)
	assert.Equal(t, "Dev Team", m.Author.Name)
	assert.False(t, m.Author.FromString)
}

func TestParsePluginAuthorString(t *testing.T) {
	data := []byte(`{
		"name": "code-review",
		"description": "d",
		"version": "1.0.0",
		"author": "Dev Team"
	}`)

	m, err := ParsePlugin(data)
	require.NoError(t, err)
	require.NotNil(t, m.Author)
	assert.Equal(t, "Dev Team", m.Author.Name)
	assert.True(t, m.Author.FromString)
}

func TestParsePluginInvalidJSON(t *testing.T) {
	_, err := ParsePlugin([]byte(`{"name": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse manifest JSON")
}

func TestParsePluginDiagnosesHuJSON(t *testing.T) {
	// Trailing comma and a comment: valid HuJSON, invalid JSON.
	data := []byte(`{
		// plugin manifest
		"name": "code-review",
		"description": "d",
		"version": "1.0.0",
		"author": "Dev",
	}`)

	_, err := ParsePlugin(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not strict JSON")
	assert.Contains(t, err.Error(), "comments and trailing commas")
}

func TestParseMarketplace(t *testing.T) {
	data := []byte(`{
		"name": "dev-tools",
		"owner": {"name": "Example Org"},
		"plugins": [
			{"name": "code-review", "source": "./plugins/code-review"},
			{"name": "deploy-helper", "source": {"source": "github", "repo": "example/deploy-helper"}}
		]
	}`)

	m, err := ParseMarketplace(data)
	require.NoError(t, err)
	assert.Equal(t, "dev-tools", m.Name)
	require.NotNil(t, m.Owner)
	assert.Equal(t, "Example Org", m.Owner.Name)
	require.Len(t, m.Plugins, 2)

	assert.Equal(t, SourceKindLocal, m.Plugins[0].Source.Kind)
	assert.Equal(t, "./plugins/code-review", m.Plugins[0].Source.Path)
	assert.Equal(t, SourceKindGitHub, m.Plugins[1].Source.Kind)
	assert.Equal(t, "example/deploy-helper", m.Plugins[1].Source.Repo)
}

func TestUnknownPluginKeys(t *testing.T) {
	data := []byte(`{
		"name": "x",
		"descripton": "typo",
		"version": "1.0.0",
		"extra": true
	}`)

	keys := UnknownPluginKeys(data)
	assert.Equal(t, []string{"descripton", "extra"}, keys)
}

func TestUnknownMarketplaceKeys(t *testing.T) {
	data := []byte(`{"name": "x", "owner": {"name": "o"}, "pluginss": []}`)
	assert.Equal(t, []string{"pluginss"}, UnknownMarketplaceKeys(data))
}
