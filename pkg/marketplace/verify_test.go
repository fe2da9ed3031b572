package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/plugmark/pkg/lint"
)

func verifyRoot(t *testing.T, root string) *lint.Report {
	t.Helper()
	m, err := Load(context.TODO(), root)
	require.NoError(t, err)
	return Verify(context.TODO(), m, VerifyOptions{})
}

func reportRules(r *lint.Report) []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Rule)
	}
	return out
}

func TestVerifyClean(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "plugins/code-review", "code-review")
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "code-review", "source": "./plugins/code-review"}`))

	report := verifyRoot(t, root)
	assert.Equal(t, 0, report.Errors(), "issues: %v", report.Issues)
	assert.Equal(t, 0, report.Warnings(), "issues: %v", report.Issues)
}

func TestVerifyMissingManifest(t *testing.T) {
	report := verifyRoot(t, t.TempDir())
	assert.Contains(t, reportRules(report), lint.RuleManifestMissing)
	assert.True(t, report.Failed(false))
}

func TestVerifyEntryMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "ghost", "source": "./plugins/ghost"}`))

	report := verifyRoot(t, root)
	assert.Contains(t, reportRules(report), lint.RuleEntryMissing)
}

func TestVerifyEntryNameDrift(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "plugins/code-review", "code-review")
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "code-reviews", "source": "./plugins/code-review"}`))

	report := verifyRoot(t, root)
	assert.Contains(t, reportRules(report), lint.RuleEntryNameDrift)
}

func TestVerifyEntryVersionContradiction(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "plugins/code-review", "code-review")
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "code-review", "version": "2.0.0", "source": "./plugins/code-review"}`))

	report := verifyRoot(t, root)
	found := false
	for _, issue := range report.Issues {
		if issue.Rule == lint.RuleEntryContradicts {
			found = true
			assert.Equal(t, lint.SeverityError, issue.Severity)
			assert.Contains(t, issue.Message, `"2.0.0"`)
		}
	}
	assert.True(t, found)
}

func TestVerifyNestedPluginIssuesPrefixed(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "plugins/code-review", "code-review")
	// Break the plugin's frontmatter so the nested report has an issue.
	writeFile(t, root, "plugins/code-review/commands/broken.md",
		"---\ndescription: [unclosed\n---\n\nBody.\n")
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "code-review", "source": "./plugins/code-review"}`))

	report := verifyRoot(t, root)
	found := false
	for _, issue := range report.Issues {
		if issue.Rule == lint.RuleFrontmatter {
			found = true
			assert.Equal(t, "plugins/code-review/commands/broken.md", issue.Path)
		}
	}
	assert.True(t, found)
}

func TestVerifyOrphanPlugin(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "plugins/code-review", "code-review")
	writePlugin(t, root, "plugins/unlisted", "unlisted")
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "code-review", "source": "./plugins/code-review"}`))

	report := verifyRoot(t, root)
	found := false
	for _, issue := range report.Issues {
		if issue.Rule == lint.RuleOrphanPlugin {
			found = true
			assert.Equal(t, "plugins/unlisted", issue.Path)
			assert.Equal(t, lint.SeverityWarning, issue.Severity)
		}
	}
	assert.True(t, found)
}

func TestVerifyRemoteSourcesSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".claude-plugin/marketplace.json",
		marketplaceJSON(`{"name": "remote-plugin", "source": {"source": "github", "repo": "example/remote-plugin"}}`))

	report := verifyRoot(t, root)
	assert.Equal(t, 0, report.Errors(), "issues: %v", report.Issues)
}
