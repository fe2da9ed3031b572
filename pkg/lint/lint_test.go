package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCounts(t *testing.T) {
	r := NewReport("my-plugin")
	r.Add(SeverityError, RuleManifestField, ".claude-plugin/plugin.json", "name: missing")
	r.Add(SeverityWarning, RuleFileNaming, "commands/Bad.md", "not kebab-case")
	r.Add(SeverityError, RuleContentMissing, ".", "no content")

	assert.Equal(t, 2, r.Errors())
	assert.Equal(t, 1, r.Warnings())
}

func TestReportFailed(t *testing.T) {
	clean := NewReport("p")
	assert.False(t, clean.Failed(false))
	assert.False(t, clean.Failed(true))

	warned := NewReport("p")
	warned.Add(SeverityWarning, RuleFileNaming, "x", "m")
	assert.False(t, warned.Failed(false))
	assert.True(t, warned.Failed(true))

	errored := NewReport("p")
	errored.Add(SeverityError, RuleManifestMissing, "x", "m")
	assert.True(t, errored.Failed(false))
}

func TestReportMergePrefixesPaths(t *testing.T) {
	inner := NewReport("plugins/code-review")
	inner.Add(SeverityError, RuleManifestField, ".claude-plugin/plugin.json", "m")

	outer := NewReport(".")
	outer.Merge(inner, "plugins/code-review")

	assert.Equal(t, "plugins/code-review/.claude-plugin/plugin.json", outer.Issues[0].Path)
}

func TestReportSortDeterministic(t *testing.T) {
	r := NewReport("p")
	r.Add(SeverityWarning, "b-rule", "z/path", "m")
	r.Add(SeverityError, "a-rule", "a/path", "m2")
	r.Add(SeverityError, "b-rule", "a/path", "m1")
	r.Sort()

	assert.Equal(t, "a/path", r.Issues[0].Path)
	assert.Equal(t, "a-rule", r.Issues[0].Rule)
	assert.Equal(t, "b-rule", r.Issues[1].Rule)
	assert.Equal(t, "z/path", r.Issues[2].Path)
}
