package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	content := []byte(`---
description: Do the thing
model: sonnet
---

Body text.
`)
	fm, err := parseFrontmatter(content)
	require.NoError(t, err)
	assert.True(t, fm.Present)
	assert.Equal(t, "Do the thing", fm.Fields["description"])
}

func TestParseFrontmatterAbsent(t *testing.T) {
	fm, err := parseFrontmatter([]byte("Just a body.\n"))
	require.NoError(t, err)
	assert.False(t, fm.Present)
}

func TestParseFrontmatterInvalidYAML(t *testing.T) {
	content := []byte("---\ndescription: [unclosed\n---\n\nBody.\n")
	fm, err := parseFrontmatter(content)
	require.Error(t, err)
	assert.True(t, fm.Present)
	assert.Contains(t, err.Error(), "invalid frontmatter YAML")
}

func TestDecodeCommandMeta(t *testing.T) {
	fields := map[string]any{
		"description":   "Review code",
		"argument-hint": "[file]",
		"allowed-tools": []any{"Bash", "Read"},
	}

	var meta CommandMeta
	require.NoError(t, decodeMeta(fields, &meta))
	assert.Equal(t, "Review code", meta.Description)
	assert.Equal(t, "[file]", meta.ArgumentHint)
	assert.Equal(t, []string{"Bash", "Read"}, meta.AllowedTools)
}

func TestDecodeCommandMetaScalarToolList(t *testing.T) {
	// A single scalar stands in for a one-element list.
	var meta CommandMeta
	require.NoError(t, decodeMeta(map[string]any{"allowed-tools": "Bash"}, &meta))
	assert.Equal(t, []string{"Bash"}, meta.AllowedTools)
}

func TestDecodeAgentMeta(t *testing.T) {
	fields := map[string]any{
		"name":        "security-reviewer",
		"description": "Security specialist",
		"color":       "red",
	}

	var meta AgentMeta
	require.NoError(t, decodeMeta(fields, &meta))
	assert.Equal(t, "security-reviewer", meta.Name)
	assert.Equal(t, "red", meta.Color)
}

func TestRawFrontmatterBlock(t *testing.T) {
	block, ok := rawFrontmatterBlock([]byte("---\na: 1\nb: 2\n---\nBody"))
	require.True(t, ok)
	assert.Equal(t, "a: 1\nb: 2", string(block))

	_, ok = rawFrontmatterBlock([]byte("No frontmatter here"))
	assert.False(t, ok)

	_, ok = rawFrontmatterBlock([]byte("---\nunterminated: true\n"))
	assert.False(t, ok)
}
