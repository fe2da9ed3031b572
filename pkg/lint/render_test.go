package lint

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestRenderText(t *testing.T) {
	r := NewReport("my-plugin")
	r.Add(SeverityError, RuleManifestField, ".claude-plugin/plugin.json", "name: required key is missing")
	r.Add(SeverityWarning, RuleFileNaming, "commands/Bad.md", "not kebab-case")

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatText))

	out := buf.String()
	assert.Contains(t, out, ".claude-plugin/plugin.json: name: required key is missing")
	assert.Contains(t, out, "(manifest-field)")
	assert.Contains(t, out, "my-plugin: 1 error(s), 1 warning(s)")
}

func TestRenderTextClean(t *testing.T) {
	r := NewReport("my-plugin")

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatText))
	assert.Contains(t, buf.String(), "0 error(s), 0 warning(s)")
}

func TestRenderJSON(t *testing.T) {
	r := NewReport("my-plugin")
	r.Add(SeverityError, RuleContentMissing, ".", "plugin ships no commands, agents, or skills")

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatJSON))

	var out struct {
		Root    string  `json:"root"`
		Issues  []Issue `json:"issues"`
		Summary struct {
			Errors   int `json:"errors"`
			Warnings int `json:"warnings"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "my-plugin", out.Root)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, SeverityError, out.Issues[0].Severity)
	assert.Equal(t, 1, out.Summary.Errors)
}

func TestRenderJSONEmptyIssuesArray(t *testing.T) {
	r := NewReport("clean")

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatJSON))
	assert.Contains(t, buf.String(), `"issues": []`)
}
