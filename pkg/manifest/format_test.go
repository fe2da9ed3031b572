package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPluginCanonicalOrder(t *testing.T) {
	input := []byte(`{"version":"1.0.0","author":{"name":"Dev"},"name":"code-review","description":"d"}`)

	out, err := FormatPlugin(input)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasSuffix(text, "\n"), "must end with newline")
	assert.True(t, strings.Index(text, `"name"`) < strings.Index(text, `"description"`))
	assert.True(t, strings.Index(text, `"description"`) < strings.Index(text, `"version"`))
	assert.True(t, strings.Index(text, `"version"`) < strings.Index(text, `"author"`))
}

func TestFormatPluginPreservesUnknownKeys(t *testing.T) {
	input := []byte(`{"zebra":1,"name":"x","alpha":2,"description":"d","version":"1.0.0","author":"a"}`)

	out, err := FormatPlugin(input)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `"zebra"`)
	assert.Contains(t, text, `"alpha"`)
	// Unknown keys come after known keys, in document order.
	assert.True(t, strings.Index(text, `"author"`) < strings.Index(text, `"zebra"`))
	assert.True(t, strings.Index(text, `"zebra"`) < strings.Index(text, `"alpha"`))
}

func TestFormatPluginIdempotent(t *testing.T) {
	input := []byte(`{"name":"x","description":"d","version":"1.0.0","author":{"name":"Dev","email":"d@e.com"},"keywords":["a","b"]}`)

	once, err := FormatPlugin(input)
	require.NoError(t, err)
	twice, err := FormatPlugin(once)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
}

func TestFormatPluginIndentation(t *testing.T) {
	input := []byte(`{"name":"x","author":{"name":"Dev"}}`)

	out, err := FormatPlugin(input)
	require.NoError(t, err)

	assert.Contains(t, string(out), "{\n  \"name\": \"x\",\n")
	assert.Contains(t, string(out), "  \"author\": {\n    \"name\": \"Dev\"\n  }\n")
}

func TestFormatMarketplace(t *testing.T) {
	input := []byte(`{"plugins":[{"name":"a","source":"./a"}],"owner":{"name":"o"},"name":"m"}`)

	out, err := FormatMarketplace(input)
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.Index(text, `"name"`) < strings.Index(text, `"owner"`))
	assert.True(t, strings.Index(text, `"owner"`) < strings.Index(text, `"plugins"`))
}

func TestFormatRejectsNonObject(t *testing.T) {
	_, err := FormatPlugin([]byte(`[1, 2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}
