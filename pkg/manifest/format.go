package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Canonical top-level key order for each manifest kind. Unknown keys keep
// their document order after the known ones so fmt never loses data.
var (
	pluginKeyOrder = []string{
		"name", "description", "version", "author", "homepage", "repository",
		"license", "keywords", "category", "commands", "agents", "skills",
		"hooks", "mcpServers",
	}
	marketplaceKeyOrder = []string{"name", "owner", "metadata", "plugins"}
)

// FormatPlugin canonicalizes plugin.json bytes: stable key order, two-space
// indent, trailing newline. The input must be valid JSON.
func FormatPlugin(data []byte) ([]byte, error) {
	return formatObject(data, pluginKeyOrder)
}

// FormatMarketplace canonicalizes marketplace.json bytes.
func FormatMarketplace(data []byte) ([]byte, error) {
	return formatObject(data, marketplaceKeyOrder)
}

type keyValue struct {
	key   string
	value json.RawMessage
}

func formatObject(data []byte, order []string) ([]byte, error) {
	pairs, err := topLevelPairs(data)
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(order))
	for i, k := range order {
		rank[k] = i
	}

	// Stable partition: known keys in canonical order first, unknown keys in
	// document order after them.
	var known, unknown []keyValue
	for _, kv := range pairs {
		if _, ok := rank[kv.key]; ok {
			known = append(known, kv)
		} else {
			unknown = append(unknown, kv)
		}
	}
	for i := 1; i < len(known); i++ {
		for j := i; j > 0 && rank[known[j].key] < rank[known[j-1].key]; j-- {
			known[j], known[j-1] = known[j-1], known[j]
		}
	}
	ordered := append(known, unknown...)

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, kv := range ordered {
		keyJSON, err := json.Marshal(kv.key)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode key %q", kv.key)
		}

		var valueBuf bytes.Buffer
		if err := json.Indent(&valueBuf, kv.value, "  ", "  "); err != nil {
			return nil, errors.Wrapf(err, "failed to indent value of %q", kv.key)
		}

		buf.WriteString("  ")
		buf.Write(keyJSON)
		buf.WriteString(": ")
		buf.Write(valueBuf.Bytes())
		if i < len(ordered)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

// topLevelPairs returns top-level keys with their raw values in document
// order.
func topLevelPairs(data []byte) ([]keyValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest JSON")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("manifest root is not a JSON object")
	}

	var pairs []keyValue
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse manifest JSON")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("unexpected token in manifest object")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "failed to parse value of %q", key)
		}

		// Compact first so the re-indent is deterministic regardless of the
		// input's whitespace.
		var compact bytes.Buffer
		if err := json.Compact(&compact, value); err != nil {
			return nil, errors.Wrapf(err, "failed to compact value of %q", key)
		}

		pairs = append(pairs, keyValue{key: key, value: append(json.RawMessage(nil), compact.Bytes()...)})
	}

	return pairs, nil
}
