package manifest

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

func generateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	var v T

	return reflector.Reflect(v)
}

// PluginSchema returns the JSON Schema for plugin.json as indented JSON.
func PluginSchema() ([]byte, error) {
	return marshalSchema(generateSchema[PluginManifest]())
}

// MarketplaceSchema returns the JSON Schema for marketplace.json as indented JSON.
func MarketplaceSchema() ([]byte, error) {
	return marshalSchema(generateSchema[MarketplaceManifest]())
}

func marshalSchema(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal schema")
	}
	return append(data, '\n'), nil
}

// JSONSchema describes the two accepted author forms: a bare string or an
// object with name/email/url.
func (Author) JSONSchema() *jsonschema.Schema {
	obj := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name"},
	}
	obj.Properties = jsonschema.NewProperties()
	obj.Properties.Set("name", &jsonschema.Schema{Type: "string"})
	obj.Properties.Set("email", &jsonschema.Schema{Type: "string"})
	obj.Properties.Set("url", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			obj,
		},
	}
}

// JSONSchema describes the two accepted source forms: a relative path string
// or an object selecting github/git/url.
func (Source) JSONSchema() *jsonschema.Schema {
	obj := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"source"},
	}
	obj.Properties = jsonschema.NewProperties()
	obj.Properties.Set("source", &jsonschema.Schema{
		Type: "string",
		Enum: []any{string(SourceKindLocal), string(SourceKindGitHub), string(SourceKindGit), string(SourceKindURL)},
	})
	obj.Properties.Set("path", &jsonschema.Schema{Type: "string"})
	obj.Properties.Set("repo", &jsonschema.Schema{Type: "string"})
	obj.Properties.Set("url", &jsonschema.Schema{Type: "string"})
	obj.Properties.Set("ref", &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			obj,
		},
	}
}
