package plugin

import (
	"bytes"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the parsed YAML frontmatter of a markdown file.
// Present is false when the file has no frontmatter block at all.
type Frontmatter struct {
	Present bool
	Fields  map[string]any
}

// parseFrontmatter extracts YAML frontmatter from markdown content. When the
// block is present but malformed it re-parses the raw block with yaml.v3,
// whose errors carry line numbers, so lint messages point at the bad line.
func parseFrontmatter(content []byte) (Frontmatter, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return Frontmatter{}, errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		if block, ok := rawFrontmatterBlock(content); ok {
			var probe map[string]any
			if yerr := yaml.Unmarshal(block, &probe); yerr != nil {
				return Frontmatter{Present: true}, errors.Wrap(yerr, "invalid frontmatter YAML")
			}
		}
		return Frontmatter{Present: true}, errors.Wrap(err, "invalid frontmatter YAML")
	}
	if metaData == nil {
		return Frontmatter{}, nil
	}

	return Frontmatter{Present: true, Fields: metaData}, nil
}

// rawFrontmatterBlock returns the bytes between the opening and closing ---
// fences, if the document starts with one.
func rawFrontmatterBlock(content []byte) ([]byte, bool) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return nil, false
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, false
	}
	return []byte(rest[:end]), true
}

// decodeMeta decodes a frontmatter field map into a typed metadata struct.
// Weak typing lets a scalar stand in for a single-element list, which is
// common for allowed-tools.
func decodeMeta(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build frontmatter decoder")
	}
	if err := decoder.Decode(fields); err != nil {
		return errors.Wrap(err, "frontmatter does not match the expected shape")
	}
	return nil
}

// CommandMeta is the recognized frontmatter of a commands/*.md file.
type CommandMeta struct {
	Description  string   `mapstructure:"description"`
	ArgumentHint string   `mapstructure:"argument-hint"`
	AllowedTools []string `mapstructure:"allowed-tools"`
	Model        string   `mapstructure:"model"`
}

// AgentMeta is the recognized frontmatter of an agents/*.md file.
type AgentMeta struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Tools       []string `mapstructure:"tools"`
	Model       string   `mapstructure:"model"`
	Color       string   `mapstructure:"color"`
}

// SkillMeta is the recognized frontmatter of a skills/<name>/SKILL.md file.
// Name and description are required for skills.
type SkillMeta struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}
