// Package manifest defines the plugin and marketplace manifest formats and
// provides parsing, validation, canonical formatting, and JSON schema
// generation for them. A plugin manifest lives at
// .claude-plugin/plugin.json inside a plugin directory; a marketplace
// manifest lives at .claude-plugin/marketplace.json at the marketplace root.
package manifest

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// PluginManifest describes a single plugin (.claude-plugin/plugin.json).
type PluginManifest struct {
	Name        string   `json:"name" jsonschema:"required,description=Unique kebab-case plugin name"`
	Description string   `json:"description" jsonschema:"required,description=Short human readable summary"`
	Version     string   `json:"version" jsonschema:"required,description=Semantic version such as 1.2.0"`
	Author      *Author  `json:"author,omitempty" jsonschema:"required"`
	Homepage    string   `json:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	License     string   `json:"license,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Category    string   `json:"category,omitempty"`

	// Optional path overrides relative to the plugin root. When empty the
	// conventional directories (commands/, agents/, skills/, hooks/) apply.
	Commands []string `json:"commands,omitempty"`
	Agents   []string `json:"agents,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	Hooks    string   `json:"hooks,omitempty"`
}

// Author identifies a plugin author. Manifests in the wild use either a bare
// string ("Jane <jane@example.com>") or an object with name/email/url; both
// forms are accepted.
type Author struct {
	Name  string `json:"name" jsonschema:"required"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`

	// FromString records that the author was given as a bare string rather
	// than an object. Strict validation warns on the string form.
	FromString bool `json:"-"`
}

// UnmarshalJSON accepts both the string and object author forms.
func (a *Author) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Name = s
		a.FromString = true
		return nil
	}

	type authorObject Author
	var obj authorObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "author must be a string or an object")
	}
	*a = Author(obj)
	return nil
}

// MarshalJSON writes the object form unless the author was parsed from a
// bare string, in which case the string round-trips unchanged.
func (a Author) MarshalJSON() ([]byte, error) {
	if a.FromString {
		return json.Marshal(a.Name)
	}
	type authorObject struct {
		Name  string `json:"name"`
		Email string `json:"email,omitempty"`
		URL   string `json:"url,omitempty"`
	}
	return json.Marshal(authorObject{Name: a.Name, Email: a.Email, URL: a.URL})
}

// MarketplaceManifest describes a marketplace
// (.claude-plugin/marketplace.json).
type MarketplaceManifest struct {
	Name     string             `json:"name" jsonschema:"required,description=Unique kebab-case marketplace name"`
	Owner    *Owner             `json:"owner,omitempty" jsonschema:"required"`
	Metadata *Metadata          `json:"metadata,omitempty"`
	Plugins  []MarketplaceEntry `json:"plugins" jsonschema:"required"`
}

// Owner identifies the marketplace maintainer.
type Owner struct {
	Name  string `json:"name" jsonschema:"required"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Metadata holds optional marketplace presentation fields.
type Metadata struct {
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// MarketplaceEntry is one plugin listing inside a marketplace manifest.
// Fields that duplicate the plugin manifest (description, version, author,
// category, keywords) are advisory; verification flags contradictions.
type MarketplaceEntry struct {
	Name        string   `json:"name" jsonschema:"required"`
	Source      Source   `json:"source" jsonschema:"required"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Author      *Author  `json:"author,omitempty"`
	Category    string   `json:"category,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Strict      bool     `json:"strict,omitempty"`
}

// SourceKind enumerates the supported marketplace source types.
type SourceKind string

// Source kinds
const (
	SourceKindLocal  SourceKind = "local"
	SourceKindGitHub SourceKind = "github"
	SourceKindGit    SourceKind = "git"
	SourceKindURL    SourceKind = "url"
)

// Source locates a plugin. The JSON form is either a relative path string
// ("./plugins/my-plugin") or an object such as
// {"source": "github", "repo": "owner/repo", "ref": "v1.0.0"}.
type Source struct {
	Kind SourceKind
	Path string // relative path for local sources
	Repo string // owner/repo for github sources
	URL  string // git/url sources
	Ref  string // optional branch, tag, or commit
}

// IsLocal reports whether the source points inside the marketplace tree.
func (s Source) IsLocal() bool {
	return s.Kind == SourceKindLocal
}

type sourceObject struct {
	Source SourceKind `json:"source"`
	Path   string     `json:"path,omitempty"`
	Repo   string     `json:"repo,omitempty"`
	URL    string     `json:"url,omitempty"`
	Ref    string     `json:"ref,omitempty"`
}

// UnmarshalJSON accepts both the path-string and object source forms.
func (s *Source) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*s = Source{Kind: SourceKindLocal, Path: path}
		return nil
	}

	var obj sourceObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "source must be a relative path or an object")
	}

	switch obj.Source {
	case SourceKindLocal, "":
		*s = Source{Kind: SourceKindLocal, Path: obj.Path}
	case SourceKindGitHub:
		*s = Source{Kind: SourceKindGitHub, Repo: obj.Repo, Ref: obj.Ref}
	case SourceKindGit, SourceKindURL:
		*s = Source{Kind: obj.Source, URL: obj.URL, Ref: obj.Ref}
	default:
		return errors.Errorf("unknown source kind %q", obj.Source)
	}
	return nil
}

// MarshalJSON writes local sources as a bare path and everything else as an
// object.
func (s Source) MarshalJSON() ([]byte, error) {
	if s.Kind == SourceKindLocal {
		return json.Marshal(s.Path)
	}
	return json.Marshal(sourceObject{
		Source: s.Kind,
		Repo:   s.Repo,
		URL:    s.URL,
		Ref:    s.Ref,
	})
}
