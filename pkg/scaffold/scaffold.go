// Package scaffold generates starter plugin and marketplace trees from
// embedded templates.
package scaffold

import (
	"bytes"
	"context"
	"embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PluginOptions parameterize a new plugin skeleton.
type PluginOptions struct {
	Name        string
	Description string
	Version     string
	AuthorName  string
}

// Validate checks the options before any files are written.
func (o *PluginOptions) Validate() error {
	if !manifest.IsKebabCase(o.Name) {
		return errors.Errorf("plugin name %q must be kebab-case", o.Name)
	}
	if o.Version != "" && !manifest.IsSemver(o.Version) {
		return errors.Errorf("version %q is not a semantic version", o.Version)
	}
	return nil
}

// MarketplaceOptions parameterize a new marketplace skeleton.
type MarketplaceOptions struct {
	Name      string
	OwnerName string
}

// Validate checks the options before any files are written.
func (o *MarketplaceOptions) Validate() error {
	if !manifest.IsKebabCase(o.Name) {
		return errors.Errorf("marketplace name %q must be kebab-case", o.Name)
	}
	return nil
}

// Plugin writes a plugin skeleton under parentDir/<name>. It refuses to
// touch a directory that already exists.
func Plugin(ctx context.Context, parentDir string, opts PluginOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if opts.Description == "" {
		opts.Description = "A new plugin"
	}
	if opts.Version == "" {
		opts.Version = "0.1.0"
	}
	if opts.AuthorName == "" {
		opts.AuthorName = "Your Name"
	}

	dir := filepath.Join(parentDir, opts.Name)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Errorf("directory %s already exists", dir)
	}

	files := map[string]string{
		filepath.Join(plugin.ManifestDir, plugin.ManifestFile):       "plugin.json.tmpl",
		filepath.Join(plugin.CommandsDir, opts.Name+".md"):           "command.md.tmpl",
		filepath.Join(plugin.AgentsDir, opts.Name+".md"):             "agent.md.tmpl",
		filepath.Join(plugin.SkillsDir, opts.Name, plugin.SkillFile): "skill.md.tmpl",
	}
	for rel, tmplName := range files {
		if err := renderFile(filepath.Join(dir, rel), tmplName, opts); err != nil {
			return "", err
		}
	}

	logger.G(ctx).WithField("plugin", opts.Name).Info("plugin skeleton created")
	return dir, nil
}

// Marketplace writes a marketplace skeleton under parentDir/<name>.
func Marketplace(ctx context.Context, parentDir string, opts MarketplaceOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if opts.OwnerName == "" {
		opts.OwnerName = "Your Name"
	}

	dir := filepath.Join(parentDir, opts.Name)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.Errorf("directory %s already exists", dir)
	}

	target := filepath.Join(dir, plugin.ManifestDir, "marketplace.json")
	if err := renderFile(target, "marketplace.json.tmpl", opts); err != nil {
		return "", err
	}

	logger.G(ctx).WithField("marketplace", opts.Name).Info("marketplace skeleton created")
	return dir, nil
}

func renderFile(target, tmplName string, data any) error {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		return errors.Wrapf(err, "failed to parse template %s", tmplName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.Wrapf(err, "failed to render template %s", tmplName)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}
	return errors.Wrapf(os.WriteFile(target, buf.Bytes(), 0o644), "failed to write %s", target)
}
