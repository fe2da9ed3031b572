// Package marketplace loads marketplace roots and verifies their
// consistency: every listed plugin must resolve and validate, listing
// metadata must not contradict plugin manifests, and unlisted plugin
// directories are reported as orphans.
package marketplace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

// ManifestPath is the marketplace manifest location relative to the root.
var ManifestPath = filepath.Join(plugin.ManifestDir, "marketplace.json")

// ErrManifestMissing is recorded when the marketplace manifest is absent.
var ErrManifestMissing = errors.New("marketplace manifest not found")

// DefaultIgnores are glob patterns skipped while scanning for plugin
// directories.
var DefaultIgnores = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
}

// Marketplace is a loaded marketplace root.
type Marketplace struct {
	Root        string
	Manifest    *manifest.MarketplaceManifest
	Raw         []byte
	ManifestErr error
}

// Load loads the marketplace rooted at root. It fails only when root is not
// a readable directory; manifest problems are recorded on the returned
// value so verification can report them.
func Load(ctx context.Context, root string) (*Marketplace, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read marketplace root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", root)
	}

	m := &Marketplace{Root: root}

	data, err := os.ReadFile(filepath.Join(root, ManifestPath))
	if err != nil {
		if os.IsNotExist(err) {
			m.ManifestErr = ErrManifestMissing
		} else {
			m.ManifestErr = errors.Wrap(err, "failed to read marketplace manifest")
		}
		return m, nil
	}

	m.Raw = data
	parsed, err := manifest.ParseMarketplace(data)
	if err != nil {
		m.ManifestErr = err
		return m, nil
	}
	m.Manifest = parsed

	logger.G(ctx).WithFields(map[string]any{
		"marketplace": parsed.Name,
		"plugins":     len(parsed.Plugins),
	}).Debug("loaded marketplace manifest")

	return m, nil
}

// Entry returns the marketplace entry with the given name. Duplicate names
// resolve to the first entry.
func (m *Marketplace) Entry(name string) (manifest.MarketplaceEntry, bool) {
	if m.Manifest == nil {
		return manifest.MarketplaceEntry{}, false
	}
	for _, entry := range m.Manifest.Plugins {
		if entry.Name == name {
			return entry, true
		}
	}
	return manifest.MarketplaceEntry{}, false
}

// ResolveLocal returns the absolute plugin directory for a local source.
func (m *Marketplace) ResolveLocal(src manifest.Source) (string, error) {
	if !src.IsLocal() {
		return "", errors.Errorf("source is not local (%s)", src.Kind)
	}
	return filepath.Join(m.Root, filepath.FromSlash(src.Path)), nil
}

// ScanPluginDirs walks the marketplace tree and returns every directory
// containing a plugin manifest, relative to the root. Paths matching any
// ignore glob are skipped.
func (m *Marketplace) ScanPluginDirs(ignores []string) ([]string, error) {
	patterns := append(append([]string(nil), DefaultIgnores...), ignores...)

	var dirs []string
	err := filepath.WalkDir(m.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(m.Root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, rel+"/"); ok {
				return filepath.SkipDir
			}
		}

		// Hidden directories other than .claude-plugin never hold plugins.
		if name := d.Name(); strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}

		if _, err := os.Stat(filepath.Join(path, plugin.ManifestDir, plugin.ManifestFile)); err == nil {
			dirs = append(dirs, rel)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan for plugin directories")
	}

	return dirs, nil
}
