package marketplace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/lint"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

// VerifyOptions configures marketplace verification.
type VerifyOptions struct {
	// Ignores are extra doublestar globs skipped during the orphan scan.
	Ignores []string
}

// Verify runs the full consistency check for a loaded marketplace and
// returns one report with issue paths relative to the marketplace root.
func Verify(ctx context.Context, m *Marketplace, opts VerifyOptions) *lint.Report {
	report := lint.NewReport(m.Root)
	manifestPath := filepath.ToSlash(ManifestPath)

	switch {
	case errors.Is(m.ManifestErr, ErrManifestMissing):
		report.Add(lint.SeverityError, lint.RuleManifestMissing, manifestPath, "marketplace manifest not found")
		return report
	case m.ManifestErr != nil:
		report.Add(lint.SeverityError, lint.RuleManifestParse, manifestPath, m.ManifestErr.Error())
		return report
	}

	for _, problem := range manifest.ValidateMarketplace(m.Manifest, m.Raw) {
		severity := lint.SeverityError
		if problem.Warning {
			severity = lint.SeverityWarning
		}
		report.Add(severity, lint.RuleManifestField, manifestPath, problem.String())
	}

	listed := make(map[string]bool)
	for _, entry := range m.Manifest.Plugins {
		if !entry.Source.IsLocal() {
			continue
		}

		dir, err := m.ResolveLocal(entry.Source)
		if err != nil {
			continue
		}
		rel := entry.Source.Path
		listed[normalizeRel(rel)] = true

		if _, err := os.Stat(dir); err != nil {
			report.Add(lint.SeverityError, lint.RuleEntryMissing, manifestPath,
				fmt.Sprintf("plugin %q source %s does not exist", entry.Name, rel))
			continue
		}

		p, err := plugin.Load(ctx, dir)
		if err != nil {
			report.Add(lint.SeverityError, lint.RuleEntryMissing, manifestPath,
				fmt.Sprintf("plugin %q source %s is not readable: %v", entry.Name, rel, err))
			continue
		}

		report.Merge(lint.CheckPlugin(ctx, p), normalizeRel(rel))
		crossCheckEntry(entry, p, manifestPath, report)
	}

	scanOrphans(m, listed, opts.Ignores, report)

	report.Sort()
	return report
}

// crossCheckEntry flags drift between a marketplace listing and the plugin
// manifest it points at.
func crossCheckEntry(entry manifest.MarketplaceEntry, p *plugin.Plugin, manifestPath string, report *lint.Report) {
	if p.Manifest == nil {
		return
	}

	if p.Manifest.Name != "" && entry.Name != "" && entry.Name != p.Manifest.Name {
		report.Add(lint.SeverityError, lint.RuleEntryNameDrift, manifestPath,
			fmt.Sprintf("entry name %q does not match plugin manifest name %q", entry.Name, p.Manifest.Name))
	}

	if entry.Version != "" && p.Manifest.Version != "" && entry.Version != p.Manifest.Version {
		report.Add(lint.SeverityError, lint.RuleEntryContradicts, manifestPath,
			fmt.Sprintf("entry version %q contradicts plugin manifest version %q for %q",
				entry.Version, p.Manifest.Version, entry.Name))
	}

	if entry.Category != "" && p.Manifest.Category != "" && entry.Category != p.Manifest.Category {
		report.Add(lint.SeverityWarning, lint.RuleEntryContradicts, manifestPath,
			fmt.Sprintf("entry category %q differs from plugin manifest category %q for %q",
				entry.Category, p.Manifest.Category, entry.Name))
	}
}

// scanOrphans reports plugin directories present in the tree but absent
// from the manifest.
func scanOrphans(m *Marketplace, listed map[string]bool, ignores []string, report *lint.Report) {
	dirs, err := m.ScanPluginDirs(ignores)
	if err != nil {
		report.Add(lint.SeverityWarning, lint.RuleOrphanPlugin, ".", err.Error())
		return
	}

	for _, dir := range dirs {
		if !listed[dir] {
			report.Add(lint.SeverityWarning, lint.RuleOrphanPlugin, dir,
				"plugin directory is not listed in marketplace.json")
		}
	}
}

func normalizeRel(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
