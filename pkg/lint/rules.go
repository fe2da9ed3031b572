package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

// Rule identifiers. Stable so CI configs can reference them.
const (
	RuleManifestMissing  = "manifest-missing"
	RuleManifestParse    = "manifest-parse"
	RuleManifestField    = "manifest-field"
	RuleNameMatchesDir   = "name-matches-dir"
	RuleContentMissing   = "content-missing"
	RuleEmptyDir         = "empty-dir"
	RuleFileNaming       = "file-naming"
	RuleFrontmatter      = "frontmatter"
	RuleCommandMeta      = "command-description"
	RuleSkillMeta        = "skill-metadata"
	RuleSkillNameMatch   = "skill-name-match"
	RuleHooksParse       = "hooks-parse"
	RuleEntryMissing     = "entry-missing"
	RuleEntryNameDrift   = "entry-name-drift"
	RuleEntryContradicts = "entry-contradicts"
	RuleOrphanPlugin     = "orphan-plugin"
)

var manifestRelPath = filepath.ToSlash(filepath.Join(plugin.ManifestDir, plugin.ManifestFile))

// CheckPlugin runs the full plugin rule set against a loaded plugin. Issue
// paths are relative to the plugin root.
func CheckPlugin(ctx context.Context, p *plugin.Plugin) *Report {
	report := NewReport(p.Dir)

	checkManifest(p, report)
	checkContent(p, report)
	checkCommands(p, report)
	checkAgents(p, report)
	checkSkills(p, report)
	checkHooks(p, report)

	report.Sort()
	logger.G(ctx).WithFields(map[string]any{
		"plugin":   p.Name(),
		"errors":   report.Errors(),
		"warnings": report.Warnings(),
	}).Debug("plugin checks complete")
	return report
}

func checkManifest(p *plugin.Plugin, report *Report) {
	switch {
	case errors.Is(p.ManifestErr, plugin.ErrManifestMissing):
		report.Add(SeverityError, RuleManifestMissing, manifestRelPath, "plugin manifest not found")
		return
	case p.ManifestErr != nil:
		report.Add(SeverityError, RuleManifestParse, manifestRelPath, p.ManifestErr.Error())
		return
	}

	for _, problem := range manifest.ValidatePlugin(p.Manifest, p.ManifestRaw) {
		severity := SeverityError
		if problem.Warning {
			severity = SeverityWarning
		}
		report.Add(severity, RuleManifestField, manifestRelPath, problem.String())
	}

	if dirName := filepath.Base(p.Dir); p.Manifest.Name != "" && p.Manifest.Name != dirName {
		report.Add(SeverityWarning, RuleNameMatchesDir, manifestRelPath,
			fmt.Sprintf("manifest name %q does not match directory name %q", p.Manifest.Name, dirName))
	}
}

func checkContent(p *plugin.Plugin, report *Report) {
	if !p.HasContent() && !p.HasCommandsDir && !p.HasAgentsDir && !p.HasSkillsDir {
		report.Add(SeverityError, RuleContentMissing, ".",
			"plugin has no commands/, agents/, or skills/ directory")
		return
	}

	if p.HasCommandsDir && len(p.Commands) == 0 {
		report.Add(SeverityWarning, RuleEmptyDir, plugin.CommandsDir, "commands/ contains no markdown files")
	}
	if p.HasAgentsDir && len(p.Agents) == 0 {
		report.Add(SeverityWarning, RuleEmptyDir, plugin.AgentsDir, "agents/ contains no markdown files")
	}
	if p.HasSkillsDir && len(p.Skills) == 0 {
		report.Add(SeverityWarning, RuleEmptyDir, plugin.SkillsDir, "skills/ contains no skill directories")
	}
	if !p.HasContent() {
		report.Add(SeverityError, RuleContentMissing, ".", "plugin ships no commands, agents, or skills")
	}
}

func checkCommands(p *plugin.Plugin, report *Report) {
	for _, cmd := range p.Commands {
		if cmd.MetaErr != nil {
			report.Add(SeverityError, RuleFrontmatter, cmd.Path, cmd.MetaErr.Error())
			continue
		}

		base := strings.TrimSuffix(filepath.Base(cmd.Path), ".md")
		if !manifest.IsKebabCase(base) {
			report.Add(SeverityWarning, RuleFileNaming, cmd.Path,
				fmt.Sprintf("command file name %q is not kebab-case", base))
		}

		if !cmd.HasMeta || cmd.Meta.Description == "" {
			report.Add(SeverityWarning, RuleCommandMeta, cmd.Path,
				"command has no description in frontmatter")
		}
	}
}

func checkAgents(p *plugin.Plugin, report *Report) {
	for _, agent := range p.Agents {
		if agent.MetaErr != nil {
			report.Add(SeverityError, RuleFrontmatter, agent.Path, agent.MetaErr.Error())
			continue
		}

		base := strings.TrimSuffix(filepath.Base(agent.Path), ".md")
		if !manifest.IsKebabCase(base) {
			report.Add(SeverityWarning, RuleFileNaming, agent.Path,
				fmt.Sprintf("agent file name %q is not kebab-case", base))
		}

		if !agent.HasMeta || agent.Meta.Description == "" {
			report.Add(SeverityWarning, RuleCommandMeta, agent.Path,
				"agent has no description in frontmatter")
		}
	}
}

func checkSkills(p *plugin.Plugin, report *Report) {
	for _, skill := range p.Skills {
		if skill.MetaErr != nil {
			report.Add(SeverityError, RuleFrontmatter, skill.Path, skill.MetaErr.Error())
			continue
		}

		if !skill.HasMeta {
			report.Add(SeverityError, RuleSkillMeta, skill.Path, "SKILL.md has no frontmatter")
			continue
		}

		if skill.Meta.Name == "" {
			report.Add(SeverityError, RuleSkillMeta, skill.Path, "skill name is required in frontmatter")
		}
		if skill.Meta.Description == "" {
			report.Add(SeverityError, RuleSkillMeta, skill.Path, "skill description is required in frontmatter")
		}

		if !manifest.IsKebabCase(skill.DirName) {
			report.Add(SeverityWarning, RuleFileNaming, skill.Path,
				fmt.Sprintf("skill directory name %q is not kebab-case", skill.DirName))
		}

		if skill.Meta.Name != "" && skill.Meta.Name != skill.DirName {
			report.Add(SeverityError, RuleSkillNameMatch, skill.Path,
				fmt.Sprintf("skill name %q does not match directory name %q", skill.Meta.Name, skill.DirName))
		}
	}
}

func checkHooks(p *plugin.Plugin, report *Report) {
	if p.HooksErr != nil {
		report.Add(SeverityError, RuleHooksParse, p.HooksPath, p.HooksErr.Error())
	}
}
