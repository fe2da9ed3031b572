// Package plugin loads plugin directories: the .claude-plugin/plugin.json
// manifest plus the commands/, agents/, skills/, and hooks/ content the
// manifest binds together. Loading is tolerant: per-file problems are
// recorded on the loaded items instead of aborting, so lint can report all
// of them in one pass.
package plugin

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
)

// Conventional paths inside a plugin directory.
const (
	ManifestDir  = ".claude-plugin"
	ManifestFile = "plugin.json"
	CommandsDir  = "commands"
	AgentsDir    = "agents"
	SkillsDir    = "skills"
	HooksDir     = "hooks"
	SkillFile    = "SKILL.md"
	HooksFile    = "hooks.json"
)

// ErrManifestMissing is returned via Plugin.ManifestErr when the plugin has
// no .claude-plugin/plugin.json.
var ErrManifestMissing = errors.New("plugin manifest not found")

// Command is a discovered commands/*.md slash command.
type Command struct {
	Name    string
	Path    string // relative to the plugin root
	Meta    CommandMeta
	HasMeta bool
	MetaErr error
}

// Agent is a discovered agents/*.md persona.
type Agent struct {
	Name    string
	Path    string
	Meta    AgentMeta
	HasMeta bool
	MetaErr error
}

// Skill is a discovered skills/<name>/SKILL.md skill.
type Skill struct {
	DirName string // skill directory name
	Path    string // relative path to SKILL.md
	Meta    SkillMeta
	HasMeta bool
	MetaErr error
}

// Plugin is a loaded plugin directory.
type Plugin struct {
	Dir         string
	Manifest    *manifest.PluginManifest
	ManifestRaw []byte
	ManifestErr error

	Commands []Command
	Agents   []Agent
	Skills   []Skill

	HasCommandsDir bool
	HasAgentsDir   bool
	HasSkillsDir   bool

	HooksPath string // relative path to hooks/hooks.json when present
	HooksErr  error
}

// Name returns the manifest name when available, falling back to the
// directory name.
func (p *Plugin) Name() string {
	if p.Manifest != nil && p.Manifest.Name != "" {
		return p.Manifest.Name
	}
	return filepath.Base(p.Dir)
}

// HasContent reports whether the plugin ships any commands, agents, or
// skills.
func (p *Plugin) HasContent() bool {
	return len(p.Commands) > 0 || len(p.Agents) > 0 || len(p.Skills) > 0
}

// Load loads the plugin rooted at dir. It fails only when dir itself is not
// a readable directory; manifest and content problems are recorded on the
// returned Plugin.
func Load(ctx context.Context, dir string) (*Plugin, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read plugin directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", dir)
	}

	p := &Plugin{Dir: dir}

	p.loadManifest(ctx)
	p.loadCommands(ctx)
	p.loadAgents(ctx)
	p.loadSkills(ctx)
	p.loadHooks(ctx)

	return p, nil
}

func (p *Plugin) loadManifest(ctx context.Context) {
	path := filepath.Join(p.Dir, ManifestDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.ManifestErr = ErrManifestMissing
		} else {
			p.ManifestErr = errors.Wrap(err, "failed to read plugin manifest")
		}
		return
	}

	p.ManifestRaw = data
	m, err := manifest.ParsePlugin(data)
	if err != nil {
		p.ManifestErr = err
		return
	}
	p.Manifest = m

	logger.G(ctx).WithField("plugin", m.Name).Debug("loaded plugin manifest")
}

func (p *Plugin) loadCommands(ctx context.Context) {
	dir := filepath.Join(p.Dir, CommandsDir)
	if _, err := os.Stat(dir); err != nil {
		return
	}
	p.HasCommandsDir = true

	for _, path := range markdownFiles(dir) {
		rel, _ := filepath.Rel(p.Dir, path)
		rel = filepath.ToSlash(rel)

		cmd := Command{
			Name: strings.TrimSuffix(filepath.Base(path), ".md"),
			Path: rel,
		}

		content, err := os.ReadFile(path)
		if err != nil {
			cmd.MetaErr = errors.Wrap(err, "failed to read command file")
			p.Commands = append(p.Commands, cmd)
			continue
		}

		fm, err := parseFrontmatter(content)
		cmd.HasMeta = fm.Present
		if err != nil {
			cmd.MetaErr = err
		} else if fm.Present {
			cmd.MetaErr = decodeMeta(fm.Fields, &cmd.Meta)
		}

		p.Commands = append(p.Commands, cmd)
	}

	logger.G(ctx).WithField("count", len(p.Commands)).Debug("discovered commands")
}

func (p *Plugin) loadAgents(ctx context.Context) {
	dir := filepath.Join(p.Dir, AgentsDir)
	if _, err := os.Stat(dir); err != nil {
		return
	}
	p.HasAgentsDir = true

	for _, path := range markdownFiles(dir) {
		rel, _ := filepath.Rel(p.Dir, path)
		rel = filepath.ToSlash(rel)

		agent := Agent{
			Name: strings.TrimSuffix(filepath.Base(path), ".md"),
			Path: rel,
		}

		content, err := os.ReadFile(path)
		if err != nil {
			agent.MetaErr = errors.Wrap(err, "failed to read agent file")
			p.Agents = append(p.Agents, agent)
			continue
		}

		fm, err := parseFrontmatter(content)
		agent.HasMeta = fm.Present
		if err != nil {
			agent.MetaErr = err
		} else if fm.Present {
			agent.MetaErr = decodeMeta(fm.Fields, &agent.Meta)
			if agent.MetaErr == nil && agent.Meta.Name != "" {
				agent.Name = agent.Meta.Name
			}
		}

		p.Agents = append(p.Agents, agent)
	}

	logger.G(ctx).WithField("count", len(p.Agents)).Debug("discovered agents")
}

func (p *Plugin) loadSkills(ctx context.Context) {
	dir := filepath.Join(p.Dir, SkillsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	p.HasSkillsDir = true

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		skill := Skill{
			DirName: entry.Name(),
			Path:    filepath.ToSlash(filepath.Join(SkillsDir, entry.Name(), SkillFile)),
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name(), SkillFile))
		if err != nil {
			skill.MetaErr = errors.Wrap(err, "missing SKILL.md")
			p.Skills = append(p.Skills, skill)
			continue
		}

		fm, err := parseFrontmatter(content)
		skill.HasMeta = fm.Present
		if err != nil {
			skill.MetaErr = err
		} else if fm.Present {
			skill.MetaErr = decodeMeta(fm.Fields, &skill.Meta)
		}

		p.Skills = append(p.Skills, skill)
	}

	logger.G(ctx).WithField("count", len(p.Skills)).Debug("discovered skills")
}

func (p *Plugin) loadHooks(_ context.Context) {
	path := filepath.Join(p.Dir, HooksDir, HooksFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	p.HooksPath = filepath.ToSlash(filepath.Join(HooksDir, HooksFile))

	var hooks map[string]json.RawMessage
	if err := json.Unmarshal(data, &hooks); err != nil {
		p.HooksErr = errors.Wrap(err, "failed to parse hooks.json")
	}
}

// markdownFiles walks dir and returns all .md files sorted by path.
func markdownFiles(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".md") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}
