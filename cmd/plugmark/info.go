package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/marketplace"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

var infoCmd = &cobra.Command{
	Use:   "info <name> [root]",
	Short: "Show details for a marketplace plugin",
	Long: `Show details for a plugin listed in a marketplace.

The plugin README is rendered to the terminal when it exists; otherwise a
summary is built from the manifest and content directories.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		name := args[0]
		root := "."
		if len(args) == 2 {
			root = args[1]
		}
		raw, _ := cmd.Flags().GetBool("raw")

		m, err := marketplace.Load(ctx, root)
		if err != nil {
			return err
		}
		if m.ManifestErr != nil {
			return m.ManifestErr
		}

		entry, ok := m.Entry(name)
		if !ok {
			return errors.Errorf("plugin %q is not listed in %s", name, root)
		}

		markdown := fmt.Sprintf("# %s\n\nSource: %s\n", entry.Name, entry.Source.Kind)
		if entry.Source.IsLocal() {
			dir, err := m.ResolveLocal(entry.Source)
			if err != nil {
				return err
			}
			markdown, err = pluginMarkdown(cmd, dir, entry.Name)
			if err != nil {
				return err
			}
		}

		if raw {
			fmt.Println(markdown)
			return nil
		}

		rendered, err := glamour.Render(markdown, "auto")
		if err != nil {
			// Unrenderable markdown still gets shown
			fmt.Println(markdown)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}

// pluginMarkdown prefers the plugin README and falls back to a summary
// built from the manifest.
func pluginMarkdown(cmd *cobra.Command, dir, name string) (string, error) {
	if readme, err := os.ReadFile(filepath.Join(dir, "README.md")); err == nil {
		return string(readme), nil
	}

	p, err := plugin.Load(cmd.Context(), dir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name())
	if p.Manifest != nil {
		if p.Manifest.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", p.Manifest.Description)
		}
		if p.Manifest.Version != "" {
			fmt.Fprintf(&b, "- **Version:** %s\n", p.Manifest.Version)
		}
		if p.Manifest.Author != nil && p.Manifest.Author.Name != "" {
			fmt.Fprintf(&b, "- **Author:** %s\n", p.Manifest.Author.Name)
		}
		if p.Manifest.License != "" {
			fmt.Fprintf(&b, "- **License:** %s\n", p.Manifest.License)
		}
		if p.Manifest.Homepage != "" {
			fmt.Fprintf(&b, "- **Homepage:** %s\n", p.Manifest.Homepage)
		}
	}

	if len(p.Commands) > 0 {
		fmt.Fprintf(&b, "\n## Commands\n\n")
		for _, c := range p.Commands {
			desc := ""
			if c.HasMeta {
				desc = c.Meta.Description
			}
			fmt.Fprintf(&b, "- `/%s` %s\n", strings.TrimSuffix(filepath.Base(c.Path), ".md"), desc)
		}
	}
	if len(p.Agents) > 0 {
		fmt.Fprintf(&b, "\n## Agents\n\n")
		for _, a := range p.Agents {
			desc := ""
			if a.HasMeta {
				desc = a.Meta.Description
			}
			fmt.Fprintf(&b, "- `%s` %s\n", a.Name, desc)
		}
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "\n## Skills\n\n")
		for _, s := range p.Skills {
			desc := ""
			if s.HasMeta {
				desc = s.Meta.Description
			}
			fmt.Fprintf(&b, "- `%s` %s\n", s.DirName, desc)
		}
	}

	return b.String(), nil
}

func init() {
	infoCmd.Flags().Bool("raw", false, "Print markdown without terminal rendering")

	rootCmd.AddCommand(withTracing(infoCmd))
}
