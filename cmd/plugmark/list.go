package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/marketplace"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

// pluginListing is one row of list output.
type pluginListing struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Category    string `json:"category,omitempty"`
	Source      string `json:"source"`
	Path        string `json:"path,omitempty"`
	Commands    int    `json:"commands"`
	Agents      int    `json:"agents"`
	Skills      int    `json:"skills"`
	Description string `json:"description,omitempty"`
}

var listCmd = &cobra.Command{
	Use:   "list [root]",
	Short: "List plugins in a marketplace",
	Long: `List the plugins a marketplace declares, with version, category,
and content counts for locally sourced plugins.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		filterPattern, _ := cmd.Flags().GetString("filter")
		formatFlag, _ := cmd.Flags().GetString("format")
		showPath, _ := cmd.Flags().GetBool("show-path")

		var filter glob.Glob
		if filterPattern != "" {
			var err error
			filter, err = glob.Compile(filterPattern)
			if err != nil {
				return errors.Wrapf(err, "invalid filter pattern %q", filterPattern)
			}
		}

		m, err := marketplace.Load(ctx, root)
		if err != nil {
			return err
		}
		if m.ManifestErr != nil {
			return m.ManifestErr
		}

		var listings []pluginListing
		for _, entry := range m.Manifest.Plugins {
			if filter != nil && !filter.Match(entry.Name) {
				continue
			}
			listings = append(listings, buildListing(cmd, m, entry))
		}

		if formatFlag == "json" {
			if listings == nil {
				listings = []pluginListing{}
			}
			data, err := json.MarshalIndent(listings, "", "  ")
			if err != nil {
				return errors.Wrap(err, "error generating JSON output")
			}
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		if showPath {
			fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tCMDS\tAGENTS\tSKILLS\tPATH")
		} else {
			fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tCMDS\tAGENTS\tSKILLS\tDESCRIPTION")
		}
		for _, l := range listings {
			last := l.Description
			if showPath {
				last = l.Path
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				l.Name, orDash(l.Version), orDash(l.Category), l.Commands, l.Agents, l.Skills, last)
		}
		return w.Flush()
	},
}

func buildListing(cmd *cobra.Command, m *marketplace.Marketplace, entry manifest.MarketplaceEntry) pluginListing {
	listing := pluginListing{
		Name:        entry.Name,
		Version:     entry.Version,
		Category:    entry.Category,
		Source:      string(entry.Source.Kind),
		Description: entry.Description,
	}

	if !entry.Source.IsLocal() {
		return listing
	}

	dir, err := m.ResolveLocal(entry.Source)
	if err != nil {
		return listing
	}
	listing.Path = entry.Source.Path

	p, err := plugin.Load(cmd.Context(), dir)
	if err != nil {
		return listing
	}

	listing.Commands = len(p.Commands)
	listing.Agents = len(p.Agents)
	listing.Skills = len(p.Skills)
	if p.Manifest != nil {
		if listing.Version == "" {
			listing.Version = p.Manifest.Version
		}
		if listing.Description == "" {
			listing.Description = p.Manifest.Description
		}
		if listing.Category == "" {
			listing.Category = p.Manifest.Category
		}
	}
	return listing
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	listCmd.Flags().String("filter", "", "Only show plugins whose name matches the glob pattern")
	listCmd.Flags().String("format", "text", "Output format (text, json)")
	listCmd.Flags().Bool("show-path", false, "Show the source path instead of the description")

	rootCmd.AddCommand(withTracing(listCmd))
}
