package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/presenter"
	"github.com/jingkaihe/plugmark/pkg/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a new plugin or marketplace",
	Long: `Scaffold a new plugin directory with a manifest and example
command, agent, and skill. With --marketplace, scaffold a marketplace
root instead. Existing directories are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		asMarketplace, _ := cmd.Flags().GetBool("marketplace")
		description, _ := cmd.Flags().GetString("description")
		author, _ := cmd.Flags().GetString("author")
		parentDir, _ := cmd.Flags().GetString("dir")

		if asMarketplace {
			dir, err := scaffold.Marketplace(ctx, parentDir, scaffold.MarketplaceOptions{
				Name:      name,
				OwnerName: author,
			})
			if err != nil {
				return err
			}
			presenter.Success(fmt.Sprintf("Created marketplace %s at %s", name, dir))
			return nil
		}

		dir, err := scaffold.Plugin(ctx, parentDir, scaffold.PluginOptions{
			Name:        name,
			Description: description,
			AuthorName:  author,
		})
		if err != nil {
			return err
		}
		presenter.Success(fmt.Sprintf("Created plugin %s at %s", name, dir))
		presenter.Info("Run `plugmark validate " + dir + "` to check it.")
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("marketplace", false, "Scaffold a marketplace root instead of a plugin")
	initCmd.Flags().String("description", "", "Description for the new plugin")
	initCmd.Flags().String("author", "", "Author name for the manifest")
	initCmd.Flags().String("dir", ".", "Parent directory to create the skeleton in")

	rootCmd.AddCommand(withTracing(initCmd))
}
