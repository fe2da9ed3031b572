package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/presenter"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Remove an installed plugin",
	Long:  `Remove an installed plugin tree and its receipt from the local index.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		marketplaceName, _ := cmd.Flags().GetString("marketplace")
		installDir, _ := cmd.Flags().GetString("dir")

		installer, store, sqlDB, err := openInstaller(ctx, installDir)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		// Without --marketplace, resolve the receipt by name alone.
		if marketplaceName == "" {
			receipts, err := store.List(ctx)
			if err != nil {
				return err
			}
			for _, r := range receipts {
				if r.Name == name {
					marketplaceName = r.Marketplace
					break
				}
			}
		}

		if err := installer.Uninstall(ctx, name, marketplaceName); err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Uninstalled %s", name))
		return nil
	},
}

func init() {
	uninstallCmd.Flags().String("marketplace", "", "Marketplace the plugin was installed from")
	uninstallCmd.Flags().String("dir", "", "Install root (defaults to ~/.claude/plugins)")

	rootCmd.AddCommand(withTracing(uninstallCmd))
}
