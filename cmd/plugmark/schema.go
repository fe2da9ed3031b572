package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/manifest"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [plugin|marketplace]",
	Short: "Print the JSON Schema for a manifest",
	Long: `Print the JSON Schema describing plugin.json (default) or
marketplace.json, suitable for editor validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		which := "plugin"
		if len(args) == 1 {
			which = args[0]
		}

		var (
			data []byte
			err  error
		)
		switch which {
		case "plugin":
			data, err = manifest.PluginSchema()
		case "marketplace":
			data, err = manifest.MarketplaceSchema()
		default:
			return errors.Errorf("unknown schema %q: must be plugin or marketplace", which)
		}
		if err != nil {
			return err
		}

		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(withTracing(schemaCmd))
}
