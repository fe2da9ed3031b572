package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/index"
)

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List installed plugins",
	Long:  `List install receipts from the local index.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		formatFlag, _ := cmd.Flags().GetString("format")
		installDir, _ := cmd.Flags().GetString("dir")

		_, store, sqlDB, err := openInstaller(ctx, installDir)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		receipts, err := store.List(ctx)
		if err != nil {
			return err
		}

		if formatFlag == "json" {
			if receipts == nil {
				receipts = []index.Receipt{}
			}
			data, err := json.MarshalIndent(receipts, "", "  ")
			if err != nil {
				return errors.Wrap(err, "error generating JSON output")
			}
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tMARKETPLACE\tINSTALLED")
		for _, r := range receipts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				r.Name, orDash(r.Version), r.Marketplace, r.InstalledAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	installedCmd.Flags().String("format", "text", "Output format (text, json)")
	installedCmd.Flags().String("dir", "", "Install root (defaults to ~/.claude/plugins)")

	rootCmd.AddCommand(withTracing(installedCmd))
}
