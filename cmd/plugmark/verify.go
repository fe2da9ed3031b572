package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugmark/pkg/lint"
	"github.com/jingkaihe/plugmark/pkg/marketplace"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [root]",
	Short: "Verify marketplace consistency",
	Long: `Verify that a marketplace root is internally consistent.

The marketplace manifest must parse and validate, every locally sourced
plugin must exist and pass plugin validation, listing metadata must not
contradict the plugin manifests, and plugin directories missing from the
listing are reported as orphans.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		strict, _ := cmd.Flags().GetBool("strict")
		formatFlag, _ := cmd.Flags().GetString("format")
		ignores, _ := cmd.Flags().GetStringSlice("ignore")

		format, err := lint.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		// Config-file ignores apply in addition to flag ignores.
		ignores = append(viper.GetStringSlice("ignore"), ignores...)

		m, err := marketplace.Load(ctx, root)
		if err != nil {
			return err
		}

		report := marketplace.Verify(ctx, m, marketplace.VerifyOptions{Ignores: ignores})
		if err := report.Render(os.Stdout, format); err != nil {
			return err
		}

		if report.Failed(strict) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Bool("strict", false, "Treat warnings as errors")
	verifyCmd.Flags().String("format", "text", "Output format (text, json)")
	verifyCmd.Flags().StringSlice("ignore", nil, "Extra glob patterns to skip when scanning for plugins")

	rootCmd.AddCommand(withTracing(verifyCmd))
}
