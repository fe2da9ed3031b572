package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/marketplace"
	"github.com/jingkaihe/plugmark/pkg/presenter"
	"github.com/jingkaihe/plugmark/pkg/server"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host string
	Port int
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host: "localhost",
		Port: 8080,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve [root]",
	Short: "Serve a marketplace over HTTP",
	Long: `Start a local development server for a marketplace root.

The server exposes the canonical marketplace manifest at /marketplace.json
and plugin metadata under /api/plugins. Useful for testing clients against
a marketplace before publishing it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		config := getServeConfigFromFlags(cmd)

		m, err := marketplace.Load(ctx, root)
		if err != nil {
			return err
		}

		srv, err := server.NewServer(m, &server.Config{
			Host: config.Host,
			Port: config.Port,
		})
		if err != nil {
			return err
		}

		logger.G(ctx).WithFields(map[string]any{
			"host": config.Host,
			"port": config.Port,
			"root": root,
		}).Info("starting marketplace server")
		presenter.Info("Press Ctrl+C to stop the server")

		return srv.Start(ctx)
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host to bind the server to")
	serveCmd.Flags().Int("port", defaults.Port, "Port to bind the server to")

	rootCmd.AddCommand(withTracing(serveCmd))
}

// getServeConfigFromFlags extracts serve configuration from command flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	if host, err := cmd.Flags().GetString("host"); err == nil {
		config.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}

	return config
}
