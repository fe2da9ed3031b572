package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/plugmark/pkg/db"
	"github.com/jingkaihe/plugmark/pkg/db/migrations"
	"github.com/jingkaihe/plugmark/pkg/index"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/marketplace"
	"github.com/jingkaihe/plugmark/pkg/presenter"
)

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a plugin from a marketplace",
	Long: `Install a plugin into the local plugin directory.

The plugin is resolved from a marketplace root (--from, default ".").
It is validated first and refused when validation reports errors. An
install receipt is recorded in the local index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		from, _ := cmd.Flags().GetString("from")
		installDir, _ := cmd.Flags().GetString("dir")
		force, _ := cmd.Flags().GetBool("force")

		if !cmd.Flags().Changed("from") {
			if configured := viper.GetString("marketplace"); configured != "" {
				from = configured
			}
		}

		if isRemoteMarketplace(from) {
			return installFromRemote(ctx, name, from)
		}

		m, err := marketplace.Load(ctx, from)
		if err != nil {
			return err
		}
		if m.ManifestErr != nil {
			return m.ManifestErr
		}

		entry, ok := m.Entry(name)
		if !ok {
			return errors.Errorf("plugin %q is not listed in %s", name, from)
		}
		if !entry.Source.IsLocal() {
			return errors.Errorf("plugin %q has a %s source; only local sources can be installed", name, entry.Source.Kind)
		}

		srcDir, err := m.ResolveLocal(entry.Source)
		if err != nil {
			return err
		}

		installer, _, sqlDB, err := openInstaller(ctx, installDir)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		receipt, err := installer.Install(ctx, m.Manifest.Name, entry, srcDir, force)
		if err != nil {
			return err
		}

		presenter.Success(fmt.Sprintf("Installed %s %s to %s", receipt.Name, orDash(receipt.Version), installer.InstallDir(receipt.Name)))
		return nil
	},
}

func isRemoteMarketplace(from string) bool {
	return strings.HasPrefix(from, "http://") || strings.HasPrefix(from, "https://")
}

// installFromRemote resolves the entry from a fetched marketplace manifest.
// Plugin content is not downloadable over plain HTTP, so this only tells
// the user where the plugin actually lives.
func installFromRemote(ctx context.Context, name, url string) error {
	remote, _, err := marketplace.FetchManifest(ctx, url)
	if err != nil {
		return err
	}

	var entry *manifest.MarketplaceEntry
	for i := range remote.Plugins {
		if remote.Plugins[i].Name == name {
			entry = &remote.Plugins[i]
			break
		}
	}
	if entry == nil {
		return errors.Errorf("plugin %q is not listed in %s", name, url)
	}

	switch entry.Source.Kind {
	case manifest.SourceKindGitHub:
		return errors.Errorf("plugin %q lives at github.com/%s; clone it and install from the local marketplace", name, entry.Source.Repo)
	case manifest.SourceKindGit, manifest.SourceKindURL:
		return errors.Errorf("plugin %q lives at %s; clone it and install from the local marketplace", name, entry.Source.URL)
	default:
		return errors.Errorf("plugin %q has a local source in a remote marketplace; clone the marketplace and install from disk", name)
	}
}

// openInstaller opens the shared database, runs migrations, and builds an
// installer rooted at dir (or the configured/default install root).
func openInstaller(ctx context.Context, dir string) (*index.Installer, *index.Store, *sqlx.DB, error) {
	if dir == "" {
		dir = viper.GetString("plugins_dir")
	}
	if dir == "" {
		var err error
		dir, err = index.DefaultInstallRoot()
		if err != nil {
			return nil, nil, nil, err
		}
	}

	if err := db.RunMigrations(ctx, migrations.All()); err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to run database migrations")
	}

	dbPath, err := db.DefaultDBPath()
	if err != nil {
		return nil, nil, nil, err
	}
	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, nil, err
	}

	store := index.NewStore(sqlDB)
	installer, err := index.NewInstaller(dir, store)
	if err != nil {
		sqlDB.Close()
		return nil, nil, nil, err
	}
	return installer, store, sqlDB, nil
}

func init() {
	installCmd.Flags().String("from", ".", "Marketplace root directory or marketplace.json URL")
	installCmd.Flags().String("dir", "", "Install root (defaults to ~/.claude/plugins)")
	installCmd.Flags().Bool("force", false, "Overwrite an existing install")

	rootCmd.AddCommand(withTracing(installCmd))
}
