package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/lint"
	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/plugin"
	"github.com/jingkaihe/plugmark/pkg/presenter"
)

// ValidateConfig holds configuration for the validate command
type ValidateConfig struct {
	Strict bool
	Format string
	Watch  bool
}

// NewValidateConfig creates a new ValidateConfig with default values
func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{
		Strict: false,
		Format: "text",
		Watch:  false,
	}
}

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Validate plugin directories",
	Long: `Validate one or more plugin directories.

Each directory must contain .claude-plugin/plugin.json with the required
fields and at least one of commands/, agents/, or skills/. Command and
agent markdown frontmatter is checked, and skills must declare name and
description in SKILL.md.

Exits non-zero when any error is found, or when any warning is found
under --strict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := getValidateConfigFromFlags(cmd)

		format, err := lint.ParseFormat(config.Format)
		if err != nil {
			return err
		}

		dirs := args
		if len(dirs) == 0 {
			dirs = []string{"."}
		}

		if config.Watch {
			return watchAndValidate(ctx, dirs, format, config.Strict)
		}

		failed, err := validateDirs(ctx, dirs, format, config.Strict)
		if err != nil {
			return err
		}
		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	defaults := NewValidateConfig()
	validateCmd.Flags().Bool("strict", defaults.Strict, "Treat warnings as errors")
	validateCmd.Flags().String("format", defaults.Format, "Output format (text, json)")
	validateCmd.Flags().Bool("watch", defaults.Watch, "Re-run validation when files change")

	rootCmd.AddCommand(withTracing(validateCmd))
}

// getValidateConfigFromFlags extracts validate configuration from command flags
func getValidateConfigFromFlags(cmd *cobra.Command) *ValidateConfig {
	config := NewValidateConfig()

	if strict, err := cmd.Flags().GetBool("strict"); err == nil {
		config.Strict = strict
	}
	if format, err := cmd.Flags().GetString("format"); err == nil {
		config.Format = format
	}
	if watch, err := cmd.Flags().GetBool("watch"); err == nil {
		config.Watch = watch
	}

	return config
}

// validateDirs validates each directory and reports whether any failed.
func validateDirs(ctx context.Context, dirs []string, format lint.Format, strict bool) (bool, error) {
	failed := false
	for _, dir := range dirs {
		p, err := plugin.Load(ctx, dir)
		if err != nil {
			return false, err
		}

		report := lint.CheckPlugin(ctx, p)
		if err := report.Render(os.Stdout, format); err != nil {
			return false, err
		}
		if report.Failed(strict) {
			failed = true
		}
	}
	return failed, nil
}

// watchAndValidate re-runs validation whenever files under the watched
// directories change. Events are debounced so editor save bursts trigger a
// single run.
func watchAndValidate(ctx context.Context, dirs []string, format lint.Format, strict bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watchRecursive(watcher, dir); err != nil {
			return err
		}
	}

	if _, err := validateDirs(ctx, dirs, format, strict); err != nil {
		return err
	}
	presenter.Info("Watching for changes. Press Ctrl+C to stop.")

	var debounce *time.Timer
	runs := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Ignore chmod-only noise
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchRecursive(watcher, event.Name)
				}
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(300*time.Millisecond, func() {
				select {
				case runs <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("watcher error")
		case <-runs:
			presenter.Separator()
			if _, err := validateDirs(ctx, dirs, format, strict); err != nil {
				return err
			}
		}
	}
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && name != "." && name != plugin.ManifestDir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
