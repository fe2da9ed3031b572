package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
	"github.com/jingkaihe/plugmark/pkg/presenter"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [path...]",
	Short: "Canonicalize manifest files",
	Long: `Rewrite plugin.json and marketplace.json files in canonical form:
stable key order, two-space indentation, and a trailing newline. Unknown
keys are preserved after the known ones.

Paths may be manifest files or directories containing them. With --check,
no files are written; a unified diff is printed and the command exits
non-zero when anything would change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}

		files, err := discoverManifests(paths)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return errors.New("no manifest files found")
		}

		changed := false
		for _, file := range files {
			didChange, err := formatFile(file, check)
			if err != nil {
				return err
			}
			changed = changed || didChange
		}

		if check && changed {
			os.Exit(1)
		}
		if !check && !changed {
			presenter.Info("All manifests already formatted.")
		}
		return nil
	},
}

// discoverManifests expands directory arguments into the manifest files
// they contain.
func discoverManifests(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot stat %s", p)
		}

		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		for _, name := range []string{plugin.ManifestFile, "marketplace.json"} {
			candidate := filepath.Join(p, plugin.ManifestDir, name)
			if _, err := os.Stat(candidate); err == nil {
				files = append(files, candidate)
			}
		}
	}
	return files, nil
}

func formatFile(path string, check bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", path)
	}

	var formatted []byte
	switch filepath.Base(path) {
	case "marketplace.json":
		formatted, err = manifest.FormatMarketplace(data)
	default:
		formatted, err = manifest.FormatPlugin(data)
	}
	if err != nil {
		return false, errors.Wrapf(err, "failed to format %s", path)
	}

	if bytes.Equal(data, formatted) {
		return false, nil
	}

	if check {
		fmt.Print(udiff.Unified(path, path+" (formatted)", string(data), string(formatted)))
		return true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrapf(err, "cannot stat %s", path)
	}
	if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	presenter.Success("Formatted " + path)
	return true, nil
}

func init() {
	fmtCmd.Flags().Bool("check", false, "Print diffs instead of rewriting files")

	rootCmd.AddCommand(withTracing(fmtCmd))
}
