package index

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"

	"github.com/jingkaihe/plugmark/pkg/lint"
	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/plugin"
)

// DefaultInstallRoot returns where installed plugin trees live.
func DefaultInstallRoot() (string, error) {
	if basePath := os.Getenv("PLUGMARK_BASE_PATH"); basePath != "" {
		return filepath.Join(basePath, "plugins"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".claude", "plugins"), nil
}

// Installer copies validated plugins into the install root and records
// receipts. A file lock serializes concurrent installs.
type Installer struct {
	root  string
	store *Store
	mu    *lockedfile.Mutex
}

// NewInstaller creates an installer rooted at root.
func NewInstaller(root string, store *Store) (*Installer, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create install root")
	}
	return &Installer{
		root:  root,
		store: store,
		mu:    lockedfile.MutexAt(filepath.Join(root, ".lock")),
	}, nil
}

// InstallDir returns the directory an installed plugin occupies.
func (i *Installer) InstallDir(name string) string {
	return filepath.Join(i.root, name)
}

// Install validates the plugin at srcDir and copies it into the install
// root. Plugins with validation errors are refused, and an existing
// install is only replaced when force is set.
func (i *Installer) Install(ctx context.Context, marketplace string, entry manifest.MarketplaceEntry, srcDir string, force bool) (Receipt, error) {
	unlock, err := i.mu.Lock()
	if err != nil {
		return Receipt{}, errors.Wrap(err, "failed to acquire install lock")
	}
	defer unlock()

	p, err := plugin.Load(ctx, srcDir)
	if err != nil {
		return Receipt{}, err
	}

	report := lint.CheckPlugin(ctx, p)
	if report.Errors() > 0 {
		return Receipt{}, errors.Errorf("refusing to install %s: %d validation error(s)", entry.Name, report.Errors())
	}

	dest := i.InstallDir(entry.Name)
	if _, err := os.Stat(dest); err == nil {
		if !force {
			return Receipt{}, errors.Errorf("%s is already installed at %s (use --force to overwrite)", entry.Name, dest)
		}
		if err := os.RemoveAll(dest); err != nil {
			return Receipt{}, errors.Wrap(err, "failed to clear previous install")
		}
	}
	if err := copyTree(srcDir, dest); err != nil {
		return Receipt{}, errors.Wrapf(err, "failed to copy plugin %s", entry.Name)
	}

	version := entry.Version
	if version == "" && p.Manifest != nil {
		version = p.Manifest.Version
	}

	receipt := Receipt{
		ID:          uuid.New().String(),
		Name:        entry.Name,
		Marketplace: marketplace,
		Version:     version,
		Source:      srcDir,
		InstalledAt: time.Now().UTC(),
	}
	if err := i.store.Record(ctx, receipt); err != nil {
		return Receipt{}, err
	}

	logger.G(ctx).WithFields(map[string]any{
		"plugin":      entry.Name,
		"marketplace": marketplace,
		"version":     version,
	}).Info("plugin installed")

	return receipt, nil
}

// Uninstall removes an installed plugin tree and its receipt.
func (i *Installer) Uninstall(ctx context.Context, name, marketplace string) error {
	unlock, err := i.mu.Lock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire install lock")
	}
	defer unlock()

	if err := i.store.Remove(ctx, name, marketplace); err != nil {
		return err
	}

	if err := os.RemoveAll(i.InstallDir(name)); err != nil {
		return errors.Wrapf(err, "failed to remove installed files for %s", name)
	}

	logger.G(ctx).WithFields(map[string]any{
		"plugin":      name,
		"marketplace": marketplace,
	}).Info("plugin uninstalled")

	return nil
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dest string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
