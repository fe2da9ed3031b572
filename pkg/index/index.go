// Package index tracks installed plugins. Receipts live in the shared
// SQLite database and installed plugin trees live under the install root.
package index

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Receipt records a single plugin installation.
type Receipt struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Marketplace string    `db:"marketplace" json:"marketplace"`
	Version     string    `db:"version" json:"version,omitempty"`
	Source      string    `db:"source" json:"source"`
	InstalledAt time.Time `db:"installed_at" json:"installedAt"`
}

// ErrNotInstalled is returned when no receipt matches a lookup.
var ErrNotInstalled = errors.New("plugin is not installed")

// Store persists install receipts.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a receipt store on top of an open database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Record upserts a receipt keyed by (name, marketplace).
func (s *Store) Record(ctx context.Context, r Receipt) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO installs (id, name, marketplace, version, source, installed_at)
		VALUES (:id, :name, :marketplace, :version, :source, :installed_at)
		ON CONFLICT(name, marketplace) DO UPDATE SET
			version = excluded.version,
			source = excluded.source,
			installed_at = excluded.installed_at
	`, r)
	return errors.Wrapf(err, "failed to record install of %s", r.Name)
}

// Remove deletes the receipt for a plugin. Returns ErrNotInstalled when no
// receipt exists.
func (s *Store) Remove(ctx context.Context, name, marketplace string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM installs WHERE name = ? AND marketplace = ?", name, marketplace)
	if err != nil {
		return errors.Wrapf(err, "failed to remove install record for %s", name)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check removed rows")
	}
	if affected == 0 {
		return errors.Wrapf(ErrNotInstalled, "%s (marketplace %s)", name, marketplace)
	}
	return nil
}

// Get returns the receipt for a plugin within a marketplace.
func (s *Store) Get(ctx context.Context, name, marketplace string) (Receipt, error) {
	var r Receipt
	err := s.db.GetContext(ctx, &r,
		"SELECT * FROM installs WHERE name = ? AND marketplace = ?", name, marketplace)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Receipt{}, errors.Wrapf(ErrNotInstalled, "%s (marketplace %s)", name, marketplace)
		}
		return Receipt{}, errors.Wrapf(err, "failed to look up install record for %s", name)
	}
	return r, nil
}

// List returns all receipts ordered by marketplace then name.
func (s *Store) List(ctx context.Context) ([]Receipt, error) {
	var receipts []Receipt
	err := s.db.SelectContext(ctx, &receipts,
		"SELECT * FROM installs ORDER BY marketplace, name")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list installs")
	}
	return receipts, nil
}
