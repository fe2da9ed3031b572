package migrations

import (
	"database/sql"

	"github.com/jingkaihe/plugmark/pkg/db"
	"github.com/pkg/errors"
)

// Migration20250915120000CreateInstalls creates the installs table that
// records which plugins were installed from which marketplaces.
func Migration20250915120000CreateInstalls() db.Migration {
	return db.Migration{
		Version:     20250915120000,
		Description: "Create installs table",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS installs (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					marketplace TEXT NOT NULL,
					version TEXT,
					source TEXT NOT NULL,
					installed_at DATETIME NOT NULL,
					UNIQUE(name, marketplace)
				)
			`); err != nil {
				return errors.Wrap(err, "failed to create installs table")
			}

			if _, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_installs_name ON installs(name)
			`); err != nil {
				return errors.Wrap(err, "failed to create installs name index")
			}

			return nil
		},
		Down: func(tx *sql.Tx) error {
			if _, err := tx.Exec("DROP TABLE IF EXISTS installs"); err != nil {
				return errors.Wrap(err, "failed to drop installs table")
			}
			return nil
		},
	}
}
