package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

// Connect opens the database at path and applies pending migrations.
// Wizards are stored as JSON documents: the wizard is a single aggregate
// that is always read and written whole, so per-field columns would only
// add churn as stages evolve.
func Connect(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection failed: %w", err)
	}

	migrations := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "0001_wizards",
				Up: []string{`
					CREATE TABLE IF NOT EXISTS wizards (
						id         TEXT PRIMARY KEY,
						name       TEXT NOT NULL,
						stage      INTEGER NOT NULL DEFAULT 0,
						doc        TEXT NOT NULL,
						created_at TIMESTAMP NOT NULL,
						updated_at TIMESTAMP NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_wizards_created_at ON wizards (created_at)`,
				},
				Down: []string{`DROP TABLE IF EXISTS wizards`},
			},
		},
	}

	if _, err := migrate.Exec(db.DB, "sqlite3", migrations, migrate.Up); err != nil {
		db.Close()

		return nil, fmt.Errorf("sqlite migration failed: %w", err)
	}

	return db, nil
}
