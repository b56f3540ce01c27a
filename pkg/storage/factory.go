package storage

import (
	"fmt"

	"github.com/craftml/mlbuilder/pkg/storage/sqlite"
)

type Config struct {
	Type string `env:"BUILDER_STORAGE_TYPE" envDefault:"memory"`

	SQLitePath string `env:"BUILDER_SQLITE_PATH" envDefault:"./mlbuilder.db"`
}

// NewStorage builds the wizard store selected by cfg.Type. Memory is the
// default; sqlite keeps wizards across restarts the way the original
// backend optionally did with Redis.
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "memory":
		return NewInMemoryStorage(), nil
	case "sqlite":
		db, err := sqlite.Connect(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}

		return sqlite.NewWizardStore(db), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
