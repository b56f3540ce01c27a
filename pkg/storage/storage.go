package storage

import (
	"context"

	"github.com/craftml/mlbuilder/wizard"
)

// Storage persists wizards between requests. The service mutates a wizard
// only through Update on a stage's success path, so a failed remote call
// never leaves a partially written record.
type Storage interface {
	Create(ctx context.Context, w wizard.Wizard) error
	Get(ctx context.Context, id string) (wizard.Wizard, error)
	Update(ctx context.Context, w wizard.Wizard) error
	List(ctx context.Context, offset, limit uint64) ([]wizard.Wizard, uint64, error)
	Delete(ctx context.Context, id string) error
}
