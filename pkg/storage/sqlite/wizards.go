package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/wizard"
)

type WizardStore struct {
	db *sqlx.DB
}

// NewWizardStore returns durable wizard storage. Unlike the in-memory
// store, wizards survive a process restart, which keeps trainer sessions
// referenced by stored handles reusable.
func NewWizardStore(db *sqlx.DB) *WizardStore {
	return &WizardStore{db: db}
}

type wizardRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Stage     uint8     `db:"stage"`
	Doc       string    `db:"doc"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toRow(w wizard.Wizard) (wizardRow, error) {
	doc, err := json.Marshal(w)
	if err != nil {
		return wizardRow{}, fmt.Errorf("marshal wizard: %w", err)
	}

	return wizardRow{
		ID:        w.ID,
		Name:      w.Name,
		Stage:     uint8(w.Stage),
		Doc:       string(doc),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}, nil
}

func (r wizardRow) toWizard() (wizard.Wizard, error) {
	var w wizard.Wizard
	if err := json.Unmarshal([]byte(r.Doc), &w); err != nil {
		return wizard.Wizard{}, fmt.Errorf("unmarshal wizard %s: %w", r.ID, err)
	}

	return w, nil
}

func (s *WizardStore) Create(ctx context.Context, w wizard.Wizard) error {
	if w.ID == "" {
		return pkgerrors.ErrEmptyKey
	}

	row, err := toRow(w)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO wizards (id, name, stage, doc, created_at, updated_at)
		VALUES (:id, :name, :stage, :doc, :created_at, :updated_at)`, row)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return pkgerrors.ErrEntityExists
		}

		return fmt.Errorf("insert wizard: %w", err)
	}

	return nil
}

func (s *WizardStore) Get(ctx context.Context, id string) (wizard.Wizard, error) {
	if id == "" {
		return wizard.Wizard{}, pkgerrors.ErrEmptyKey
	}

	var row wizardRow
	err := s.db.GetContext(ctx, &row, `SELECT id, name, stage, doc, created_at, updated_at FROM wizards WHERE id = ?`, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return wizard.Wizard{}, pkgerrors.ErrNotFound
	case err != nil:
		return wizard.Wizard{}, fmt.Errorf("select wizard: %w", err)
	}

	return row.toWizard()
}

func (s *WizardStore) Update(ctx context.Context, w wizard.Wizard) error {
	if w.ID == "" {
		return pkgerrors.ErrEmptyKey
	}

	row, err := toRow(w)
	if err != nil {
		return err
	}

	res, err := s.db.NamedExecContext(ctx, `
		UPDATE wizards SET name = :name, stage = :stage, doc = :doc, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return fmt.Errorf("update wizard: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update wizard: %w", err)
	}
	if n == 0 {
		return pkgerrors.ErrNotFound
	}

	return nil
}

func (s *WizardStore) List(ctx context.Context, offset, limit uint64) ([]wizard.Wizard, uint64, error) {
	var total uint64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM wizards`); err != nil {
		return nil, 0, fmt.Errorf("count wizards: %w", err)
	}

	var rows []wizardRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, stage, doc, created_at, updated_at FROM wizards
		ORDER BY created_at ASC LIMIT ? OFFSET ?`, int64(limit), int64(offset))
	if err != nil {
		return nil, 0, fmt.Errorf("select wizards: %w", err)
	}

	wizards := make([]wizard.Wizard, 0, len(rows))
	for _, r := range rows {
		w, err := r.toWizard()
		if err != nil {
			return nil, 0, err
		}
		wizards = append(wizards, w)
	}

	return wizards, total, nil
}

func (s *WizardStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.ErrEmptyKey
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM wizards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete wizard: %w", err)
	}

	return nil
}
