package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/wizard"
)

type inMemoryStorage struct {
	sync.Mutex

	wizards map[string]wizard.Wizard
}

func NewInMemoryStorage() Storage {
	return &inMemoryStorage{
		wizards: make(map[string]wizard.Wizard),
	}
}

func (s *inMemoryStorage) Create(_ context.Context, w wizard.Wizard) error {
	if w.ID == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.wizards[w.ID]; ok {
		return errors.ErrEntityExists
	}

	s.wizards[w.ID] = w

	return nil
}

func (s *inMemoryStorage) Get(_ context.Context, id string) (wizard.Wizard, error) {
	if id == "" {
		return wizard.Wizard{}, errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if w, ok := s.wizards[id]; ok {
		return w, nil
	}

	return wizard.Wizard{}, errors.ErrNotFound
}

func (s *inMemoryStorage) Update(_ context.Context, w wizard.Wizard) error {
	if w.ID == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if _, ok := s.wizards[w.ID]; !ok {
		return errors.ErrNotFound
	}

	s.wizards[w.ID] = w

	return nil
}

func (s *inMemoryStorage) List(_ context.Context, offset, limit uint64) ([]wizard.Wizard, uint64, error) {
	s.Lock()
	defer s.Unlock()

	all := make([]wizard.Wizard, 0, len(s.wizards))
	for _, w := range s.wizards {
		all = append(all, w)
	}
	// Map iteration is unordered; list oldest first.
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := uint64(len(all))
	if offset >= total {
		return nil, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}

func (s *inMemoryStorage) Delete(_ context.Context, id string) error {
	if id == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	delete(s.wizards, id)

	return nil
}
