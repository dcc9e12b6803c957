package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
)

// Store keeps tables in process memory. It backs tests and the "memory"
// backend used for demos; contents are lost on restart.
type Store struct {
	mu      sync.Mutex
	tables  map[models.Kind]*models.Table
	loads   int
	saveErr error
}

// NewStore builds an empty in-memory store.
func NewStore() *Store {
	return &Store{tables: make(map[models.Kind]*models.Table)}
}

// Load returns a copy of the stored table, creating an empty one on first use.
func (s *Store) Load(_ context.Context, schema models.Schema) (*models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loads++
	table, ok := s.tables[schema.Kind]
	if !ok {
		table = models.NewTable(schema)
		s.tables[schema.Kind] = table
	}
	return table.Clone(), nil
}

// Save replaces the stored table with a copy of the given one.
func (s *Store) Save(_ context.Context, table *models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return repository.NewSaveError(table.Schema.Kind, s.saveErr)
	}
	s.tables[table.Schema.Kind] = table.Clone()
	return nil
}

// Put seeds a table directly.
func (s *Store) Put(table *models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table.Schema.Kind] = table.Clone()
}

// FailSaves makes every following Save fail with err; nil restores saving.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Loads reports how many times Load was called.
func (s *Store) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
