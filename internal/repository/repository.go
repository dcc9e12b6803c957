// Package repository defines the Record Store Adapter contract shared by the
// local file, Google Sheets, MongoDB and in-memory backends, plus the tabular
// codec they all use to normalize raw rows.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mamadbah2/labstock/internal/domain/models"
)

var (
	// ErrStoreLocked indicates the backing file is held open by another program.
	ErrStoreLocked = errors.New("store is locked")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("store is unavailable")
)

// Store reads and writes whole inventory tables.
type Store interface {
	// Load returns the table for the schema, creating and persisting an empty
	// one when it does not exist yet.
	Load(ctx context.Context, schema models.Schema) (*models.Table, error)
	// Save replaces the stored table. It either fully succeeds or leaves the
	// previous contents in place and returns a *SaveError.
	Save(ctx context.Context, table *models.Table) error
}

// SaveError reports a failed write. The previous contents are still in place,
// so retrying is safe.
type SaveError struct {
	Kind models.Kind
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Kind, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// NewSaveError wraps err with the kind of the table being saved.
func NewSaveError(kind models.Kind, err error) *SaveError {
	return &SaveError{Kind: kind, Err: err}
}
