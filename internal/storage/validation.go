// Package storage persists cleaned datasets into SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidDataset  = errors.New("invalid dataset")
	ErrInvalidIfExists = errors.New("invalid if-exists mode")
	ErrTableExists     = errors.New("table already exists")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDataset checks that the dataset can be turned into a table.
func validateDataset(ds *model.Dataset) error {
	if ds == nil {
		return fmt.Errorf("%w: dataset", ErrNilParameter)
	}
	if len(ds.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidDataset)
	}

	seen := make(map[string]bool, len(ds.Columns))
	for i, col := range ds.Columns {
		if strings.TrimSpace(col.Name) == "" {
			return fmt.Errorf("%w: column %d has no name", ErrInvalidDataset, i+1)
		}
		// SQLite column names are case-insensitive.
		key := strings.ToLower(col.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidDataset, col.Name)
		}
		seen[key] = true

		switch col.Kind {
		case model.KindInteger, model.KindReal, model.KindText:
		default:
			return fmt.Errorf("%w: column %q has unknown kind %q", ErrInvalidDataset, col.Name, col.Kind)
		}
	}

	for i, row := range ds.Rows {
		if len(row) != len(ds.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidDataset, i+1, len(row), len(ds.Columns))
		}
	}
	return nil
}
