package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/model"
)

// IfExists decides what WriteTable does when the target table already exists.
type IfExists string

const (
	// IfExistsReplace drops the existing table and writes a fresh one.
	IfExistsReplace IfExists = "replace"
	// IfExistsAppend inserts into the existing table.
	IfExistsAppend IfExists = "append"
	// IfExistsFail refuses to touch an existing table.
	IfExistsFail IfExists = "fail"
)

// ParseIfExists validates a mode name. An empty name means replace.
func ParseIfExists(s string) (IfExists, error) {
	switch mode := IfExists(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return IfExistsReplace, nil
	case IfExistsReplace, IfExistsAppend, IfExistsFail:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIfExists, s)
	}
}

// WriteOptions configures WriteTable.
type WriteOptions struct {
	// OnRow is called after each inserted row.
	OnRow    func()
	IfExists IfExists
}

// WriteTable writes ds into the named table inside one SQL transaction.
// Nothing is committed unless every row is inserted.
func (s *SQLiteStorage) WriteTable(ctx context.Context, name string, ds *model.Dataset, opts WriteOptions) error {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "table name"); err != nil {
		return err
	}
	if err := validateDataset(ds); err != nil {
		return err
	}
	mode, err := ParseIfExists(string(opts.IfExists))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.writeTableTx(ctx, tx, name, ds, mode, opts.OnRow); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStorage) writeTableTx(ctx context.Context, tx *sql.Tx, name string, ds *model.Dataset, mode IfExists, onRow func()) error {
	exists, err := s.tableExistsTx(ctx, tx, name)
	if err != nil {
		return err
	}

	switch {
	case exists && mode == IfExistsFail:
		return fmt.Errorf("%w: %s", ErrTableExists, name)
	case exists && mode == IfExistsReplace:
		if _, err := tx.ExecContext(ctx, "DROP TABLE "+quoteIdent(name)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", name, err)
		}
		exists = false
	}

	if !exists {
		if _, err := tx.ExecContext(ctx, createTableSQL(name, ds.Columns)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(name, ds.Columns))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range ds.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
		if onRow != nil {
			onRow()
		}
	}

	return nil
}

// TableExists reports whether the named table exists.
func (s *SQLiteStorage) TableExists(ctx context.Context, name string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(name, "table name"); err != nil {
		return false, err
	}
	return s.tableExistsTx(ctx, s.db, name)
}

func (s *SQLiteStorage) tableExistsTx(ctx context.Context, q queryable, name string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE",
		name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return count > 0, nil
}

// CountRows returns the number of rows in the named table.
func (s *SQLiteStorage) CountRows(ctx context.Context, name string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(name, "table name"); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", name, err)
	}
	return count, nil
}

// ListTables returns the names of all user tables.
func (s *SQLiteStorage) ListTables(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReadTable loads the named table back into a dataset, in rowid order.
func (s *SQLiteStorage) ReadTable(ctx context.Context, name string) (*model.Dataset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "table name"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(name)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns of %s: %w", name, err)
	}

	ds := &model.Dataset{Columns: make([]model.Column, len(types))}
	for i, ct := range types {
		ds.Columns[i] = model.Column{Name: ct.Name(), Kind: kindFromDecl(ct.DatabaseTypeName())}
	}

	for rows.Next() {
		cells := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}
		for i, cell := range cells {
			if b, ok := cell.([]byte); ok {
				cells[i] = string(b)
			}
		}
		ds.Rows = append(ds.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", name, err)
	}

	return ds, nil
}

func createTableSQL(name string, columns []model.Column) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col.Name) + " " + string(col.Kind)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", quoteIdent(name), strings.Join(defs, ",\n\t"))
}

func insertSQL(name string, columns []model.Column) string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.Name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(name), strings.Join(names, ", "), placeholders)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func kindFromDecl(decl string) model.Kind {
	switch strings.ToUpper(decl) {
	case "INTEGER", "INT", "BIGINT":
		return model.KindInteger
	case "REAL", "FLOAT", "DOUBLE":
		return model.KindReal
	default:
		return model.KindText
	}
}
