// Package model defines the tabular types that flow between pipeline stages.
package model

import (
	"strconv"
	"strings"
)

// Kind is the storage class of a dataset column.
type Kind string

const (
	// KindInteger columns hold int64 cells.
	KindInteger Kind = "INTEGER"
	// KindReal columns hold float64 cells.
	KindReal Kind = "REAL"
	// KindText columns hold string cells.
	KindText Kind = "TEXT"
)

// Table is a delimited file as read from disk, header plus raw string rows.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column describes one column of a Dataset.
type Column struct {
	Name string
	Kind Kind
}

// Dataset is a typed table. Each cell is nil, int64, float64 or string.
type Dataset struct {
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the dataset's column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, col := range d.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// InferKind picks the narrowest kind that holds every non-empty value.
// Empty values are treated as missing and do not influence the result.
func InferKind(values []string) Kind {
	kind := KindInteger
	seen := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		if kind == KindInteger {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			kind = KindReal
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return KindText
		}
	}
	if !seen {
		return KindText
	}
	return kind
}

// ParseCell converts a raw value into a cell of the given kind.
// Empty values become nil. A value that does not parse as kind is kept
// as its raw string.
func ParseCell(raw string, kind Kind) any {
	if raw == "" {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" && kind != KindText {
		return nil
	}
	switch kind {
	case KindInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	case KindReal:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case KindText:
		return raw
	}
	return raw
}
