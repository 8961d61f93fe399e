// Package cleaner merges messages with their categories and expands the
// categories string into one integer column per category.
package cleaner

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/model"
)

// Default column names used by the disaster datasets.
const (
	DefaultKey              = "id"
	DefaultCategoriesColumn = "categories"
)

// Cleaning errors.
var (
	ErrNilTable         = errors.New("table cannot be nil")
	ErrMissingColumn    = errors.New("missing column")
	ErrCategoryMismatch = errors.New("category tokens do not match first row")
	ErrColumnCollision  = errors.New("category name collides with another column")
)

// Options controls which columns the cleaner joins and expands.
type Options struct {
	Key              string
	CategoriesColumn string
}

// DefaultOptions returns options for the standard message/category files.
func DefaultOptions() Options {
	return Options{
		Key:              DefaultKey,
		CategoriesColumn: DefaultCategoriesColumn,
	}
}

func (o Options) withDefaults() Options {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.CategoriesColumn == "" {
		o.CategoriesColumn = DefaultCategoriesColumn
	}
	return o
}

// Report summarizes a cleaning run.
type Report struct {
	Categories []string
	MergedRows int
	Duplicates int
	Rows       int
}

// Clean merges, expands and deduplicates the two tables into one dataset.
func Clean(messages, categories *model.Table, opts Options) (*model.Dataset, Report, error) {
	opts = opts.withDefaults()

	merged, err := Merge(messages, categories, opts.Key)
	if err != nil {
		return nil, Report{}, err
	}

	ds, names, err := ExpandCategories(merged, opts)
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{
		Categories: names,
		MergedRows: ds.Len(),
	}

	report.Duplicates = Deduplicate(ds)
	report.Rows = ds.Len()

	slog.Debug("Cleaned dataset",
		"merged_rows", report.MergedRows,
		"duplicates", report.Duplicates,
		"rows", report.Rows,
		"categories", len(report.Categories))

	return ds, report, nil
}

// ExpandCategories types the merged table and replaces its categories column
// with one integer column per category name. Names come from the first row
// and every later row must carry the same tokens in the same order.
func ExpandCategories(merged *MergedTable, opts Options) (*model.Dataset, []string, error) {
	opts = opts.withDefaults()

	catIdx := merged.ColumnIndex(opts.CategoriesColumn)
	if catIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, opts.CategoriesColumn)
	}
	keyIdx := merged.ColumnIndex(opts.Key)

	var names []string
	if len(merged.Rows) > 0 {
		var err error
		names, err = categoryNames(merged.Rows[0][catIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("row 1: %w", err)
		}
	}

	ds := &model.Dataset{}
	for i, col := range merged.Columns {
		if i == catIdx {
			continue
		}
		ds.Columns = append(ds.Columns, model.Column{Name: col, Kind: merged.Kinds[i]})
	}
	if err := checkCollisions(ds.Columns, names); err != nil {
		return nil, nil, err
	}
	for _, name := range names {
		ds.Columns = append(ds.Columns, model.Column{Name: name, Kind: model.KindInteger})
	}

	ds.Rows = make([][]any, 0, len(merged.Rows))
	for r, raw := range merged.Rows {
		values, err := categoryValues(names, raw[catIdx])
		if err != nil {
			if keyIdx >= 0 {
				return nil, nil, fmt.Errorf("row %d (%s %s): %w", r+1, opts.Key, raw[keyIdx], err)
			}
			return nil, nil, fmt.Errorf("row %d: %w", r+1, err)
		}

		row := make([]any, 0, len(ds.Columns))
		for i, cell := range raw {
			if i == catIdx {
				continue
			}
			row = append(row, model.ParseCell(cell, merged.Kinds[i]))
		}
		for _, v := range values {
			row = append(row, v)
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, names, nil
}

func categoryNames(raw string) ([]string, error) {
	tokens := model.SplitCategories(raw)
	names := make([]string, len(tokens))
	for i, token := range tokens {
		name, err := model.FlagName(token)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// checkCollisions rejects category names that repeat, or that match a
// column already in the dataset. SQLite column names ignore case, so the
// comparison does too.
func checkCollisions(columns []model.Column, names []string) error {
	seen := make(map[string]bool, len(columns)+len(names))
	for _, col := range columns {
		seen[strings.ToLower(col.Name)] = true
	}
	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrColumnCollision, name)
		}
		seen[key] = true
	}
	return nil
}

func categoryValues(names []string, raw string) ([]int64, error) {
	tokens := model.SplitCategories(raw)
	if len(tokens) != len(names) {
		return nil, fmt.Errorf("%w: expected %d tokens, got %d", ErrCategoryMismatch, len(names), len(tokens))
	}

	values := make([]int64, len(names))
	for i, name := range names {
		flag, err := model.ParseFlag(tokens[i])
		if err != nil {
			return nil, err
		}
		if flag.Name != name {
			return nil, fmt.Errorf("%w: token %d is %q, expected %q", ErrCategoryMismatch, i+1, flag.Name, name)
		}
		values[i] = flag.Value
	}
	return values, nil
}
