package cleaner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/model"
)

// Suffixes appended to non-key columns present on both sides of a merge.
const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// MergedTable is the raw result of joining two tables, with the kind of
// each column inferred from its source table.
type MergedTable struct {
	model.Table
	Kinds []model.Kind
}

// Merge inner-joins left and right on key. Rows without a match on the
// other side are dropped; repeated keys produce every pairing, in left
// row order and then right row order.
func Merge(left, right *model.Table, key string) (*MergedTable, error) {
	if left == nil || right == nil {
		return nil, ErrNilTable
	}

	leftKey := left.ColumnIndex(key)
	if leftKey < 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, key, describe(left))
	}
	rightKey := right.ColumnIndex(key)
	if rightKey < 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, key, describe(right))
	}

	leftKinds := columnKinds(left)
	rightKinds := columnKinds(right)

	merged := &MergedTable{}
	for i, col := range left.Columns {
		if i != leftKey && right.ColumnIndex(col) >= 0 {
			col += leftSuffix
		}
		merged.Columns = append(merged.Columns, col)
		merged.Kinds = append(merged.Kinds, leftKinds[i])
	}
	if leftKinds[leftKey] != rightKinds[rightKey] {
		merged.Kinds[leftKey] = widen(leftKinds[leftKey], rightKinds[rightKey])
	}
	for i, col := range right.Columns {
		if i == rightKey {
			continue
		}
		if left.ColumnIndex(col) >= 0 {
			col += rightSuffix
		}
		merged.Columns = append(merged.Columns, col)
		merged.Kinds = append(merged.Kinds, rightKinds[i])
	}

	keyKind := merged.Kinds[leftKey]
	index := make(map[string][]int, len(right.Rows))
	for r, row := range right.Rows {
		k := joinKey(row[rightKey], keyKind)
		index[k] = append(index[k], r)
	}

	for _, lrow := range left.Rows {
		matches := index[joinKey(lrow[leftKey], keyKind)]
		for _, r := range matches {
			rrow := right.Rows[r]
			row := make([]string, 0, len(merged.Columns))
			row = append(row, lrow...)
			for i, cell := range rrow {
				if i != rightKey {
					row = append(row, cell)
				}
			}
			merged.Rows = append(merged.Rows, row)
		}
	}

	return merged, nil
}

// joinKey renders a key cell as its typed value under kind, so that "01"
// and "1.0" meet under a numeric key. Text keys compare trimmed.
func joinKey(cell string, kind model.Kind) string {
	cell = strings.TrimSpace(cell)
	switch v := model.ParseCell(cell, kind).(type) {
	case nil:
		return "n"
	case int64:
		return "i" + strconv.FormatInt(v, 10)
	case float64:
		return "f" + strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return "s" + cell
	}
}

func columnKinds(t *model.Table) []model.Kind {
	kinds := make([]model.Kind, len(t.Columns))
	values := make([]string, len(t.Rows))
	for c := range t.Columns {
		for r, row := range t.Rows {
			values[r] = row[c]
		}
		kinds[c] = model.InferKind(values)
	}
	return kinds
}

func widen(a, b model.Kind) model.Kind {
	if a == model.KindText || b == model.KindText {
		return model.KindText
	}
	return model.KindReal
}

func describe(t *model.Table) string {
	if t.Source != "" {
		return t.Source
	}
	return "table"
}
