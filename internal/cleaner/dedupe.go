package cleaner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/model"
)

// Deduplicate removes rows equal to an earlier row in every column and
// returns how many were removed. The first occurrence is kept in place.
func Deduplicate(ds *model.Dataset) int {
	if ds == nil {
		return 0
	}

	seen := make(map[string]struct{}, len(ds.Rows))
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	removed := len(ds.Rows) - len(kept)
	ds.Rows = kept
	return removed
}

// rowKey encodes a row so that two rows share a key only when every cell
// has the same type and value.
func rowKey(row []any) string {
	var b strings.Builder
	for _, cell := range row {
		switch v := cell.(type) {
		case nil:
			b.WriteString("n;")
		case int64:
			b.WriteString("i")
			b.WriteString(strconv.FormatInt(v, 10))
			b.WriteByte(';')
		case float64:
			b.WriteString("f")
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			b.WriteByte(';')
		case string:
			b.WriteString("s")
			b.WriteString(strconv.Quote(v))
			b.WriteByte(';')
		default:
			fmt.Fprintf(&b, "?%#v;", v)
		}
	}
	return b.String()
}
