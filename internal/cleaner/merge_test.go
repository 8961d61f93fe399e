package cleaner

import (
	"testing"

	"github.com/Veraticus/disaster-pipeline/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_ManyToMany(t *testing.T) {
	left := &model.Table{
		Columns: []string{"id", "message"},
		Rows:    [][]string{{"1", "a"}, {"1", "b"}, {"2", "c"}},
	}
	right := &model.Table{
		Columns: []string{"id", "categories"},
		Rows:    [][]string{{"1", "x"}, {"1", "y"}},
	}

	merged, err := Merge(left, right, "id")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "message", "categories"}, merged.Columns)
	assert.Equal(t, [][]string{
		{"1", "a", "x"},
		{"1", "a", "y"},
		{"1", "b", "x"},
		{"1", "b", "y"},
	}, merged.Rows)
}

func TestMerge_OverlappingColumns(t *testing.T) {
	left := &model.Table{
		Columns: []string{"id", "genre", "message"},
		Rows:    [][]string{{"1", "news", "a"}},
	}
	right := &model.Table{
		Columns: []string{"genre", "id", "categories"},
		Rows:    [][]string{{"direct", "1", "related-1"}},
	}

	merged, err := Merge(left, right, "id")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "genre_x", "message", "genre_y", "categories"}, merged.Columns)
	assert.Equal(t, [][]string{{"1", "news", "a", "direct", "related-1"}}, merged.Rows)
}

func TestMerge_Kinds(t *testing.T) {
	left := &model.Table{
		Columns: []string{"id", "score", "message"},
		Rows:    [][]string{{"1", "0.5", "a"}, {"2", "", "b"}},
	}
	right := &model.Table{
		Columns: []string{"id", "categories"},
		Rows:    [][]string{{"1", "related-1"}, {"2", "related-0"}},
	}

	merged, err := Merge(left, right, "id")
	require.NoError(t, err)
	assert.Equal(t, []model.Kind{model.KindInteger, model.KindReal, model.KindText, model.KindText}, merged.Kinds)
}

func TestMerge_KeyWhitespace(t *testing.T) {
	left := &model.Table{Columns: []string{"id", "message"}, Rows: [][]string{{" 3", "a"}}}
	right := &model.Table{Columns: []string{"id", "categories"}, Rows: [][]string{{"3 ", "related-1"}}}

	merged, err := Merge(left, right, "id")
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
}

func TestMerge_TypedKeys(t *testing.T) {
	tests := []struct {
		name     string
		left     [][]string
		right    [][]string
		wantRows int
		wantKind model.Kind
	}{
		{
			name:     "leading zero and real key",
			left:     [][]string{{"01", "a"}, {"2", "b"}},
			right:    [][]string{{"1", "related-1"}, {"2.0", "related-0"}},
			wantRows: 2,
			wantKind: model.KindReal,
		},
		{
			name:     "integer keys",
			left:     [][]string{{"007", "a"}},
			right:    [][]string{{"7", "related-1"}},
			wantRows: 1,
			wantKind: model.KindInteger,
		},
		{
			name:     "text keys compare as written",
			left:     [][]string{{"a1", "a"}, {"01", "b"}},
			right:    [][]string{{"a1", "related-1"}, {"1", "related-0"}},
			wantRows: 1,
			wantKind: model.KindText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left := &model.Table{Columns: []string{"id", "message"}, Rows: tt.left}
			right := &model.Table{Columns: []string{"id", "categories"}, Rows: tt.right}

			merged, err := Merge(left, right, "id")
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, merged.Len())
			assert.Equal(t, tt.wantKind, merged.Kinds[0])
		})
	}
}
