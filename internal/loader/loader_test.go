package loader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, name string, content [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(content))
	require.NoError(t, f.Close())
	return path
}

func TestLoad(t *testing.T) {
	messagesPath := writeTempCSV(t, "messages.csv", [][]string{
		{"id", "message", "original", "genre"},
		{"2", "Weather update - a cold front", "Un front froid", "direct"},
		{"7", "Is the Hurricane over, or is it not?", "", "direct"},
	})
	categoriesPath := writeTempCSV(t, "categories.csv", [][]string{
		{"id", "categories"},
		{"2", "related-1;request-0;offer-0"},
		{"7", "related-1;request-0;offer-0"},
	})

	messages, categories, err := Load(messagesPath, categoriesPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "message", "original", "genre"}, messages.Columns)
	require.Equal(t, 2, messages.Len())
	assert.Equal(t, "2", messages.Rows[0][0])
	assert.Equal(t, "", messages.Rows[1][2])
	assert.Equal(t, messagesPath, messages.Source)

	assert.Equal(t, []string{"id", "categories"}, categories.Columns)
	assert.Equal(t, "related-1;request-0;offer-0", categories.Rows[1][1])
}

func TestLoad_MissingFile(t *testing.T) {
	categoriesPath := writeTempCSV(t, "categories.csv", [][]string{{"id", "categories"}})

	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), categoriesPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to load messages")
}

func TestParse(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		input    string
		wantCols []string
		wantRows int
		anyErr   bool
	}{
		{
			name:     "quoted fields with commas",
			input:    "id,message\n1,\"flood, here\"\n",
			wantCols: []string{"id", "message"},
			wantRows: 1,
		},
		{
			name:     "header only",
			input:    "id,categories\n",
			wantCols: []string{"id", "categories"},
			wantRows: 0,
		},
		{
			name:     "bom and padded header",
			input:    "\ufeffid , message\n1,hi\n",
			wantCols: []string{"id", "message"},
			wantRows: 1,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrEmptyFile,
		},
		{
			name:    "duplicate header",
			input:   "id,id\n1,2\n",
			wantErr: ErrDuplicateColumn,
		},
		{
			name:   "ragged row",
			input:  "id,message\n1,hi,extra\n",
			anyErr: true,
		},
		{
			name:   "unterminated quote",
			input:  "id,message\n1,\"hi\n",
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.anyErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, table.Columns)
			assert.Equal(t, tt.wantRows, table.Len())
		})
	}
}

func TestReadCSV_EmptyPath(t *testing.T) {
	_, err := ReadCSV("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}
