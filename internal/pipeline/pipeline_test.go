package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/disaster-pipeline/internal/cleaner"
	"github.com/Veraticus/disaster-pipeline/internal/common"
	"github.com/Veraticus/disaster-pipeline/internal/model"
	"github.com/Veraticus/disaster-pipeline/internal/storage"
	"github.com/Veraticus/disaster-pipeline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	in := testutil.WriteInputs(t, testutil.MessagesCSV, testutil.CategoriesCSV)
	var out bytes.Buffer

	result, err := Run(context.Background(), Options{
		Out:            &out,
		MessagesPath:   in.MessagesPath,
		CategoriesPath: in.CategoriesPath,
		DatabasePath:   in.DatabasePath,
		Cleaner:        cleaner.DefaultOptions(),
		ShowProgress:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, storage.DefaultTableName, result.Table)
	assert.Equal(t, 1, result.Report.Duplicates)
	assert.Equal(t, 3, result.Report.Rows)
	assert.Equal(t, []string{"id", "message", "original", "genre", "related", "request", "offer", "aid_related"}, result.Columns)

	output := out.String()
	assert.Contains(t, output, "Loading data...")
	assert.Contains(t, output, "Cleaning data...")
	assert.Contains(t, output, "Removing 1 duplicates in the dataset.")
	assert.Contains(t, output, "Saving data...")
	assert.Contains(t, output, "Cleaned data saved to database!")
	assert.Contains(t, output, "Run Summary")
	assert.Contains(t, output, "Duplicates: 1")
	assert.Contains(t, output, "Table:      "+storage.DefaultTableName)

	ds := testutil.ReadTable(t, in.DatabasePath, storage.DefaultTableName)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, result.Columns, ds.ColumnNames())
	assert.Equal(t, []any{
		int64(8), "Looking for someone but no name", nil, "direct",
		int64(1), int64(0), int64(0), int64(0),
	}, ds.Rows[2])
	assert.Equal(t, int64(1), ds.Rows[1][ds.ColumnIndex("aid_related")])
}

func TestRun_ReplacesPreviousRun(t *testing.T) {
	in := testutil.WriteInputs(t, testutil.MessagesCSV, testutil.CategoriesCSV)
	opts := Options{
		MessagesPath:   in.MessagesPath,
		CategoriesPath: in.CategoriesPath,
		DatabasePath:   in.DatabasePath,
		IfExists:       storage.IfExistsReplace,
	}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	_, err = Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Len(t, testutil.ReadTable(t, in.DatabasePath, storage.DefaultTableName).Rows, 3)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		wantErr    error
		name       string
		messages   string
		categories string
		message    string
	}{
		{
			name:       "malformed category value",
			messages:   "id,message\n1,flood here\n",
			categories: "id,categories\n1,related-x;offer-0\n",
			wantErr:    model.ErrInvalidFlag,
			message:    "Failed to clean data",
		},
		{
			name:       "inconsistent tokens",
			messages:   "id,message\n1,a\n2,b\n",
			categories: "id,categories\n1,related-1;offer-0\n2,related-1\n",
			wantErr:    cleaner.ErrCategoryMismatch,
			message:    "Failed to clean data",
		},
		{
			name:       "category named like a message column",
			messages:   "id,message,genre\n1,flood here,direct\n",
			categories: "id,categories\n1,related-1;genre-0\n",
			wantErr:    cleaner.ErrColumnCollision,
			message:    "Failed to clean data",
		},
		{
			name:       "empty messages file",
			messages:   "",
			categories: "id,categories\n1,related-1\n",
			message:    "Failed to load data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testutil.WriteInputs(t, tt.messages, tt.categories)

			_, err := Run(context.Background(), Options{
				MessagesPath:   in.MessagesPath,
				CategoriesPath: in.CategoriesPath,
				DatabasePath:   in.DatabasePath,
			})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.message, common.UserMessage(err))

			_, statErr := os.Stat(in.DatabasePath)
			assert.True(t, os.IsNotExist(statErr), "database must not be created on failure")
		})
	}
}

func TestRun_TypedKeys(t *testing.T) {
	in := testutil.WriteInputs(t,
		"id,message\n01,flood here\n2,need food\n",
		"id,categories\n1,related-1\n2.0,related-0\n",
	)

	result, err := Run(context.Background(), Options{
		MessagesPath:   in.MessagesPath,
		CategoriesPath: in.CategoriesPath,
		DatabasePath:   in.DatabasePath,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Report.Rows)

	ds := testutil.ReadTable(t, in.DatabasePath, storage.DefaultTableName)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, []any{1.0, "flood here", int64(1)}, ds.Rows[0])
}

func TestRun_WriteFailureEndsProgressLine(t *testing.T) {
	in := testutil.WriteInputs(t, testutil.MessagesCSV, testutil.CategoriesCSV)
	opts := Options{
		MessagesPath:   in.MessagesPath,
		CategoriesPath: in.CategoriesPath,
		DatabasePath:   in.DatabasePath,
	}
	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	var out bytes.Buffer
	opts.Out = &out
	opts.IfExists = storage.IfExistsFail
	opts.ShowProgress = true

	_, err = Run(context.Background(), opts)
	require.ErrorIs(t, err, storage.ErrTableExists)
	assert.Equal(t, "Failed to save data", common.UserMessage(err))
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
	assert.NotContains(t, out.String(), "Cleaned data saved to database!")
	assert.Len(t, testutil.ReadTable(t, in.DatabasePath, storage.DefaultTableName).Rows, 3)
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), Options{
		MessagesPath:   filepath.Join(dir, "missing.csv"),
		CategoriesPath: filepath.Join(dir, "missing_too.csv"),
		DatabasePath:   filepath.Join(dir, "out.db"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_UnwritableDatabase(t *testing.T) {
	in := testutil.WriteInputs(t, testutil.MessagesCSV, testutil.CategoriesCSV)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := Run(context.Background(), Options{
		MessagesPath:   in.MessagesPath,
		CategoriesPath: in.CategoriesPath,
		DatabasePath:   filepath.Join(blocker, "out.db"),
	})
	require.Error(t, err)
	assert.Equal(t, "Failed to open database", common.UserMessage(err))
}

func TestRun_Canceled(t *testing.T) {
	in := testutil.WriteInputs(t, testutil.MessagesCSV, testutil.CategoriesCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{
		MessagesPath:   in.MessagesPath,
		CategoriesPath: in.CategoriesPath,
		DatabasePath:   in.DatabasePath,
	})
	assert.ErrorIs(t, err, context.Canceled)
}
