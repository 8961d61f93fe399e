// Package testutil provides fixtures shared by the pipeline and command tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/disaster-pipeline/internal/model"
	"github.com/Veraticus/disaster-pipeline/internal/storage"
)

// Sample inputs in the shape of the disaster response datasets. Message 7
// appears twice and message 12 has no message row.
const (
	MessagesCSV = `id,message,original,genre
2,Weather update - a cold front from Cuba that could pass over Haiti,Un front froid se retrouve sur Cuba,direct
7,Is the Hurricane over or is it not over,Cyclone nan fini osinon li pa fini,direct
7,Is the Hurricane over or is it not over,Cyclone nan fini osinon li pa fini,direct
8,Looking for someone but no name,,direct
`
	CategoriesCSV = `id,categories
2,related-1;request-0;offer-0;aid_related-0
7,related-1;request-0;offer-0;aid_related-1
8,related-1;request-0;offer-0;aid_related-0
12,related-1;request-1;offer-0;aid_related-1
`
)

// Inputs holds the paths of one run's files inside a temp directory.
type Inputs struct {
	Dir            string
	MessagesPath   string
	CategoriesPath string
	DatabasePath   string
}

// WriteInputs writes messages and categories into a fresh temp directory.
// The database path is not created.
func WriteInputs(t *testing.T, messages, categories string) Inputs {
	t.Helper()
	dir := t.TempDir()

	in := Inputs{
		Dir:            dir,
		MessagesPath:   filepath.Join(dir, "disaster_messages.csv"),
		CategoriesPath: filepath.Join(dir, "disaster_categories.csv"),
		DatabasePath:   filepath.Join(dir, "DisasterResponse.db"),
	}
	if err := os.WriteFile(in.MessagesPath, []byte(messages), 0600); err != nil {
		t.Fatalf("failed to write messages: %v", err)
	}
	if err := os.WriteFile(in.CategoriesPath, []byte(categories), 0600); err != nil {
		t.Fatalf("failed to write categories: %v", err)
	}
	return in
}

// OpenStorage opens the database at path and closes it when the test ends.
func OpenStorage(t *testing.T, path string) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// ReadTable returns the contents of table in the database at path.
func ReadTable(t *testing.T, path, table string) *model.Dataset {
	t.Helper()
	ds, err := OpenStorage(t, path).ReadTable(context.Background(), table)
	if err != nil {
		t.Fatalf("failed to read table %s: %v", table, err)
	}
	return ds
}
