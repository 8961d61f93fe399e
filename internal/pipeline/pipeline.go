// Package pipeline runs the load, clean and save stages in order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/disaster-pipeline/internal/cleaner"
	"github.com/Veraticus/disaster-pipeline/internal/cli"
	"github.com/Veraticus/disaster-pipeline/internal/common"
	"github.com/Veraticus/disaster-pipeline/internal/loader"
	"github.com/Veraticus/disaster-pipeline/internal/storage"
)

// Options describes one run.
type Options struct {
	// Out receives human-readable progress. Nil discards it.
	Out            io.Writer
	MessagesPath   string
	CategoriesPath string
	DatabasePath   string
	Table          string
	IfExists       storage.IfExists
	Cleaner        cleaner.Options
	ShowProgress   bool
}

// Result reports what a run produced.
type Result struct {
	Report   cleaner.Report
	Table    string
	Columns  []string
	Duration time.Duration
}

// Run loads both files, cleans them and writes the result to the database.
// It stops at the first error. The database file is not created before
// cleaning succeeds, and a failed write leaves the target table unchanged.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	if opts.Table == "" {
		opts.Table = storage.DefaultTableName
	}

	say(out, cli.FormatTitle("Loading data..."))
	say(out, cli.FormatDetail("MESSAGES", opts.MessagesPath))
	say(out, cli.FormatDetail("CATEGORIES", opts.CategoriesPath))
	messages, categories, err := loader.Load(opts.MessagesPath, opts.CategoriesPath)
	if err != nil {
		return nil, common.NewUserError("Failed to load data", err)
	}
	slog.Debug("Loaded input files",
		"messages", messages.Len(),
		"categories", categories.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	say(out, cli.FormatTitle("Cleaning data..."))
	ds, report, err := cleaner.Clean(messages, categories, opts.Cleaner)
	if err != nil {
		return nil, common.NewUserError("Failed to clean data", err)
	}
	say(out, cli.FormatInfo(fmt.Sprintf("Removing %d duplicates in the dataset.", report.Duplicates)))

	say(out, cli.FormatTitle("Saving data..."))
	say(out, cli.FormatDetail("DATABASE", opts.DatabasePath))
	store, err := storage.NewSQLiteStorage(opts.DatabasePath)
	if err != nil {
		return nil, common.NewUserError("Failed to open database", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	writeOpts := storage.WriteOptions{IfExists: opts.IfExists}
	var progress *cli.Progress
	if opts.ShowProgress && ds.Len() > 0 {
		progress = cli.NewProgress(out, ds.Len(), "Writing rows...")
		writeOpts.OnRow = progress.Increment
	}

	if err := store.WriteTable(ctx, opts.Table, ds, writeOpts); err != nil {
		if progress != nil {
			progress.Abort()
		}
		return nil, common.NewUserError("Failed to save data", err)
	}
	if progress != nil {
		progress.Finish()
	}

	say(out, cli.FormatDetail("database", fmt.Sprintf("%s - tablename %s", store.Path(), opts.Table)))
	say(out, cli.FormatSuccess("Cleaned data saved to database!"))
	say(out, summary(store.Path(), opts.Table, report))

	result := &Result{
		Report:   report,
		Table:    opts.Table,
		Columns:  ds.ColumnNames(),
		Duration: time.Since(start),
	}
	slog.Info("Pipeline complete",
		"table", result.Table,
		"rows", report.Rows,
		"duplicates", report.Duplicates,
		"categories", len(report.Categories),
		"duration", result.Duration)

	return result, nil
}

func summary(path, table string, report cleaner.Report) string {
	content := fmt.Sprintf("Database:   %s\nTable:      %s\nRows:       %d\nDuplicates: %d\nCategories: %d",
		path, table, report.Rows, report.Duplicates, len(report.Categories))
	return cli.RenderBox(cli.FolderIcon+" Run Summary", content)
}

func say(w io.Writer, line string) {
	if _, err := fmt.Fprintln(w, line); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
