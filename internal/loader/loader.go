// Package loader reads the message and category CSV files into memory.
package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/disaster-pipeline/internal/model"
)

// Loader errors.
var (
	ErrEmptyPath       = errors.New("file path cannot be empty")
	ErrEmptyFile       = errors.New("file has no header row")
	ErrDuplicateColumn = errors.New("duplicate column in header")
)

const (
	readBufferSize = 1 << 20
	utf8BOM        = "\ufeff"
)

// Load reads the messages and categories files, in that order.
func Load(messagesPath, categoriesPath string) (messages, categories *model.Table, err error) {
	messages, err = ReadCSV(messagesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}

	categories, err = ReadCSV(categoriesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return messages, categories, nil
}

// ReadCSV reads a comma-delimited file with a header row, preserving every
// column and the original row order.
func ReadCSV(path string) (*model.Table, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := Parse(bufio.NewReaderSize(f, readBufferSize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	table.Source = path

	return table, nil
}

// Parse reads CSV content from r. Rows must have as many fields as the header.
func Parse(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := normalizeHeader(header)
	if err != nil {
		return nil, err
	}

	table := &model.Table{Columns: columns}
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func normalizeHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))

	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, utf8BOM)
		}
		col = strings.TrimSpace(col)
		if seen[col] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col)
		}
		seen[col] = true
		columns[i] = col
	}

	return columns, nil
}
