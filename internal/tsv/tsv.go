// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tsv reads and writes the tab-delimited files exchanged between
// pipeline stages. Fields are quoted only when they contain a tab, quote,
// or line break, so files stay readable by spreadsheet tools and pandas.
package tsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Table is a parsed tab-delimited file. Every row has len(Header) cells;
// short rows are padded with empty strings and longer rows are an error.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named header column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ReadFile parses path. When hasHeader is false, width columns are assumed
// and Header is left nil.
func ReadFile(path string, hasHeader bool, width int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f, hasHeader, width)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// Read parses tab-delimited records from r. Blank lines are skipped.
func Read(r io.Reader, hasHeader bool, width int) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	t := &Table{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if hasHeader && t.Header == nil {
			t.Header = rec
			width = len(rec)
			continue
		}
		if width > 0 && len(rec) > width {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %d fields, want at most %d", line, len(rec), width)
		}
		t.Rows = append(t.Rows, pad(rec, width))
	}
	if hasHeader && t.Header == nil {
		return nil, errors.New("missing header row")
	}
	return t, nil
}

func pad(rec []string, width int) []string {
	if width <= 0 || len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}

// WriteFile writes header (when non-nil) and rows to path through a
// temporary file in the same directory, renaming it into place on success.
// Parent directories are created as needed.
func WriteFile(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tsv-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := Write(tmpFile, header, rows)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Write encodes header (when non-nil) and rows to w.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
