// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge attaches hand-assigned labels to fetched preprints.
//
// The join runs in an in-memory SQLite database so duplicate identifiers in
// either file expand exactly as a relational LEFT JOIN does.
package merge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/preprint-classifier/internal/tsv"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

var (
	// ErrUnmatched is returned under the reject policy when a preprint has no label.
	ErrUnmatched = errors.New("preprints without a label")

	// ErrMissingDOI is returned when the preprints file has no DOI column.
	ErrMissingDOI = errors.New("preprints file has no DOI column")
)

// maxListedUnmatched caps the DOIs quoted in an ErrUnmatched message.
const maxListedUnmatched = 5

// Summary holds counts from a merge run.
type Summary struct {
	Preprints int
	Labels    int
	Rows      int
	Unmatched int
	Dropped   int
}

// Result is the joined table and its summary.
type Result struct {
	Header  []string
	Rows    [][]string
	Summary Summary
}

// Join performs a left outer join of preprints with labels on the DOI
// column. labels rows are (DOI, label) pairs. Each output row is the
// preprint row unchanged followed by the label, or "" when unmatched.
// The policy decides whether unmatched rows are kept, dropped, or
// rejected.
func Join(ctx context.Context, preprints, labels *tsv.Table, policy types.UnmatchedPolicy) (*Result, error) {
	doiCol := preprints.Column(types.ColumnDOI)
	if doiCol < 0 {
		return nil, ErrMissingDOI
	}
	if policy == "" {
		policy = types.UnmatchedKeep
	}
	switch policy {
	case types.UnmatchedKeep, types.UnmatchedDrop, types.UnmatchedReject:
	default:
		return nil, fmt.Errorf("unsupported unmatched policy %q: use keep, drop, or reject", policy)
	}

	db, err := openMemoryDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := load(ctx, db, preprints, doiCol, labels); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT p.doi, p.row, l.label
		FROM preprints p
		LEFT JOIN labels l ON l.doi = p.doi
		ORDER BY p.seq, l.seq`)
	if err != nil {
		return nil, fmt.Errorf("joining labels: %w", err)
	}
	defer rows.Close()

	res := &Result{
		Header: append(append([]string{}, preprints.Header...), types.ColumnLabel),
		Summary: Summary{
			Preprints: len(preprints.Rows),
			Labels:    len(labels.Rows),
		},
	}
	var unmatched []string
	for rows.Next() {
		var (
			doi, rowJSON string
			label        sql.NullString
		)
		if err := rows.Scan(&doi, &rowJSON, &label); err != nil {
			return nil, fmt.Errorf("scanning joined row: %w", err)
		}
		if !label.Valid {
			res.Summary.Unmatched++
			unmatched = append(unmatched, doi)
			if policy == types.UnmatchedDrop {
				res.Summary.Dropped++
				continue
			}
		}

		var cells []string
		if err := json.Unmarshal([]byte(rowJSON), &cells); err != nil {
			return nil, fmt.Errorf("decoding stored row: %w", err)
		}
		res.Rows = append(res.Rows, append(cells, label.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating joined rows: %w", err)
	}

	if policy == types.UnmatchedReject && len(unmatched) > 0 {
		listed := unmatched
		if len(listed) > maxListedUnmatched {
			listed = listed[:maxListedUnmatched]
		}
		return nil, fmt.Errorf("%w: %d row(s), first: %s", ErrUnmatched, len(unmatched), strings.Join(listed, ", "))
	}

	res.Summary.Rows = len(res.Rows)
	return res, nil
}

// openMemoryDB opens a private in-memory database. A single connection
// keeps every statement on the same database.
func openMemoryDB() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE preprints (
			seq INTEGER PRIMARY KEY,
			doi TEXT NOT NULL,
			row TEXT NOT NULL
		)`,
		`CREATE TABLE labels (
			seq INTEGER PRIMARY KEY,
			doi TEXT NOT NULL,
			label TEXT NOT NULL
		)`,
		`CREATE INDEX idx_labels_doi ON labels(doi)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return db, nil
}

func load(ctx context.Context, db *sql.DB, preprints *tsv.Table, doiCol int, labels *tsv.Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, row := range preprints.Rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encoding preprint row %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO preprints (seq, doi, row) VALUES (?, ?, ?)`,
			i, row[doiCol], string(data),
		); err != nil {
			return fmt.Errorf("inserting preprint row %d: %w", i+1, err)
		}
	}

	for i, row := range labels.Rows {
		if len(row) < 2 {
			return fmt.Errorf("label row %d: want 2 columns, got %d", i+1, len(row))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO labels (seq, doi, label) VALUES (?, ?, ?)`,
			i, row[0], row[1],
		); err != nil {
			return fmt.Errorf("inserting label row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// MergeFiles reads cfg.PreprintsFile and cfg.LabelsFile, joins them, and
// writes cfg.OutputFile. Progress and warnings go to w.
func MergeFiles(ctx context.Context, cfg types.MergeConfig, w io.Writer) (Summary, error) {
	preprints, err := tsv.ReadFile(cfg.PreprintsFile, true, 0)
	if err != nil {
		return Summary{}, fmt.Errorf("loading preprints: %w", err)
	}
	labels, err := tsv.ReadFile(cfg.LabelsFile, false, 2)
	if err != nil {
		return Summary{}, fmt.Errorf("loading labels: %w", err)
	}

	res, err := Join(ctx, preprints, labels, cfg.Unmatched)
	if err != nil {
		return Summary{}, err
	}

	if err := tsv.WriteFile(cfg.OutputFile, res.Header, res.Rows); err != nil {
		return res.Summary, err
	}

	s := res.Summary
	if s.Unmatched > 0 {
		fmt.Fprintf(w, "warning: %d preprint(s) have no label", s.Unmatched)
		if s.Dropped > 0 {
			fmt.Fprintf(w, " (dropped)")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Merged data saved to %s (%d rows)\n", cfg.OutputFile, s.Rows)
	return s, nil
}
