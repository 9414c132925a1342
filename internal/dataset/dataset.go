// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset turns a labeled preprints file into balanced train and
// test feature partitions: load, encode labels, embed abstracts, oversample
// minority classes, and split.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/preprint-classifier/internal/balance"
	"github.com/pdiddy/preprint-classifier/internal/embed"
	"github.com/pdiddy/preprint-classifier/internal/tsv"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

// ErrMissingColumn is returned when the labeled file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Result is the outcome of a build.
type Result struct {
	Split    types.Split
	Manifest types.DatasetManifest
}

// Load reads a labeled dataset file. The Abstract and Label columns are
// required; any other known column missing from the file is left empty,
// as are missing cells.
func Load(path string) ([]types.Record, error) {
	tbl, err := tsv.ReadFile(path, true, 0)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	for _, name := range []string{types.ColumnAbstract, types.ColumnLabel} {
		if tbl.Column(name) < 0 {
			return nil, fmt.Errorf("%w %q in %s", ErrMissingColumn, name, path)
		}
	}

	cell := func(row []string, name string) string {
		if i := tbl.Column(name); i >= 0 {
			return row[i]
		}
		return ""
	}
	records := make([]types.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		records = append(records, types.Record{
			DOI:             cell(row, types.ColumnDOI),
			Title:           cell(row, types.ColumnTitle),
			Abstract:        cell(row, types.ColumnAbstract),
			Authors:         cell(row, types.ColumnAuthors),
			PublicationDate: cell(row, types.ColumnPublicationDate),
			Label:           cell(row, types.ColumnLabel),
		})
	}
	return records, nil
}

// Build encodes, embeds, balances, and splits records. Rows with an empty
// label are dropped unless cfg.KeepUnlabeled is set. Class distributions
// before and after balancing are printed to w.
func Build(ctx context.Context, records []types.Record, e embed.Embedder, cfg types.BuildConfig, w io.Writer) (*Result, error) {
	testSize := cfg.TestSize
	if testSize == 0 {
		testSize = DefaultTestSize
	}

	kept := records
	dropped := 0
	if !cfg.KeepUnlabeled {
		kept = make([]types.Record, 0, len(records))
		for _, r := range records {
			if r.Label == "" {
				dropped++
				continue
			}
			kept = append(kept, r)
		}
		if dropped > 0 {
			fmt.Fprintf(w, "warning: dropped %d row(s) without a label\n", dropped)
		}
	}
	if len(kept) == 0 {
		return nil, errors.New("no labeled rows to build from")
	}

	labels := make([]string, len(kept))
	abstracts := make([]string, len(kept))
	for i, r := range kept {
		labels[i] = r.Label
		abstracts[i] = r.Abstract
	}

	enc := NewLabelEncoder(labels)
	y, err := enc.Transform(labels)
	if err != nil {
		return nil, err
	}
	classes := enc.Classes()

	X, err := embed.All(ctx, e, abstracts)
	if err != nil {
		return nil, err
	}

	before := balance.Counts(y)
	fmt.Fprintf(w, "Class distribution: %s\n", FormatDistribution(before, classes))

	k := balance.KNeighbors(before)
	xBal, yBal, err := balance.SMOTE{KNeighbors: k, Seed: cfg.Seed}.Resample(X, y)
	if err != nil {
		return nil, fmt.Errorf("balancing classes: %w", err)
	}
	after := balance.Counts(yBal)
	fmt.Fprintf(w, "Balanced distribution: %s\n", FormatDistribution(after, classes))

	xTrain, xTest, yTrain, yTest, err := Split(xBal, yBal, testSize, cfg.Seed)
	if err != nil {
		return nil, err
	}

	dim := 0
	if len(X) > 0 {
		dim = len(X[0])
	}
	return &Result{
		Split: types.Split{
			XTrain:  xTrain,
			XTest:   xTest,
			YTrain:  yTrain,
			YTest:   yTest,
			Classes: classes,
		},
		Manifest: types.DatasetManifest{
			RunID:            uuid.NewString(),
			Source:           cfg.InputFile,
			CreatedAt:        time.Now().UTC().Truncate(time.Second),
			Embedder:         e.Name(),
			Dimension:        dim,
			Classes:          classes,
			CountsBefore:     namedCounts(before, classes),
			CountsAfter:      namedCounts(after, classes),
			KNeighbors:       k,
			Seed:             cfg.Seed,
			TestSize:         testSize,
			TrainRows:        len(yTrain),
			TestRows:         len(yTest),
			DroppedUnlabeled: dropped,
		},
	}, nil
}

// ProcessFile loads cfg.InputFile, opens the configured embedder for the
// duration of the build, and returns the balanced split.
func ProcessFile(ctx context.Context, cfg types.BuildConfig, w io.Writer) (*Result, error) {
	records, err := Load(cfg.InputFile)
	if err != nil {
		return nil, err
	}

	e, err := embed.Open(cfg.Embed)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	return Build(ctx, records, e, cfg, w)
}

func namedCounts(counts map[int]int, classes []string) map[string]int {
	out := make(map[string]int, len(counts))
	for code, n := range counts {
		out[classes[code]] = n
	}
	return out
}

// FormatDistribution renders per-class counts in class order,
// e.g. "A=2, B=1".
func FormatDistribution(counts map[int]int, classes []string) string {
	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	s := ""
	for i, code := range codes {
		if i > 0 {
			s += ", "
		}
		name := fmt.Sprint(code)
		if code >= 0 && code < len(classes) {
			name = classes[code]
			if name == "" {
				name = `""`
			}
		}
		s += fmt.Sprintf("%s=%d", name, counts[code])
	}
	return s
}
