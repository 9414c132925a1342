// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/preprint-classifier/internal/httputil"
	"github.com/pdiddy/preprint-classifier/internal/tsv"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched int
	Missing int
	Failed  int
	Records []types.Record
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Missing + r.Failed
}

// HasFailures reports whether any request failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ReadDOIs reads one identifier per line from path, trimming whitespace and
// skipping blank lines.
func ReadDOIs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dois []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			dois = append(dois, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return dois, nil
}

// FetchBatch fetches each DOI in order, printing per-item status to w.
// DOIs without a match are omitted from Records. Request failures are
// counted and the batch continues. The client's rate policy delay is
// applied after every request. Only context cancellation stops the batch
// early; the partial result is returned with ctx.Err().
func FetchBatch(ctx context.Context, c *Client, dois []string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for _, doi := range dois {
		rec, err := c.FetchByDOI(ctx, doi)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", doi, err)
			result.Failed++
		case rec == nil:
			fmt.Fprintf(w, "missing: %s\n", doi)
			result.Missing++
		default:
			fmt.Fprintf(w, "fetched: %s\n", doi)
			result.Fetched++
			result.Records = append(result.Records, *rec)
		}

		if err := httputil.Pause(ctx, c.cfg.Delay); err != nil {
			return result, err
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d missing, %d failed (total: %d)\n",
		result.Fetched, result.Missing, result.Failed, result.Total())
	return result, nil
}

// WritePreprints writes records to path under the fixed preprints header.
func WritePreprints(path string, records []types.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.PreprintRow())
	}
	return tsv.WriteFile(path, types.PreprintColumns, rows)
}

// FetchToFile reads DOIs from cfg.DOIFile, fetches them, and writes the
// surviving records to cfg.OutputFile.
func FetchToFile(ctx context.Context, c *Client, w io.Writer) (BatchResult, error) {
	cfg := c.Config()
	dois, err := ReadDOIs(cfg.DOIFile)
	if err != nil {
		return BatchResult{}, err
	}

	result, err := FetchBatch(ctx, c, dois, w)
	if err != nil {
		return result, err
	}
	if err := WritePreprints(cfg.OutputFile, result.Records); err != nil {
		return result, fmt.Errorf("writing preprints: %w", err)
	}
	return result, nil
}
