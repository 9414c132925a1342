// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/preprint-classifier/internal/tsv"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

func preprintsTable(dois ...string) *tsv.Table {
	t := &tsv.Table{Header: append([]string{}, types.PreprintColumns...)}
	for _, d := range dois {
		t.Rows = append(t.Rows, []string{"Title " + d, "Abstract of " + d, "Doe, A.", "2020-04-01", d})
	}
	return t
}

func labelsTable(pairs ...string) *tsv.Table {
	t := &tsv.Table{}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Rows = append(t.Rows, []string{pairs[i], pairs[i+1]})
	}
	return t
}

func TestJoinLeftOuter(t *testing.T) {
	pre := preprintsTable("10.1/a", "10.1/b", "10.1/c")
	labels := labelsTable("10.1/c", "Treatment", "10.1/a", "Epidemiology", "10.1/zzz", "Unused")

	res, err := Join(context.Background(), pre, labels, types.UnmatchedKeep)
	require.NoError(t, err)

	assert.Equal(t, types.LabeledColumns, res.Header)
	require.Len(t, res.Rows, len(pre.Rows))
	for i, row := range res.Rows {
		assert.Equal(t, pre.Rows[i], row[:len(row)-1], "non-label fields must be unchanged")
	}
	assert.Equal(t, "Epidemiology", res.Rows[0][5])
	assert.Equal(t, "", res.Rows[1][5])
	assert.Equal(t, "Treatment", res.Rows[2][5])

	assert.Equal(t, Summary{Preprints: 3, Labels: 3, Rows: 3, Unmatched: 1}, res.Summary)
}

func TestJoinRowCountIndependentOfLabels(t *testing.T) {
	pre := preprintsTable("10.1/a", "10.1/b")
	for _, labels := range []*tsv.Table{
		labelsTable(),
		labelsTable("10.1/x", "A"),
		labelsTable("10.1/a", "A", "10.1/b", "B"),
	} {
		res, err := Join(context.Background(), pre, labels, "")
		require.NoError(t, err)
		assert.Len(t, res.Rows, 2)
	}
}

func TestJoinDuplicateLabelsExpand(t *testing.T) {
	pre := preprintsTable("10.1/a", "10.1/b")
	labels := labelsTable("10.1/a", "X", "10.1/b", "Y", "10.1/a", "Z")

	res, err := Join(context.Background(), pre, labels, types.UnmatchedKeep)
	require.NoError(t, err)

	var got []string
	for _, r := range res.Rows {
		got = append(got, r[4]+"="+r[5])
	}
	assert.Equal(t, []string{"10.1/a=X", "10.1/a=Z", "10.1/b=Y"}, got)
}

func TestJoinPolicies(t *testing.T) {
	pre := preprintsTable("10.1/a", "10.1/b")
	labels := labelsTable("10.1/a", "A")

	res, err := Join(context.Background(), pre, labels, types.UnmatchedDrop)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Summary.Dropped)
	assert.Equal(t, 1, res.Summary.Unmatched)

	_, err = Join(context.Background(), pre, labels, types.UnmatchedReject)
	assert.ErrorIs(t, err, ErrUnmatched)
	assert.Contains(t, err.Error(), "10.1/b")

	_, err = Join(context.Background(), pre, labels, "ignore")
	assert.Error(t, err)
}

func TestJoinMissingDOIColumn(t *testing.T) {
	pre := &tsv.Table{Header: []string{"Title"}, Rows: [][]string{{"x"}}}
	_, err := Join(context.Background(), pre, labelsTable(), types.UnmatchedKeep)
	assert.ErrorIs(t, err, ErrMissingDOI)
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := types.MergeConfig{
		PreprintsFile: filepath.Join(dir, "preprints_by_dois.tsv"),
		LabelsFile:    filepath.Join(dir, "label_list.txt"),
		OutputFile:    filepath.Join(dir, "preprints.tsv"),
	}
	pre := "Title\tAbstract\tAuthors\tPublication Date\tDOI\n" +
		"T1\tAbs one\tA\t2020-01-01\t10.1/a\n" +
		"T2\tAbs two\tB\t2020-01-02\t10.1/b\n"
	require.NoError(t, os.WriteFile(cfg.PreprintsFile, []byte(pre), 0o644))
	require.NoError(t, os.WriteFile(cfg.LabelsFile, []byte("10.1/a\tA\n"), 0o644))

	var buf bytes.Buffer
	s, err := MergeFiles(context.Background(), cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, 1, s.Unmatched)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Title\tAbstract\tAuthors\tPublication Date\tDOI\tLabel", lines[0])
	assert.Equal(t, "T1\tAbs one\tA\t2020-01-01\t10.1/a\tA", lines[1])
	assert.Equal(t, "T2\tAbs two\tB\t2020-01-02\t10.1/b\t", lines[2])

	assert.Contains(t, buf.String(), "warning: 1 preprint(s) have no label")
	assert.Contains(t, buf.String(), "Merged data saved to")
}

func TestMergeFilesMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := MergeFiles(context.Background(), types.MergeConfig{
		PreprintsFile: filepath.Join(dir, "absent.tsv"),
		LabelsFile:    filepath.Join(dir, "labels.txt"),
		OutputFile:    filepath.Join(dir, "out.tsv"),
	}, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
