// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/preprint-classifier/internal/balance"
	"github.com/pdiddy/preprint-classifier/internal/embed"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

const testVectors = `virus 1 0 0
vaccine 0 1 0
mask 0 0 1
trial 0.5 0.5 0
`

const labeledTSV = "Title\tAbstract\tAuthors\tPublication Date\tDOI\tLabel\n" +
	"T1\tA virus study\tX\t2020-01-01\t10.1/a\tA\n" +
	"T2\tAnother virus trial\tY\t2020-01-02\t10.1/b\tA\n" +
	"T3\tA vaccine mask study\tZ\t2020-01-03\t10.1/c\tB\n"

func testModel(t *testing.T) *embed.VectorModel {
	t.Helper()
	m, err := embed.ReadVectors(strings.NewReader(testVectors))
	require.NoError(t, err)
	return m
}

func writeLabeled(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preprints.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLabelEncoderBijection(t *testing.T) {
	labels := []string{"Treatment", "Epidemiology", "Treatment", "Diagnosis", ""}
	enc := NewLabelEncoder(labels)

	assert.Equal(t, []string{"", "Diagnosis", "Epidemiology", "Treatment"}, enc.Classes())

	codes, err := enc.Transform(labels)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 3, 1, 0}, codes)

	back, err := enc.Inverse(codes)
	require.NoError(t, err)
	assert.Equal(t, labels, back)

	again := NewLabelEncoder(labels)
	codes2, err := again.Transform(labels)
	require.NoError(t, err)
	assert.Equal(t, codes, codes2, "refitting the same input yields the same mapping")
}

func TestLabelEncoderErrors(t *testing.T) {
	enc := NewLabelEncoder([]string{"A"})
	_, err := enc.Transform([]string{"B"})
	assert.Error(t, err)
	_, err = enc.Inverse([]int{1})
	assert.Error(t, err)
}

func TestSplitDisjointAndDeterministic(t *testing.T) {
	X := make([][]float64, 10)
	y := make([]int, 10)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = i % 2
	}

	xTrain, xTest, yTrain, yTest, err := Split(X, y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, xTrain, 8)
	assert.Len(t, xTest, 2)
	assert.Len(t, yTrain, 8)
	assert.Len(t, yTest, 2)

	var all []int
	for _, v := range append(append([][]float64{}, xTrain...), xTest...) {
		all = append(all, int(v[0]))
	}
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, all)

	for i, v := range xTrain {
		assert.Equal(t, int(v[0])%2, yTrain[i], "labels stay paired with features")
	}

	xTrain2, xTest2, _, _, err := Split(X, y, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, xTrain, xTrain2)
	assert.Equal(t, xTest, xTest2)
}

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		n, wantTrain, wantTest int
	}{
		{4, 3, 1},
		{5, 4, 1},
		{7, 5, 2},
		{100, 80, 20},
	}
	for _, tt := range tests {
		X := make([][]float64, tt.n)
		y := make([]int, tt.n)
		for i := range X {
			X[i] = []float64{float64(i)}
		}
		xTrain, xTest, _, _, err := Split(X, y, DefaultTestSize, 42)
		require.NoError(t, err)
		assert.Len(t, xTrain, tt.wantTrain, "n=%d", tt.n)
		assert.Len(t, xTest, tt.wantTest, "n=%d", tt.n)
	}
}

func TestSplitErrors(t *testing.T) {
	_, _, _, _, err := Split([][]float64{{1}}, []int{0}, 0.2, 42)
	assert.Error(t, err)
	_, _, _, _, err = Split([][]float64{{1}, {2}}, []int{0}, 0.2, 42)
	assert.Error(t, err)
	_, _, _, _, err = Split([][]float64{{1}, {2}}, []int{0, 1}, 1.5, 42)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	records, err := Load(writeLabeled(t, labeledTSV))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, types.Record{
		DOI: "10.1/c", Title: "T3", Abstract: "A vaccine mask study",
		Authors: "Z", PublicationDate: "2020-01-03", Label: "B",
	}, records[2])
}

func TestLoadFillsMissingCells(t *testing.T) {
	records, err := Load(writeLabeled(t, "Abstract\tLabel\nonly abstract\n\tB\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "", records[0].Label)
	assert.Equal(t, "", records[1].Abstract)
	assert.Equal(t, "", records[1].DOI)
}

func TestLoadMissingColumn(t *testing.T) {
	_, err := Load(writeLabeled(t, "Title\tAbstract\nT\tA\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestBuildThreeRowScenario(t *testing.T) {
	records, err := Load(writeLabeled(t, labeledTSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	cfg := types.BuildConfig{InputFile: "preprints.tsv", TestSize: 0.2, Seed: 42}
	res, err := Build(context.Background(), records, testModel(t), cfg, &buf)
	require.NoError(t, err)

	s := res.Split
	assert.Equal(t, []string{"A", "B"}, s.Classes)
	assert.Len(t, s.XTrain, 3)
	assert.Len(t, s.XTest, 1)

	all := append(append([]int{}, s.YTrain...), s.YTest...)
	assert.Equal(t, map[int]int{0: 2, 1: 2}, balance.Counts(all))

	m := res.Manifest
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, m.CountsBefore)
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, m.CountsAfter)
	assert.Equal(t, 1, m.KNeighbors)
	assert.Equal(t, 3, m.Dimension)
	assert.Equal(t, 3, m.TrainRows)
	assert.Equal(t, 1, m.TestRows)
	assert.NotEmpty(t, m.RunID)
	assert.Equal(t, "vectors", m.Embedder)

	assert.Contains(t, buf.String(), "Class distribution: A=2, B=1")
	assert.Contains(t, buf.String(), "Balanced distribution: A=2, B=2")

	// Same seed, same split.
	again, err := Build(context.Background(), records, testModel(t), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, s.XTrain, again.Split.XTrain)
	assert.Equal(t, s.YTest, again.Split.YTest)
}

func TestBuildUnlabeledRows(t *testing.T) {
	content := labeledTSV +
		"T4\tvirus again\tW\t2020-01-04\t10.1/d\tA\n" +
		"T5\tmask\tV\t2020-01-05\t10.1/e\t\n"
	records, err := Load(writeLabeled(t, content))
	require.NoError(t, err)

	var buf bytes.Buffer
	res, err := Build(context.Background(), records, testModel(t), types.BuildConfig{Seed: 42}, &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, res.Split.Classes)
	assert.Equal(t, 1, res.Manifest.DroppedUnlabeled)
	assert.Contains(t, buf.String(), "dropped 1 row(s) without a label")

	res, err = Build(context.Background(), records, testModel(t), types.BuildConfig{Seed: 42, KeepUnlabeled: true}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "A", "B"}, res.Split.Classes)
	assert.Equal(t, map[string]int{"": 3, "A": 3, "B": 3}, res.Manifest.CountsAfter)
}

func TestBuildNoLabels(t *testing.T) {
	records := []types.Record{{Abstract: "virus"}}
	_, err := Build(context.Background(), records, testModel(t), types.BuildConfig{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestProcessFileMissingModel(t *testing.T) {
	cfg := types.BuildConfig{
		InputFile: writeLabeled(t, labeledTSV),
		Embed:     types.EmbedConfig{Backend: types.EmbedVectors, ModelPath: filepath.Join(t.TempDir(), "absent.txt")},
	}
	_, err := ProcessFile(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, embed.ErrModelNotFound)
}

func TestProcessFileAndFeaturesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "vectors.txt")
	require.NoError(t, os.WriteFile(modelPath, []byte(testVectors), 0o644))

	cfg := types.BuildConfig{
		InputFile: writeLabeled(t, labeledTSV),
		Embed:     types.EmbedConfig{Backend: types.EmbedVectors, ModelPath: modelPath},
		TestSize:  0.2,
		Seed:      42,
	}
	res, err := ProcessFile(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "vectors:vectors.txt", res.Manifest.Embedder)

	outDir := filepath.Join(dir, "features")
	require.NoError(t, WriteFeatures(outDir, res))

	s, m, err := ReadFeatures(outDir)
	require.NoError(t, err)
	assert.Equal(t, res.Split, s)
	assert.Equal(t, res.Manifest.RunID, m.RunID)
	assert.Equal(t, res.Manifest.CountsAfter, m.CountsAfter)

	header, err := os.ReadFile(filepath.Join(outDir, TrainFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(header), "label\tf0\tf1\tf2\n"))
}

func TestReadFeaturesMissingDir(t *testing.T) {
	_, _, err := ReadFeatures(filepath.Join(t.TempDir(), "none"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatDistribution(t *testing.T) {
	assert.Equal(t, `""=1, A=4`, FormatDistribution(map[int]int{1: 4, 0: 1}, []string{"", "A"}))
	assert.Equal(t, "", FormatDistribution(nil, nil))
}
