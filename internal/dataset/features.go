// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/preprint-classifier/internal/tsv"
	"github.com/pdiddy/preprint-classifier/pkg/types"
)

// File names inside a features directory.
const (
	TrainFile    = "train.tsv"
	TestFile     = "test.tsv"
	ManifestFile = "dataset.yaml"
)

const labelColumn = "label"

// WriteFeatures stores the split and manifest under dir. Each partition row
// is the label string followed by the feature components.
func WriteFeatures(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	s := res.Split
	header := featureHeader(res.Manifest.Dimension)
	if err := writePartition(filepath.Join(dir, TrainFile), header, s.XTrain, s.YTrain, s.Classes); err != nil {
		return err
	}
	if err := writePartition(filepath.Join(dir, TestFile), header, s.XTest, s.YTest, s.Classes); err != nil {
		return err
	}

	data, err := yaml.Marshal(res.Manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}

func featureHeader(dim int) []string {
	h := make([]string, 0, dim+1)
	h = append(h, labelColumn)
	for i := range dim {
		h = append(h, "f"+strconv.Itoa(i))
	}
	return h
}

func writePartition(path string, header []string, X [][]float64, y []int, classes []string) error {
	rows := make([][]string, len(X))
	for i, vec := range X {
		row := make([]string, 0, len(vec)+1)
		row = append(row, classes[y[i]])
		for _, v := range vec {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		rows[i] = row
	}
	return tsv.WriteFile(path, header, rows)
}

// ReadFeatures loads a features directory written by WriteFeatures.
func ReadFeatures(dir string) (types.Split, types.DatasetManifest, error) {
	var m types.DatasetManifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return types.Split{}, m, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return types.Split{}, m, fmt.Errorf("parsing manifest: %w", err)
	}

	index := make(map[string]int, len(m.Classes))
	for i, c := range m.Classes {
		index[c] = i
	}

	s := types.Split{Classes: m.Classes}
	s.XTrain, s.YTrain, err = readPartition(filepath.Join(dir, TrainFile), m.Dimension, index)
	if err != nil {
		return types.Split{}, m, err
	}
	s.XTest, s.YTest, err = readPartition(filepath.Join(dir, TestFile), m.Dimension, index)
	if err != nil {
		return types.Split{}, m, err
	}
	return s, m, nil
}

func readPartition(path string, dim int, index map[string]int) ([][]float64, []int, error) {
	tbl, err := tsv.ReadFile(path, true, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(tbl.Header) != dim+1 {
		return nil, nil, fmt.Errorf("%s: %d columns, want %d", path, len(tbl.Header), dim+1)
	}

	X := make([][]float64, len(tbl.Rows))
	y := make([]int, len(tbl.Rows))
	for i, row := range tbl.Rows {
		code, ok := index[row[0]]
		if !ok {
			return nil, nil, fmt.Errorf("%s row %d: label %q not in manifest", path, i+1, row[0])
		}
		y[i] = code
		vec := make([]float64, dim)
		for j, cellValue := range row[1:] {
			v, err := strconv.ParseFloat(cellValue, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
			}
			vec[j] = v
		}
		X[i] = vec
	}
	return X, y, nil
}
