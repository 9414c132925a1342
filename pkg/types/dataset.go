// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Split holds the train and test partitions of a balanced feature set.
// Classes maps an encoded label back to its string form.
type Split struct {
	XTrain  [][]float64
	XTest   [][]float64
	YTrain  []int
	YTest   []int
	Classes []string
}

// DatasetManifest describes a feature dataset written by the build stage.
// It is stored next to train.tsv and test.tsv as dataset.yaml.
type DatasetManifest struct {
	// RunID identifies the build run that produced the files.
	RunID string `json:"run_id" yaml:"run_id"`

	// Source is the labeled dataset file the features were built from.
	Source string `json:"source" yaml:"source"`

	// CreatedAt is the build time in UTC.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Embedder names the embedding backend and model.
	Embedder string `json:"embedder" yaml:"embedder"`

	// Dimension is the length of every feature vector.
	Dimension int `json:"dimension" yaml:"dimension"`

	// Classes lists label strings by encoded index.
	Classes []string `json:"classes" yaml:"classes"`

	// CountsBefore and CountsAfter are per-class sample counts around balancing.
	CountsBefore map[string]int `json:"counts_before" yaml:"counts_before"`
	CountsAfter  map[string]int `json:"counts_after" yaml:"counts_after"`

	// KNeighbors is the neighbor count used for synthetic oversampling.
	KNeighbors int `json:"k_neighbors" yaml:"k_neighbors"`

	// Seed drives both oversampling and the train/test split.
	Seed uint64 `json:"seed" yaml:"seed"`

	// TestSize is the held-out fraction.
	TestSize float64 `json:"test_size" yaml:"test_size"`

	TrainRows int `json:"train_rows" yaml:"train_rows"`
	TestRows  int `json:"test_rows" yaml:"test_rows"`

	// DroppedUnlabeled counts input rows removed for having no label.
	DroppedUnlabeled int `json:"dropped_unlabeled" yaml:"dropped_unlabeled"`
}
