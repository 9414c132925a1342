// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify provides the two classifiers the trainer fits on
// embedded abstracts: a linear-kernel support vector machine and
// gradient-boosted decision trees. Labels are dense integers 0..k-1.
package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("classifier is not fitted")

// Classifier maps feature vectors to integer labels.
type Classifier interface {
	Name() string
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
}

// Model names accepted by New.
const (
	ModelSVM = "svm"
	ModelGBT = "gbt"
)

// DefaultModels is the order the trainer fits models in.
var DefaultModels = []string{ModelSVM, ModelGBT}

// New returns an unfitted classifier with default settings.
func New(name string) (Classifier, error) {
	switch strings.ToLower(name) {
	case ModelSVM:
		return NewLinearSVM(), nil
	case ModelGBT, "xgboost":
		return NewGradientBoosting(), nil
	default:
		return nil, fmt.Errorf("unknown model %q: use svm or gbt", name)
	}
}

// checkTraining validates a training set and returns its dimension and the
// number of classes (largest label + 1).
func checkTraining(X [][]float64, y []int) (dim, classes int, err error) {
	if len(X) == 0 {
		return 0, 0, errors.New("empty training set")
	}
	if len(X) != len(y) {
		return 0, 0, fmt.Errorf("feature rows %d do not match labels %d", len(X), len(y))
	}
	dim = len(X[0])
	if dim == 0 {
		return 0, 0, errors.New("training rows have no features")
	}
	for i, row := range X {
		if len(row) != dim {
			return 0, 0, fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
		if y[i] < 0 {
			return 0, 0, fmt.Errorf("row %d has negative label %d", i, y[i])
		}
		classes = max(classes, y[i]+1)
	}
	return dim, classes, nil
}

func checkPredict(X [][]float64, dim int) error {
	for i, row := range X {
		if len(row) != dim {
			return fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
	}
	return nil
}
