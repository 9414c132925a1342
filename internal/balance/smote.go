// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package balance rebalances class frequencies by synthetic minority
// oversampling (SMOTE): new feature vectors are interpolated between a class
// member and one of its nearest same-class neighbors until every class
// reaches the majority count.
package balance

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmpty is returned when there is nothing to resample.
var ErrEmpty = errors.New("no samples to balance")

// DefaultSeed matches the seed the split step uses.
const DefaultSeed uint64 = 42

// SMOTE holds oversampling parameters.
type SMOTE struct {
	// KNeighbors is the neighbor count per class. Zero derives it from the
	// class counts with KNeighbors.
	KNeighbors int

	// Seed makes the synthetic samples reproducible.
	Seed uint64
}

// Counts returns the number of samples per label.
func Counts(y []int) map[int]int {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	return counts
}

// KNeighbors returns max(minority count - 1, 1).
func KNeighbors(counts map[int]int) int {
	minCount := 0
	for _, n := range counts {
		if minCount == 0 || n < minCount {
			minCount = n
		}
	}
	return max(minCount-1, 1)
}

// Resample returns X and y followed by synthetic samples that bring every
// class up to the majority count. Synthetic samples are appended class by
// class in ascending label order. Inputs are not modified.
//
// The neighbor count is clamped to the class size minus one; a class with
// a single member is oversampled with copies of that member.
func (s SMOTE) Resample(X [][]float64, y []int) ([][]float64, []int, error) {
	if len(X) == 0 {
		return nil, nil, ErrEmpty
	}
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("feature rows %d do not match labels %d", len(X), len(y))
	}
	dim := len(X[0])
	for i, row := range X {
		if len(row) != dim {
			return nil, nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(row), dim)
		}
	}

	counts := Counts(y)
	k := s.KNeighbors
	if k <= 0 {
		k = KNeighbors(counts)
	}
	maxCount := 0
	labels := make([]int, 0, len(counts))
	for label, n := range counts {
		labels = append(labels, label)
		maxCount = max(maxCount, n)
	}
	sort.Ints(labels)

	outX := append(make([][]float64, 0, maxCount*len(labels)), X...)
	outY := append(make([]int, 0, maxCount*len(labels)), y...)

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
	for _, label := range labels {
		need := maxCount - counts[label]
		if need == 0 {
			continue
		}

		var members [][]float64
		for i, l := range y {
			if l == label {
				members = append(members, X[i])
			}
		}
		neighbors := nearest(members, min(k, len(members)-1))

		for range need {
			i := rng.IntN(len(members))
			x := members[i]
			synth := make([]float64, dim)
			if len(neighbors[i]) == 0 {
				copy(synth, x)
			} else {
				nn := members[neighbors[i][rng.IntN(len(neighbors[i]))]]
				diff := floats.SubTo(make([]float64, dim), nn, x)
				floats.AddScaledTo(synth, x, rng.Float64(), diff)
			}
			outX = append(outX, synth)
			outY = append(outY, label)
		}
	}
	return outX, outY, nil
}

// nearest returns, for each point, the indices of its k closest other
// points by Euclidean distance. Ties keep the lower index first.
func nearest(points [][]float64, k int) [][]int {
	out := make([][]int, len(points))
	if k <= 0 {
		return out
	}
	for i, p := range points {
		type cand struct {
			idx  int
			dist float64
		}
		cands := make([]cand, 0, len(points)-1)
		for j, q := range points {
			if j != i {
				cands = append(cands, cand{j, floats.Distance(p, q, 2)})
			}
		}
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
		for _, c := range cands[:k] {
			out[i] = append(out[i], c.idx)
		}
	}
	return out
}
