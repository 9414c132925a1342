// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// LinearSVM is a linear-kernel soft-margin SVM. Multiclass problems are
// decomposed one-vs-one; prediction takes the class with most pairwise
// votes, ties going to the lower class.
//
// Each binary problem is solved in the dual by coordinate descent on the
// hinge loss, with the bias folded in as a constant feature.
type LinearSVM struct {
	// C is the penalty on margin violations.
	C float64
	// MaxIter bounds the passes over the training set per binary problem.
	MaxIter int
	// Tol stops a pass once the projected gradient spread falls below it.
	Tol float64
	// Seed orders the coordinate updates.
	Seed uint64

	dim     int
	classes int
	only    int
	pairs   []svmPair
	fitted  bool
}

type svmPair struct {
	pos, neg int
	w        []float64 // dim weights followed by the bias
}

// NewLinearSVM returns an SVM with C=1.
func NewLinearSVM() *LinearSVM {
	return &LinearSVM{C: 1, MaxIter: 1000, Tol: 1e-4, Seed: 42}
}

// Name returns the display name used in training output.
func (m *LinearSVM) Name() string { return "SVM" }

// Fit trains one binary model per pair of classes present in y.
func (m *LinearSVM) Fit(X [][]float64, y []int) error {
	dim, classes, err := checkTraining(X, y)
	if err != nil {
		return err
	}
	m.dim, m.classes, m.pairs, m.fitted = dim, classes, nil, false

	byClass := make([][]int, classes)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	var present []int
	for c, idx := range byClass {
		if len(idx) > 0 {
			present = append(present, c)
		}
	}
	m.only = present[0]

	for a := 0; a < len(present); a++ {
		for b := a + 1; b < len(present); b++ {
			pos, neg := present[a], present[b]
			var xs [][]float64
			var signs []float64
			for _, i := range byClass[pos] {
				xs = append(xs, augment(X[i]))
				signs = append(signs, 1)
			}
			for _, i := range byClass[neg] {
				xs = append(xs, augment(X[i]))
				signs = append(signs, -1)
			}
			m.pairs = append(m.pairs, svmPair{pos: pos, neg: neg, w: m.solve(xs, signs)})
		}
	}
	m.fitted = true
	return nil
}

func augment(x []float64) []float64 {
	out := make([]float64, len(x)+1)
	copy(out, x)
	out[len(x)] = 1
	return out
}

// solve runs dual coordinate descent for min 1/2|w|^2 + C*sum(hinge).
func (m *LinearSVM) solve(xs [][]float64, signs []float64) []float64 {
	n := len(xs)
	w := make([]float64, len(xs[0]))
	alpha := make([]float64, n)
	qii := make([]float64, n)
	for i, x := range xs {
		qii[i] = floats.Dot(x, x)
	}

	rng := rand.New(rand.NewPCG(m.Seed, m.Seed))
	for iter := 0; iter < m.MaxIter; iter++ {
		maxPG, minPG := math.Inf(-1), math.Inf(1)
		for _, i := range rng.Perm(n) {
			g := signs[i]*floats.Dot(w, xs[i]) - 1
			pg := g
			switch {
			case alpha[i] == 0:
				pg = math.Min(g, 0)
			case alpha[i] == m.C:
				pg = math.Max(g, 0)
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)

			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				alpha[i] = math.Min(math.Max(alpha[i]-g/qii[i], 0), m.C)
				floats.AddScaled(w, (alpha[i]-old)*signs[i], xs[i])
			}
		}
		if maxPG-minPG < m.Tol {
			break
		}
	}
	return w
}

// Predict returns the voted class for each row of X.
func (m *LinearSVM) Predict(X [][]float64) ([]int, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, m.dim); err != nil {
		return nil, err
	}

	out := make([]int, len(X))
	votes := make([]int, m.classes)
	for r, x := range X {
		if len(m.pairs) == 0 {
			out[r] = m.only
			continue
		}
		clear(votes)
		for _, p := range m.pairs {
			if floats.Dot(p.w[:m.dim], x)+p.w[m.dim] > 0 {
				votes[p.pos]++
			} else {
				votes[p.neg]++
			}
		}
		best := 0
		for c, v := range votes {
			if v > votes[best] {
				best = c
			}
		}
		out[r] = best
	}
	return out, nil
}
