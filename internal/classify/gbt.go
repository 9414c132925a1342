// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// GradientBoosting is an ensemble of regression trees fit to the gradient
// of the logistic loss (two classes) or softmax loss (more than two).
// Splits are found by exact greedy search over every feature using the
// second-order gain with L2 regularization on leaf weights.
type GradientBoosting struct {
	Rounds         int
	MaxDepth       int
	LearningRate   float64
	Lambda         float64
	Gamma          float64
	MinChildWeight float64

	dim     int
	classes int
	outputs int
	trees   [][]*treeNode // [round][output]
	fitted  bool
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (n *treeNode) leaf() bool { return n.left == nil }

func (n *treeNode) eval(x []float64) float64 {
	for !n.leaf() {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// NewGradientBoosting returns a booster with 100 rounds of depth-6 trees,
// learning rate 0.3, lambda 1, gamma 0, and min child weight 1.
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		Rounds:         100,
		MaxDepth:       6,
		LearningRate:   0.3,
		Lambda:         1,
		Gamma:          0,
		MinChildWeight: 1,
	}
}

// Name returns the display name used in training output.
func (m *GradientBoosting) Name() string { return "XGBoost" }

// Fit grows Rounds trees per output on the training set.
func (m *GradientBoosting) Fit(X [][]float64, y []int) error {
	dim, classes, err := checkTraining(X, y)
	if err != nil {
		return err
	}
	m.dim, m.classes, m.trees, m.fitted = dim, max(classes, 2), nil, false
	m.outputs = 1
	if m.classes > 2 {
		m.outputs = m.classes
	}

	n := len(X)
	margins := make([][]float64, n)
	for i := range margins {
		margins[i] = make([]float64, m.outputs)
	}
	grad := make([][]float64, m.outputs)
	hess := make([][]float64, m.outputs)
	for k := range grad {
		grad[k] = make([]float64, n)
		hess[k] = make([]float64, n)
	}
	prob := make([]float64, m.outputs)
	b := &builder{m: m, X: X, left: make([]bool, n), sorted: presort(X, dim)}

	for r := 0; r < m.Rounds; r++ {
		for i := range X {
			if m.outputs == 1 {
				p := sigmoid(margins[i][0])
				grad[0][i] = p - indicator(y[i] == 1)
				hess[0][i] = math.Max(p*(1-p), 1e-16)
				continue
			}
			softmax(prob, margins[i])
			for k, p := range prob {
				grad[k][i] = p - indicator(y[i] == k)
				hess[k][i] = math.Max(2*p*(1-p), 1e-16)
			}
		}

		round := make([]*treeNode, m.outputs)
		for k := range round {
			b.grad, b.hess = grad[k], hess[k]
			round[k] = b.grow(b.sorted, 0)
		}
		for i, x := range X {
			for k, t := range round {
				margins[i][k] += t.eval(x)
			}
		}
		m.trees = append(m.trees, round)
	}
	m.fitted = true
	return nil
}

// builder grows one tree at a time. sorted[f] holds the node's rows
// ordered by feature f; splitting partitions every list stably so children
// stay sorted without re-sorting.
type builder struct {
	m          *GradientBoosting
	X          [][]float64
	grad, hess []float64
	left       []bool
	sorted     [][]int
}

func presort(X [][]float64, dim int) [][]int {
	sorted := make([][]int, dim)
	for f := range sorted {
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int { return cmp.Compare(X[a][f], X[b][f]) })
		sorted[f] = idx
	}
	return sorted
}

func (b *builder) grow(sorted [][]int, depth int) *treeNode {
	m := b.m
	idx := sorted[0]
	var g, h float64
	for _, i := range idx {
		g += b.grad[i]
		h += b.hess[i]
	}
	node := &treeNode{value: -g / (h + m.Lambda) * m.LearningRate}
	if depth >= m.MaxDepth || len(idx) < 2 {
		return node
	}

	parent := g * g / (h + m.Lambda)
	bestGain := 0.0
	bestFeature := -1
	var bestThreshold float64
	for f, order := range sorted {
		var gl, hl float64
		for j := 0; j < len(order)-1; j++ {
			gl += b.grad[order[j]]
			hl += b.hess[order[j]]
			lo, hi := b.X[order[j]][f], b.X[order[j+1]][f]
			if lo == hi {
				continue
			}
			gr, hr := g-gl, h-hl
			if hl < m.MinChildWeight || hr < m.MinChildWeight {
				continue
			}
			gain := 0.5*(gl*gl/(hl+m.Lambda)+gr*gr/(hr+m.Lambda)-parent) - m.Gamma
			if gain > bestGain {
				bestGain, bestFeature, bestThreshold = gain, f, (lo+hi)/2
			}
		}
	}
	if bestFeature < 0 {
		return node
	}

	for _, i := range idx {
		b.left[i] = b.X[i][bestFeature] < bestThreshold
	}
	left := make([][]int, len(sorted))
	right := make([][]int, len(sorted))
	for f, order := range sorted {
		for _, i := range order {
			if b.left[i] {
				left[f] = append(left[f], i)
			} else {
				right[f] = append(right[f], i)
			}
		}
	}
	node.feature = bestFeature
	node.threshold = bestThreshold
	node.left = b.grow(left, depth+1)
	node.right = b.grow(right, depth+1)
	return node
}

// Predict returns the most probable class for each row of X.
func (m *GradientBoosting) Predict(X [][]float64) ([]int, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := checkPredict(X, m.dim); err != nil {
		return nil, err
	}

	out := make([]int, len(X))
	margin := make([]float64, m.outputs)
	for r, x := range X {
		clear(margin)
		for _, round := range m.trees {
			for k, t := range round {
				margin[k] += t.eval(x)
			}
		}
		if m.outputs == 1 {
			if margin[0] > 0 {
				out[r] = 1
			}
			continue
		}
		out[r] = floats.MaxIdx(margin)
	}
	return out, nil
}

func indicator(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

func softmax(dst, z []float64) {
	top := floats.Max(z)
	var sum float64
	for k, v := range z {
		dst[k] = math.Exp(v - top)
		sum += dst[k]
	}
	floats.Scale(1/sum, dst)
}
