// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultTestSize is the held-out fraction.
const DefaultTestSize = 0.2

// Split partitions X and y into train and test sets using a seeded
// permutation. The test partition holds ceil(testSize*n) rows and the train
// partition the rest. The same seed always yields the same partitions.
func Split(X [][]float64, y []int, testSize float64, seed uint64) (xTrain, xTest [][]float64, yTrain, yTest []int, err error) {
	n := len(X)
	if n != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("feature rows %d do not match labels %d", n, len(y))
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test size %v must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, nil, nil, nil, fmt.Errorf("cannot split %d rows with test size %v", n, testSize)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	for _, i := range perm[:nTest] {
		xTest = append(xTest, X[i])
		yTest = append(yTest, y[i])
	}
	for _, i := range perm[nTest:] {
		xTrain = append(xTrain, X[i])
		yTrain = append(yTrain, y[i])
	}
	return xTrain, xTest, yTrain, yTest, nil
}
