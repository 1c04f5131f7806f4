package prep

import (
	"fmt"
	"math"
	"math/rand"
)

// Split holds disjoint train/test partitions of a dataset.
type Split struct {
	XTrain, XTest [][]float64
	YTrain, YTest []int
	TrainIdx      []int
	TestIdx       []int
}

// TrainTestSplit partitions X and y into train/test subsets using a seeded
// permutation, so a fixed seed reproduces the exact same partition. The
// partitions are disjoint and together cover every input row.
func TrainTestSplit(X [][]float64, y []int, testFraction float64, seed int64) (Split, error) {
	if len(X) != len(y) {
		return Split{}, fmt.Errorf("feature matrix has %d rows but target has %d", len(X), len(y))
	}
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("test fraction must be in (0, 1), got %g", testFraction)
	}

	n := len(X)
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)

	nTest := int(math.Round(float64(n) * testFraction))
	if nTest == 0 && n > 1 {
		nTest = 1
	}

	s := Split{
		XTrain: make([][]float64, 0, n-nTest),
		XTest:  make([][]float64, 0, nTest),
		YTrain: make([]int, 0, n-nTest),
		YTest:  make([]int, 0, nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			s.XTest = append(s.XTest, X[idx])
			s.YTest = append(s.YTest, y[idx])
			s.TestIdx = append(s.TestIdx, idx)
		} else {
			s.XTrain = append(s.XTrain, X[idx])
			s.YTrain = append(s.YTrain, y[idx])
			s.TrainIdx = append(s.TrainIdx, idx)
		}
	}
	return s, nil
}
