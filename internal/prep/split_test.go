package prep

import (
	"math"
	"math/rand"
	"testing"
)

func makeDataset(n int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(1))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{rng.Float64() * 100000, float64(rng.Intn(6) + 1), float64(rng.Intn(5) + 1), float64(rng.Intn(2))}
		y[i] = rng.Intn(5) + 1
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	X, y := makeDataset(200)

	s, err := TrainTestSplit(X, y, 0.25, 77)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if got := len(s.XTest); got != 50 {
		t.Errorf("expected 50 test rows, got %d", got)
	}
	if got := len(s.XTrain); got != 150 {
		t.Errorf("expected 150 train rows, got %d", got)
	}
	if len(s.XTrain) != len(s.YTrain) || len(s.XTest) != len(s.YTest) {
		t.Error("feature and label partition sizes disagree")
	}
}

func TestTrainTestSplitDisjointExhaustive(t *testing.T) {
	X, y := makeDataset(101)

	s, err := TrainTestSplit(X, y, 0.25, 77)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	nTest := int(math.Round(101 * 0.25))
	if len(s.TestIdx) != nTest {
		t.Errorf("expected %d test rows, got %d", nTest, len(s.TestIdx))
	}

	seen := make(map[int]int)
	for _, idx := range s.TrainIdx {
		seen[idx]++
	}
	for _, idx := range s.TestIdx {
		seen[idx]++
	}
	if len(seen) != 101 {
		t.Errorf("partitions do not cover all %d rows, covered %d", 101, len(seen))
	}
	for idx, count := range seen {
		if count != 1 {
			t.Errorf("row %d appears in %d partitions", idx, count)
		}
	}
}

func TestTrainTestSplitReproducible(t *testing.T) {
	X, y := makeDataset(80)

	a, err := TrainTestSplit(X, y, 0.25, 77)
	if err != nil {
		t.Fatalf("first split failed: %v", err)
	}
	b, err := TrainTestSplit(X, y, 0.25, 77)
	if err != nil {
		t.Fatalf("second split failed: %v", err)
	}

	for i := range a.TestIdx {
		if a.TestIdx[i] != b.TestIdx[i] {
			t.Fatalf("seeded splits differ at test position %d: %d vs %d", i, a.TestIdx[i], b.TestIdx[i])
		}
	}
	for i := range a.TrainIdx {
		if a.TrainIdx[i] != b.TrainIdx[i] {
			t.Fatalf("seeded splits differ at train position %d: %d vs %d", i, a.TrainIdx[i], b.TrainIdx[i])
		}
	}

	// A different seed produces a different partition
	c, err := TrainTestSplit(X, y, 0.25, 78)
	if err != nil {
		t.Fatalf("third split failed: %v", err)
	}
	same := true
	for i := range a.TestIdx {
		if a.TestIdx[i] != c.TestIdx[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical test partitions")
	}
}

func TestTrainTestSplitInvalidInputs(t *testing.T) {
	X, y := makeDataset(10)

	if _, err := TrainTestSplit(X, y[:5], 0.25, 77); err == nil {
		t.Error("expected error for mismatched lengths, got nil")
	}
	if _, err := TrainTestSplit(X, y, 0, 77); err == nil {
		t.Error("expected error for zero test fraction, got nil")
	}
	if _, err := TrainTestSplit(X, y, 1, 77); err == nil {
		t.Error("expected error for test fraction of 1, got nil")
	}
}
