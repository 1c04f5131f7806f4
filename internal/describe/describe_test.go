package describe

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func sampleData() ([][]float64, []int) {
	X := [][]float64{
		{30000, 2, 1, 0},
		{34000, 4, 2, 1},
		{32000, 3, 1, 0},
		{90000, 5, 4, 1},
		{96000, 3, 5, 0},
	}
	y := []int{1, 1, 1, 3, 3}
	return X, y
}

func TestGroupedSummary(t *testing.T) {
	X, y := sampleData()

	summaries, err := GroupedSummary(X, y)
	if err != nil {
		t.Fatalf("GroupedSummary failed: %v", err)
	}

	if len(summaries) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(summaries))
	}
	if summaries[0].Category != 1 || summaries[1].Category != 3 {
		t.Errorf("expected categories ordered 1,3, got %d,%d", summaries[0].Category, summaries[1].Category)
	}
	if summaries[0].Count != 3 || summaries[1].Count != 2 {
		t.Errorf("expected counts 3,2, got %d,%d", summaries[0].Count, summaries[1].Count)
	}

	// income mean for category 1: (30000+34000+32000)/3
	if math.Abs(summaries[0].Mean[0]-32000) > 1e-9 {
		t.Errorf("category 1 income mean: expected 32000, got %g", summaries[0].Mean[0])
	}
	// sample std of {30000, 34000, 32000} is 2000
	if math.Abs(summaries[0].Std[0]-2000) > 1e-9 {
		t.Errorf("category 1 income std: expected 2000, got %g", summaries[0].Std[0])
	}
	// household size mean for category 3: (5+3)/2
	if math.Abs(summaries[1].Mean[1]-4) > 1e-9 {
		t.Errorf("category 3 size mean: expected 4, got %g", summaries[1].Mean[1])
	}
}

func TestGroupedSummaryErrors(t *testing.T) {
	if _, err := GroupedSummary(nil, nil); err == nil {
		t.Error("expected error for empty dataset, got nil")
	}
	if _, err := GroupedSummary([][]float64{{1}}, []int{1, 2}); err == nil {
		t.Error("expected error for mismatched lengths, got nil")
	}
}

func TestCorrelationMatrix(t *testing.T) {
	// column 1 is exactly 2x column 0, column 2 is exactly -column 0
	X := [][]float64{
		{1, 2, -1, 0},
		{2, 4, -2, 1},
		{3, 6, -3, 0},
		{4, 8, -4, 1},
	}

	corr, err := CorrelationMatrix(X)
	if err != nil {
		t.Fatalf("CorrelationMatrix failed: %v", err)
	}

	if n := corr.SymmetricDim(); n != 4 {
		t.Fatalf("expected 4x4 matrix, got %dx%d", n, n)
	}
	for i := 0; i < 4; i++ {
		if math.Abs(corr.At(i, i)-1) > 1e-9 {
			t.Errorf("diagonal [%d][%d]: expected 1, got %g", i, i, corr.At(i, i))
		}
	}
	if math.Abs(corr.At(0, 1)-1) > 1e-9 {
		t.Errorf("perfectly correlated columns: expected 1, got %g", corr.At(0, 1))
	}
	if math.Abs(corr.At(0, 2)+1) > 1e-9 {
		t.Errorf("perfectly anti-correlated columns: expected -1, got %g", corr.At(0, 2))
	}
	if math.Abs(corr.At(0, 1)-corr.At(1, 0)) > 1e-12 {
		t.Error("correlation matrix is not symmetric")
	}
}

func TestCorrelationMatrixTooFewRows(t *testing.T) {
	if _, err := CorrelationMatrix([][]float64{{1, 2}}); err == nil {
		t.Error("expected error for single-row input, got nil")
	}
}

func TestFormatSummaries(t *testing.T) {
	X, y := sampleData()
	summaries, err := GroupedSummary(X, y)
	if err != nil {
		t.Fatalf("GroupedSummary failed: %v", err)
	}

	name := func(c int) string { return "tier" + strconv.Itoa(c) }
	out := FormatSummaries(summaries, name)

	if !strings.Contains(out, "tier1") || !strings.Contains(out, "tier3") {
		t.Errorf("formatted table missing group names:\n%s", out)
	}
	if !strings.Contains(out, "householdincome mean") {
		t.Errorf("formatted table missing feature headers:\n%s", out)
	}
}

func TestSavePairplot(t *testing.T) {
	X, y := sampleData()

	path := filepath.Join(t.TempDir(), "pairplot.png")
	name := func(c int) string { return strconv.Itoa(c) }
	if err := SavePairplot(X, y, path, name); err != nil {
		t.Fatalf("SavePairplot failed: %v", err)
	}
}

func TestSavePairplotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairplot.png")
	if err := SavePairplot(nil, nil, path, nil); err == nil {
		t.Error("expected error for empty dataset, got nil")
	}
}
