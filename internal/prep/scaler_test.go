package prep

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"loyaltyml/internal/dataset"
)

const tolerance = 1e-9

func TestStandardScalerMeanStd(t *testing.T) {
	X, _ := makeDataset(150)

	scaler := NewStandardScaler(GenderColumn)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	col := make([]float64, len(scaled))
	for j := 0; j < GenderColumn; j++ {
		for i := range scaled {
			col[i] = scaled[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if math.Abs(mean) > tolerance {
			t.Errorf("column %d: expected mean ~0, got %g", j, mean)
		}
		if math.Abs(std-1) > tolerance {
			t.Errorf("column %d: expected std ~1, got %g", j, std)
		}
	}
}

func TestStandardScalerPreservesGender(t *testing.T) {
	X, _ := makeDataset(100)

	scaler := NewStandardScaler(GenderColumn)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	for i := range X {
		if scaled[i][GenderColumn] != X[i][GenderColumn] {
			t.Fatalf("row %d: gender column changed from %g to %g", i, X[i][GenderColumn], scaled[i][GenderColumn])
		}
	}
}

func TestStandardScalerDoesNotMutateInput(t *testing.T) {
	X, _ := makeDataset(20)
	original := X[0][0]

	scaler := NewStandardScaler(GenderColumn)
	if _, err := scaler.FitTransform(X); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	if X[0][0] != original {
		t.Error("scaler mutated the input matrix")
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	X := [][]float64{
		{5, 1, 2, 0},
		{5, 3, 4, 1},
		{5, 2, 6, 0},
	}

	scaler := NewStandardScaler(GenderColumn)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// Constant column centers to zero instead of dividing by zero
	for i := range scaled {
		if scaled[i][0] != 0 {
			t.Errorf("row %d: expected 0 for constant column, got %g", i, scaled[i][0])
		}
	}
}

func TestStandardScalerErrors(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit(nil); err == nil {
		t.Error("expected error fitting on empty matrix, got nil")
	}
	if _, err := scaler.Transform([][]float64{{1, 2}}); err == nil {
		t.Error("expected error transforming with unfitted scaler, got nil")
	}

	if err := scaler.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := scaler.Transform([][]float64{{1, 2, 3}}); err == nil {
		t.Error("expected error for column count mismatch, got nil")
	}
}

func TestMatrix(t *testing.T) {
	income := 52000.0
	rows := []dataset.Row{
		{ID: 1, Category: 3, Income: &income, HouseholdSize: 4, Education: 2, Gender: 1},
	}

	X, y, err := Matrix(rows)
	if err != nil {
		t.Fatalf("Matrix failed: %v", err)
	}
	if len(X) != 1 || len(y) != 1 {
		t.Fatalf("expected 1 row, got %d/%d", len(X), len(y))
	}

	want := []float64{52000, 4, 2, 1}
	for j, v := range want {
		if X[0][j] != v {
			t.Errorf("feature %d: expected %g, got %g", j, v, X[0][j])
		}
	}
	if y[0] != 3 {
		t.Errorf("expected target 3, got %d", y[0])
	}
}

func TestMatrixRejectsNullIncome(t *testing.T) {
	rows := []dataset.Row{{ID: 1, Category: 1, Income: nil}}

	if _, _, err := Matrix(rows); err == nil {
		t.Error("expected error for null income, got nil")
	}
}
