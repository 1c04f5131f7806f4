package prep

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes feature columns to zero mean and unit
// variance. Columns listed in Exclude keep their raw values; the gender
// column is the usual exclusion since it is categorical.
type StandardScaler struct {
	Mean    []float64
	Std     []float64
	Exclude []int
}

// NewStandardScaler creates a scaler that skips the given column indices.
func NewStandardScaler(exclude ...int) *StandardScaler {
	return &StandardScaler{Exclude: exclude}
}

func (s *StandardScaler) excluded(col int) bool {
	for _, e := range s.Exclude {
		if e == col {
			return true
		}
	}
	return false
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit scaler on empty matrix")
	}

	cols := len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	col := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		s.Mean[j] = mean
		if std == 0 {
			std = 1 // constant column, leave values at zero after centering
		}
		s.Std[j] = std
	}
	return nil
}

// Transform returns a standardized copy of X. Excluded columns are copied
// through unchanged.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if s.Mean == nil {
		return nil, fmt.Errorf("scaler has not been fitted")
	}

	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(s.Mean) {
			return nil, fmt.Errorf("row %d has %d columns, scaler was fitted on %d", i, len(row), len(s.Mean))
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			if s.excluded(j) {
				scaled[j] = v
				continue
			}
			scaled[j] = (v - s.Mean[j]) / s.Std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits the scaler and transforms X in one step.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
