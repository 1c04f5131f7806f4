// Package prep turns cleaned customer rows into model-ready matrices:
// feature extraction, a seeded train/test split, and per-split
// standardization that leaves the categorical gender column untouched.
package prep

import (
	"fmt"

	"loyaltyml/internal/dataset"
)

// FeatureNames lists the model features in column order.
var FeatureNames = []string{"householdincome", "householdsize", "educationlevel", "gender"}

// GenderColumn is the index of the binary gender feature, which is
// categorical and must not be standardized.
const GenderColumn = 3

// Matrix extracts the feature matrix and target vector from cleaned rows.
// The customer id is deliberately excluded from the features. Rows must
// have been through dataset.Clean; a nil income is an error here.
func Matrix(rows []dataset.Row) ([][]float64, []int, error) {
	X := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i, r := range rows {
		if r.Income == nil {
			return nil, nil, fmt.Errorf("row with custid %d has null income, dataset not cleaned", r.ID)
		}
		X[i] = []float64{*r.Income, r.HouseholdSize, r.Education, float64(r.Gender)}
		y[i] = r.Category
	}
	return X, y, nil
}
