// Package describe computes diagnostic statistics over the cleaned dataset:
// per-category feature summaries, a feature correlation matrix, and a
// pairplot. Nothing in this package feeds the model; it exists for humans
// reading the run output.
package describe

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"loyaltyml/internal/prep"
)

// GroupSummary holds mean/std/count for every feature within one category.
type GroupSummary struct {
	Category int
	Count    int
	Mean     []float64 // indexed like prep.FeatureNames
	Std      []float64
}

// GroupedSummary computes per-category mean, standard deviation and count
// for each feature column, ordered by category code.
func GroupedSummary(X [][]float64, y []int) ([]GroupSummary, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature matrix has %d rows but target has %d", len(X), len(y))
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("cannot summarize empty dataset")
	}

	byCategory := make(map[int][][]float64)
	for i, row := range X {
		byCategory[y[i]] = append(byCategory[y[i]], row)
	}

	categories := make([]int, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Ints(categories)

	cols := len(X[0])
	summaries := make([]GroupSummary, 0, len(categories))
	for _, c := range categories {
		group := byCategory[c]
		s := GroupSummary{
			Category: c,
			Count:    len(group),
			Mean:     make([]float64, cols),
			Std:      make([]float64, cols),
		}
		col := make([]float64, len(group))
		for j := 0; j < cols; j++ {
			for i, row := range group {
				col[i] = row[j]
			}
			s.Mean[j], s.Std[j] = stat.MeanStdDev(col, nil)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// CorrelationMatrix computes the pairwise Pearson correlation of the
// feature columns.
func CorrelationMatrix(X [][]float64) (*mat.SymDense, error) {
	if len(X) < 2 {
		return nil, fmt.Errorf("need at least 2 rows for correlation, got %d", len(X))
	}

	rows, cols := len(X), len(X[0])
	data := mat.NewDense(rows, cols, nil)
	for i, row := range X {
		data.SetRow(i, row)
	}

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, data, nil)
	return corr, nil
}

// FormatSummaries renders grouped summaries as an aligned text table.
func FormatSummaries(summaries []GroupSummary, className func(int) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %6s", "category", "count")
	for _, name := range prep.FeatureNames {
		fmt.Fprintf(&b, " %14s", name+" mean")
		fmt.Fprintf(&b, " %14s", name+" std")
	}
	b.WriteByte('\n')
	for _, s := range summaries {
		fmt.Fprintf(&b, "%-12s %6d", className(s.Category), s.Count)
		for j := range s.Mean {
			fmt.Fprintf(&b, " %14.3f %14.3f", s.Mean[j], s.Std[j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatCorrelation renders the correlation matrix as an aligned text table.
func FormatCorrelation(corr *mat.SymDense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s", "")
	for _, name := range prep.FeatureNames {
		fmt.Fprintf(&b, " %16s", name)
	}
	b.WriteByte('\n')
	for i, name := range prep.FeatureNames {
		fmt.Fprintf(&b, "%-16s", name)
		for j := range prep.FeatureNames {
			fmt.Fprintf(&b, " %16.3f", corr.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
