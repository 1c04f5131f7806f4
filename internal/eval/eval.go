// Package eval scores classifier predictions: accuracy, per-class
// precision/recall/F1, confusion matrices, and their heatmap rendering.
package eval

import (
	"fmt"
	"sort"
	"strings"
)

// ConfusionMatrix counts predictions per (actual, predicted) class pair.
// Counts[i][j] is the number of rows whose actual class is Classes[i] and
// predicted class is Classes[j].
type ConfusionMatrix struct {
	Classes []int
	Counts  [][]int
}

// ClassMetrics holds the per-class entries of a classification report.
type ClassMetrics struct {
	Class     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a classification report over all observed classes.
type Report struct {
	PerClass []ClassMetrics
	Accuracy float64
	MacroF1  float64
}

// Accuracy returns the fraction of predictions matching the actual labels.
func Accuracy(actual, predicted []int) (float64, error) {
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("actual has %d labels but predicted has %d", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return 0, fmt.Errorf("cannot compute accuracy of empty predictions")
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual)), nil
}

// NewConfusionMatrix builds a confusion matrix from actual and predicted
// labels. The class set is the sorted union of both label slices.
func NewConfusionMatrix(actual, predicted []int) (*ConfusionMatrix, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("actual has %d labels but predicted has %d", len(actual), len(predicted))
	}

	classSet := make(map[int]bool)
	for _, c := range actual {
		classSet[c] = true
	}
	for _, c := range predicted {
		classSet[c] = true
	}
	classes := make([]int, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := range actual {
		counts[index[actual[i]]][index[predicted[i]]]++
	}

	return &ConfusionMatrix{Classes: classes, Counts: counts}, nil
}

// ClassificationReport computes per-class precision, recall, F1 and support
// from a confusion matrix, plus overall accuracy and macro-averaged F1.
func ClassificationReport(cm *ConfusionMatrix) *Report {
	report := &Report{}

	total := 0
	correct := 0
	f1Sum := 0.0

	for i, class := range cm.Classes {
		tp := cm.Counts[i][i]
		support := 0
		predictedAs := 0
		for j := range cm.Classes {
			support += cm.Counts[i][j]     // actual class i
			predictedAs += cm.Counts[j][i] // predicted class i
		}
		total += support
		correct += tp

		var precision, recall, f1 float64
		if predictedAs > 0 {
			precision = float64(tp) / float64(predictedAs)
		}
		if support > 0 {
			recall = float64(tp) / float64(support)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		f1Sum += f1

		report.PerClass = append(report.PerClass, ClassMetrics{
			Class:     class,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		})
	}

	if total > 0 {
		report.Accuracy = float64(correct) / float64(total)
	}
	if len(cm.Classes) > 0 {
		report.MacroF1 = f1Sum / float64(len(cm.Classes))
	}
	return report
}

// Format renders the report as an aligned text table, naming classes with
// the provided function.
func (r *Report) Format(className func(int) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %9s %9s %9s %9s\n", "class", "precision", "recall", "f1", "support")
	for _, m := range r.PerClass {
		fmt.Fprintf(&b, "%-12s %9.3f %9.3f %9.3f %9d\n", className(m.Class), m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\naccuracy: %.4f  macro f1: %.4f\n", r.Accuracy, r.MacroF1)
	return b.String()
}

// Format renders the confusion matrix as an aligned text table with actual
// classes as rows and predicted classes as columns.
func (cm *ConfusionMatrix) Format(className func(int) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s", "actual\\pred")
	for _, c := range cm.Classes {
		fmt.Fprintf(&b, " %10s", className(c))
	}
	b.WriteByte('\n')
	for i, c := range cm.Classes {
		fmt.Fprintf(&b, "%-12s", className(c))
		for j := range cm.Classes {
			fmt.Fprintf(&b, " %10d", cm.Counts[i][j])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
