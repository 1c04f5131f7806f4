// Package report writes the run artifacts of a pipeline execution: a
// human-readable summary, a JSON report, and a CSV of grid-search results.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"loyaltyml/internal/dataset"
	"loyaltyml/internal/eval"
	"loyaltyml/internal/knn"
	"loyaltyml/internal/tune"
)

// ModelResult captures the evaluation of one trained model.
type ModelResult struct {
	Name      string
	Params    knn.Config
	Accuracy  float64
	Report    *eval.Report
	Confusion *eval.ConfusionMatrix
}

// Results aggregates everything a pipeline run produced.
type Results struct {
	StartTime   time.Time
	EndTime     time.Time
	Rows        int
	RowsDropped int

	GroupedSummary string
	Correlation    string

	Baseline ModelResult
	Tuned    ModelResult
	Grid     []tune.Result
}

// Reporter generates run reports into an output directory.
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a reporter writing into outputPath.
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport writes all report formats.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	if err := r.generateJSONReport(); err != nil {
		return err
	}

	if err := r.generateGridCSV(); err != nil {
		return err
	}

	log.Info().Str("path", r.outputPath).Msg("Reports written")
	return nil
}

// generateSummary writes the human-readable summary.
func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	res := r.results

	fmt.Fprintf(file, "LOYALTY CLASSIFICATION RUN SUMMARY\n")
	fmt.Fprintf(file, "==================================\n\n")
	fmt.Fprintf(file, "Run: %s to %s (%s)\n\n",
		res.StartTime.Format("2006-01-02 15:04:05"),
		res.EndTime.Format("2006-01-02 15:04:05"),
		res.EndTime.Sub(res.StartTime).Round(time.Millisecond))

	fmt.Fprintf(file, "DATASET\n")
	fmt.Fprintf(file, "-------\n")
	fmt.Fprintf(file, "Rows after cleaning: %d\n", res.Rows)
	fmt.Fprintf(file, "Rows dropped (null income): %d\n\n", res.RowsDropped)

	if res.GroupedSummary != "" {
		fmt.Fprintf(file, "GROUPED STATISTICS\n")
		fmt.Fprintf(file, "------------------\n")
		fmt.Fprintf(file, "%s\n", res.GroupedSummary)
	}
	if res.Correlation != "" {
		fmt.Fprintf(file, "FEATURE CORRELATION\n")
		fmt.Fprintf(file, "-------------------\n")
		fmt.Fprintf(file, "%s\n", res.Correlation)
	}

	for _, model := range []ModelResult{res.Baseline, res.Tuned} {
		if model.Report == nil {
			continue
		}
		fmt.Fprintf(file, "MODEL: %s\n", model.Name)
		fmt.Fprintf(file, "---------------------------------\n")
		fmt.Fprintf(file, "k=%d metric=%s weighting=%s\n", model.Params.K, model.Params.Metric, model.Params.Weighting)
		fmt.Fprintf(file, "Test accuracy: %.2f%%\n\n", model.Accuracy*100)
		fmt.Fprintf(file, "%s\n", model.Report.Format(dataset.CategoryName))
		fmt.Fprintf(file, "%s\n", model.Confusion.Format(dataset.CategoryName))
	}

	return nil
}

// generateJSONReport writes the machine-readable report.
func (r *Reporter) generateJSONReport() error {
	res := r.results

	type modelJSON struct {
		Name      string       `json:"name"`
		K         int          `json:"k"`
		Metric    string       `json:"metric"`
		Weighting string       `json:"weighting"`
		Accuracy  float64      `json:"accuracy"`
		Report    *eval.Report `json:"report,omitempty"`
		Confusion [][]int      `json:"confusion,omitempty"`
	}
	toJSON := func(m ModelResult) modelJSON {
		out := modelJSON{
			Name:      m.Name,
			K:         m.Params.K,
			Metric:    m.Params.Metric,
			Weighting: m.Params.Weighting,
			Accuracy:  m.Accuracy,
			Report:    m.Report,
		}
		if m.Confusion != nil {
			out.Confusion = m.Confusion.Counts
		}
		return out
	}

	payload := struct {
		StartTime   time.Time `json:"start_time"`
		EndTime     time.Time `json:"end_time"`
		Rows        int       `json:"rows"`
		RowsDropped int       `json:"rows_dropped"`
		Baseline    modelJSON `json:"baseline"`
		Tuned       modelJSON `json:"tuned"`
		GridSize    int       `json:"grid_size"`
	}{
		StartTime:   res.StartTime,
		EndTime:     res.EndTime,
		Rows:        res.Rows,
		RowsDropped: res.RowsDropped,
		Baseline:    toJSON(res.Baseline),
		Tuned:       toJSON(res.Tuned),
		GridSize:    len(res.Grid),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}

	jsonPath := filepath.Join(r.outputPath, "report.json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

// generateGridCSV writes every grid combination with its cross-validated
// accuracy (or skip reason).
func (r *Reporter) generateGridCSV() error {
	if len(r.results.Grid) == 0 {
		return nil
	}

	csvPath := filepath.Join(r.outputPath, "grid_results.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create grid results file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"k", "metric", "weighting", "mean_cv_accuracy", "skipped", "reason"}); err != nil {
		return fmt.Errorf("failed to write grid CSV header: %w", err)
	}
	for _, g := range r.results.Grid {
		row := []string{
			strconv.Itoa(g.Config.K),
			g.Config.Metric,
			g.Config.Weighting,
			strconv.FormatFloat(g.MeanAccuracy, 'f', 6, 64),
			strconv.FormatBool(g.Skipped),
			g.Reason,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write grid CSV row: %w", err)
		}
	}
	return nil
}
