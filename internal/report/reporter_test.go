package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loyaltyml/internal/eval"
	"loyaltyml/internal/knn"
	"loyaltyml/internal/tune"
)

func sampleResults(t *testing.T) *Results {
	t.Helper()

	actual := []int{1, 1, 2, 2, 3, 3}
	predicted := []int{1, 2, 2, 2, 3, 3}
	cm, err := eval.NewConfusionMatrix(actual, predicted)
	if err != nil {
		t.Fatalf("NewConfusionMatrix failed: %v", err)
	}
	rep := eval.ClassificationReport(cm)

	baseline := ModelResult{
		Name:      "baseline",
		Params:    knn.Config{K: 5, Metric: knn.Euclidean, Weighting: knn.Uniform},
		Accuracy:  rep.Accuracy,
		Report:    rep,
		Confusion: cm,
	}
	tuned := ModelResult{
		Name:      "tuned",
		Params:    knn.Config{K: 9, Metric: knn.Manhattan, Weighting: knn.Distance},
		Accuracy:  rep.Accuracy,
		Report:    rep,
		Confusion: cm,
	}

	start := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	return &Results{
		StartTime:      start,
		EndTime:        start.Add(3 * time.Second),
		Rows:           1965,
		RowsDropped:    35,
		GroupedSummary: "category count\nbronze 400\n",
		Correlation:    "householdincome 1.000\n",
		Baseline:       baseline,
		Tuned:          tuned,
		Grid: []tune.Result{
			{Config: knn.Config{K: 3, Metric: "euclidean", Weighting: "uniform"}, MeanAccuracy: 0.55},
			{Config: knn.Config{K: 3, Metric: "haversine", Weighting: "uniform"}, Skipped: true, Reason: "incompatible metric"},
			{Config: knn.Config{K: 9, Metric: "manhattan", Weighting: "distance"}, MeanAccuracy: 0.62},
		},
	}
}

func TestGenerateReportWritesAllFormats(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(sampleResults(t), dir)

	if err := r.GenerateReport(); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	for _, name := range []string{"summary.txt", "report.json", "grid_results.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestSummaryContents(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(sampleResults(t), dir)

	if err := r.GenerateReport(); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.txt"))
	if err != nil {
		t.Fatalf("reading summary failed: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"Rows after cleaning: 1965",
		"Rows dropped (null income): 35",
		"MODEL: baseline",
		"MODEL: tuned",
		"k=9 metric=manhattan weighting=distance",
		"GROUPED STATISTICS",
		"FEATURE CORRELATION",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestJSONReportContents(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(sampleResults(t), dir)

	if err := r.GenerateReport(); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("reading JSON report failed: %v", err)
	}

	var payload struct {
		Rows     int `json:"rows"`
		Baseline struct {
			K        int     `json:"k"`
			Metric   string  `json:"metric"`
			Accuracy float64 `json:"accuracy"`
		} `json:"baseline"`
		Tuned struct {
			K         int    `json:"k"`
			Weighting string `json:"weighting"`
		} `json:"tuned"`
		GridSize int `json:"grid_size"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal report failed: %v", err)
	}

	if payload.Rows != 1965 {
		t.Errorf("expected 1965 rows, got %d", payload.Rows)
	}
	if payload.Baseline.K != 5 || payload.Baseline.Metric != "euclidean" {
		t.Errorf("unexpected baseline params: %+v", payload.Baseline)
	}
	if payload.Tuned.K != 9 || payload.Tuned.Weighting != "distance" {
		t.Errorf("unexpected tuned params: %+v", payload.Tuned)
	}
	if payload.GridSize != 3 {
		t.Errorf("expected grid size 3, got %d", payload.GridSize)
	}
}

func TestGridCSVContents(t *testing.T) {
	dir := t.TempDir()
	r := NewReporter(sampleResults(t), dir)

	if err := r.GenerateReport(); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "grid_results.csv"))
	if err != nil {
		t.Fatalf("opening grid CSV failed: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading grid CSV failed: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "k" || rows[0][4] != "skipped" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[2][1] != "haversine" || rows[2][4] != "true" {
		t.Errorf("expected skipped haversine row, got %v", rows[2])
	}
	if rows[3][3] != "0.620000" {
		t.Errorf("expected formatted accuracy 0.620000, got %q", rows[3][3])
	}
}

func TestGridCSVSkippedWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	res := sampleResults(t)
	res.Grid = nil

	if err := NewReporter(res, dir).GenerateReport(); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "grid_results.csv")); !os.IsNotExist(err) {
		t.Error("expected no grid CSV for an empty grid")
	}
}
