package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"loyaltyml/internal/artifact"
	"loyaltyml/internal/cfg"
	"loyaltyml/internal/dataset"
	"loyaltyml/internal/describe"
	"loyaltyml/internal/eval"
	"loyaltyml/internal/knn"
	"loyaltyml/internal/metrics"
	"loyaltyml/internal/prep"
	"loyaltyml/internal/report"
	"loyaltyml/internal/tune"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file (overrides CONFIG_FILE)")
		inputPath  = flag.String("input", "", "Load records from a CSV/JSON snapshot instead of MongoDB")
		outputPath = flag.String("output", "", "Output directory for reports and plots (overrides config)")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		skipPlots  = flag.Bool("skip-plots", false, "Skip diagnostic plot generation")
	)
	flag.Parse()

	// Setup logging
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// .env is optional
	_ = godotenv.Load()

	var settings cfg.Settings
	if *configPath != "" {
		settings, err = cfg.LoadFile(*configPath)
	} else {
		settings, err = cfg.Load()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *outputPath != "" {
		settings.OutputDir = *outputPath
	}

	m := metrics.New()
	startMetricsServer(settings.MetricsPort)

	results := &report.Results{StartTime: time.Now()}

	// --- Load ---
	rows := loadRows(settings, *inputPath)
	m.RowsLoaded.Set(float64(len(rows)))

	// --- Clean ---
	cleaned, cleanStats := dataset.Clean(rows)
	m.RowsDropped.Set(float64(cleanStats.NullIncomes))
	if len(cleaned) == 0 {
		log.Fatal().Msg("No rows left after cleaning")
	}
	results.Rows = cleanStats.After
	results.RowsDropped = cleanStats.NullIncomes

	X, y, err := prep.Matrix(cleaned)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build feature matrix")
	}

	// --- Describe (diagnostic, non-fatal) ---
	describeDataset(X, y, settings.OutputDir, *skipPlots, m, results)

	// --- Split and scale ---
	split, err := prep.TrainTestSplit(X, y, settings.TestFraction, settings.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to split dataset")
	}
	log.Info().
		Int("train", len(split.XTrain)).
		Int("test", len(split.XTest)).
		Int64("seed", settings.Seed).
		Msg("Split dataset")

	// Each partition is standardized independently; the gender column is
	// categorical and keeps its raw value.
	trainScaler := prep.NewStandardScaler(prep.GenderColumn)
	scaledTrain, err := trainScaler.FitTransform(split.XTrain)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to scale training features")
	}
	testScaler := prep.NewStandardScaler(prep.GenderColumn)
	scaledTest, err := testScaler.FitTransform(split.XTest)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to scale test features")
	}

	// --- Baseline classifier ---
	baselineCfg := knn.Config{
		K:          settings.Neighbors,
		Metric:     settings.Metric,
		MinkowskiP: settings.MinkowskiP,
		Weighting:  settings.Weighting,
	}
	baseline := trainAndEvaluate("baseline", baselineCfg, scaledTrain, split.YTrain, scaledTest, split.YTest, settings.OutputDir, *skipPlots, m)
	results.Baseline = baseline

	if err := saveBundle("baseline", baselineCfg, scaledTrain, split.YTrain, trainScaler, baseline, settings.BaselineModelPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to save baseline model")
	}

	// --- Grid search ---
	grid, err := tune.New(settings.GridNeighbors, settings.GridMetrics, settings.GridWeights,
		settings.MinkowskiP, settings.CVFolds, settings.Seed, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build grid search")
	}
	best, gridResults, err := grid.Run(scaledTrain, split.YTrain)
	if err != nil {
		log.Fatal().Err(err).Msg("Grid search failed")
	}
	results.Grid = gridResults

	tuned := trainAndEvaluate("tuned", best.Config, scaledTrain, split.YTrain, scaledTest, split.YTest, settings.OutputDir, *skipPlots, m)
	results.Tuned = tuned
	m.TestAccuracy.Set(tuned.Accuracy)

	if err := saveBundle("tuned", best.Config, scaledTrain, split.YTrain, trainScaler, tuned, settings.TunedModelPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to save tuned model")
	}

	// --- Report ---
	results.EndTime = time.Now()
	reporter := report.NewReporter(results, settings.OutputDir)
	if err := reporter.GenerateReport(); err != nil {
		log.Fatal().Err(err).Msg("Failed to write reports")
	}

	archiveRun(settings, results, gridResults, best)

	log.Info().
		Float64("baseline_accuracy", baseline.Accuracy).
		Float64("tuned_accuracy", tuned.Accuracy).
		Int("k", best.Config.K).
		Str("metric", best.Config.Metric).
		Str("weighting", best.Config.Weighting).
		Msg("Pipeline complete")
}

// loadRows reads records from the snapshot file when one is given,
// otherwise from MongoDB. A database connection failure is fatal; running
// on without a source would only fail later in a less obvious place.
func loadRows(settings cfg.Settings, inputPath string) []dataset.Row {
	if inputPath != "" {
		rows, err := dataset.LoadFile(inputPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", inputPath).Msg("Failed to load snapshot")
		}
		return rows
	}

	ctx, cancel := context.WithTimeout(context.Background(), settings.ConnectTimeout)
	defer cancel()

	loader, err := dataset.NewMongoLoader(ctx, settings.MongoURI, settings.Database, settings.Collection)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = loader.Close(closeCtx)
	}()

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer loadCancel()

	rows, err := loader.Load(loadCtx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load records")
	}
	return rows
}

// describeDataset computes grouped statistics and the pairplot. These are
// diagnostics: failures are logged and counted, never fatal.
func describeDataset(X [][]float64, y []int, outputDir string, skipPlots bool, m *metrics.Metrics, results *report.Results) {
	summaries, err := describe.GroupedSummary(X, y)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to compute grouped summary")
	} else {
		results.GroupedSummary = describe.FormatSummaries(summaries, dataset.CategoryName)
		fmt.Print(results.GroupedSummary)
	}

	corr, err := describe.CorrelationMatrix(X)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to compute correlation matrix")
	} else {
		results.Correlation = describe.FormatCorrelation(corr)
	}

	if skipPlots {
		return
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("Failed to create output directory for plots")
		m.PlotErrors.Inc()
		return
	}
	pairplotPath := filepath.Join(outputDir, "pairplot.png")
	if err := describe.SavePairplot(X, y, pairplotPath, dataset.CategoryName); err != nil {
		log.Warn().Err(err).Msg("Failed to render pairplot")
		m.PlotErrors.Inc()
	} else {
		log.Info().Str("path", pairplotPath).Msg("Pairplot written")
	}
}

// trainAndEvaluate fits a classifier with the given hyper-parameters on the
// training split and evaluates it on the test split.
func trainAndEvaluate(name string, config knn.Config, trainX [][]float64, trainY []int, testX [][]float64, testY []int, outputDir string, skipPlots bool, m *metrics.Metrics) report.ModelResult {
	clf, err := knn.New(config)
	if err != nil {
		log.Fatal().Err(err).Str("model", name).Msg("Failed to build classifier")
	}

	start := time.Now()
	if err := clf.Fit(trainX, trainY); err != nil {
		log.Fatal().Err(err).Str("model", name).Msg("Failed to fit classifier")
	}
	m.ObserveTraining(time.Since(start))

	predicted, err := clf.PredictBatch(testX)
	if err != nil {
		log.Fatal().Err(err).Str("model", name).Msg("Prediction failed")
	}

	accuracy, err := eval.Accuracy(testY, predicted)
	if err != nil {
		log.Fatal().Err(err).Str("model", name).Msg("Failed to score predictions")
	}

	cm, err := eval.NewConfusionMatrix(testY, predicted)
	if err != nil {
		log.Fatal().Err(err).Str("model", name).Msg("Failed to build confusion matrix")
	}
	rep := eval.ClassificationReport(cm)

	log.Info().
		Str("model", name).
		Int("k", config.K).
		Str("metric", config.Metric).
		Str("weighting", config.Weighting).
		Float64("accuracy", accuracy).
		Msg("Evaluated classifier")
	fmt.Printf("\n%s model\n%s\n%s\n", name, rep.Format(dataset.CategoryName), cm.Format(dataset.CategoryName))

	if !skipPlots {
		heatmapPath := filepath.Join(outputDir, fmt.Sprintf("confusion_%s.png", name))
		title := fmt.Sprintf("Confusion matrix (%s)", name)
		if err := cm.SaveHeatmap(heatmapPath, title, dataset.CategoryName); err != nil {
			log.Warn().Err(err).Msg("Failed to render confusion heatmap")
			m.PlotErrors.Inc()
		}
	}

	return report.ModelResult{
		Name:      name,
		Params:    config,
		Accuracy:  accuracy,
		Report:    rep,
		Confusion: cm,
	}
}

// saveBundle refits a fresh classifier with the given hyper-parameters and
// persists it together with the training-split scaler.
func saveBundle(name string, config knn.Config, trainX [][]float64, trainY []int, scaler *prep.StandardScaler, result report.ModelResult, path string) error {
	clf, err := knn.New(config)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := clf.Fit(trainX, trainY); err != nil {
		return err
	}

	bundle := artifact.NewBundle(name, clf, scaler)
	bundle.Metadata.Accuracy = result.Accuracy
	bundle.Metadata.MacroF1 = result.Report.MacroF1
	bundle.Metadata.PerClass = result.Report.PerClass
	bundle.Metadata.TrainingTime = time.Since(start)

	if err := bundle.Save(path); err != nil {
		return err
	}
	log.Info().Str("model", name).Str("path", path).Msg("Model saved")
	return nil
}

// archiveRun stores the run record in the BoltDB archive when one is
// configured.
func archiveRun(settings cfg.Settings, results *report.Results, gridResults []tune.Result, best tune.Result) {
	if settings.ArchivePath == "" {
		return
	}
	if err := os.MkdirAll(settings.ArchivePath, 0o755); err != nil {
		log.Warn().Err(err).Msg("Failed to create archive directory")
		return
	}

	store, err := artifact.NewStore(settings.ArchivePath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open run archive")
		return
	}
	defer store.Close()

	record := artifact.RunRecord{
		Timestamp:        results.StartTime,
		Rows:             results.Rows,
		RowsDropped:      results.RowsDropped,
		BaselineAccuracy: results.Baseline.Accuracy,
		TunedAccuracy:    results.Tuned.Accuracy,
		BestParams: map[string]any{
			"k":         best.Config.K,
			"metric":    best.Config.Metric,
			"weighting": best.Config.Weighting,
		},
	}
	for _, g := range gridResults {
		record.GridResults = append(record.GridResults, artifact.GridResultJSON{
			K:            g.Config.K,
			Metric:       g.Config.Metric,
			Weighting:    g.Config.Weighting,
			MeanAccuracy: g.MeanAccuracy,
			Skipped:      g.Skipped,
			Reason:       g.Reason,
		})
	}

	if err := store.SaveRun(record); err != nil {
		log.Warn().Err(err).Msg("Failed to archive run")
		return
	}
	log.Info().Str("path", settings.ArchivePath).Msg("Run archived")
}

// startMetricsServer exposes Prometheus metrics while the pipeline runs.
// Port 0 keeps the endpoint off, which is the default for batch use.
func startMetricsServer(port int) {
	if port <= 0 {
		return
	}
	go func() {
		addr := fmt.Sprintf(":%d", port)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Info().Str("addr", addr).Msg("Metrics endpoint listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn().Err(err).Msg("Metrics server stopped")
		}
	}()
}
