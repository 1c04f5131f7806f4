// Package tune performs exhaustive grid search over KNN hyper-parameters,
// scoring each combination by k-fold cross-validated accuracy on the
// training split.
package tune

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"loyaltyml/internal/knn"
)

// MetricsInterface defines the metrics hooks the tuner reports to.
type MetricsInterface interface {
	CVEvaluationsInc()
	BestCVAccuracySet(float64)
}

// Result is the cross-validated outcome of one grid combination. Skipped
// combinations (for example a metric incompatible with the feature space)
// carry the reason instead of an accuracy.
type Result struct {
	Config       knn.Config
	MeanAccuracy float64
	Skipped      bool
	Reason       string
}

// GridSearch enumerates every combination of the configured neighbor
// counts, distance metrics and weighting schemes.
type GridSearch struct {
	Neighbors  []int
	Metrics    []string
	Weights    []string
	MinkowskiP float64
	Folds      int
	Seed       int64

	metrics MetricsInterface
}

// New creates a grid search. metrics may be nil.
func New(neighbors []int, metricNames, weights []string, minkowskiP float64, folds int, seed int64, metrics MetricsInterface) (*GridSearch, error) {
	if len(neighbors) == 0 || len(metricNames) == 0 || len(weights) == 0 {
		return nil, fmt.Errorf("grid must have at least one value per dimension")
	}
	if folds < 2 {
		return nil, fmt.Errorf("cross-validation needs at least 2 folds, got %d", folds)
	}
	return &GridSearch{
		Neighbors:  neighbors,
		Metrics:    metricNames,
		Weights:    weights,
		MinkowskiP: minkowskiP,
		Folds:      folds,
		Seed:       seed,
		metrics:    metrics,
	}, nil
}

// Run evaluates the full grid on the training data and returns the best
// combination plus every result in evaluation order. Ties go to the first
// combination evaluated, so the outcome is deterministic for a fixed grid
// and seed.
func (g *GridSearch) Run(X [][]float64, y []int) (Result, []Result, error) {
	if len(X) < g.Folds {
		return Result{}, nil, fmt.Errorf("training set of %d rows cannot be split into %d folds", len(X), g.Folds)
	}

	folds := kFold(len(X), g.Folds, g.Seed)

	var results []Result
	best := Result{MeanAccuracy: -1, Skipped: true}

	for _, k := range g.Neighbors {
		for _, metric := range g.Metrics {
			for _, weighting := range g.Weights {
				cfg := knn.Config{K: k, Metric: metric, MinkowskiP: g.MinkowskiP, Weighting: weighting}

				r := g.evaluate(cfg, X, y, folds)
				results = append(results, r)
				if r.Skipped {
					continue
				}
				if best.Skipped || r.MeanAccuracy > best.MeanAccuracy {
					best = r
				}
			}
		}
	}

	if best.Skipped {
		return Result{}, results, fmt.Errorf("no grid combination could be evaluated")
	}

	if g.metrics != nil {
		g.metrics.BestCVAccuracySet(best.MeanAccuracy)
	}
	log.Info().
		Int("k", best.Config.K).
		Str("metric", best.Config.Metric).
		Str("weighting", best.Config.Weighting).
		Float64("cv_accuracy", best.MeanAccuracy).
		Msg("Grid search complete")

	return best, results, nil
}

// evaluate cross-validates one combination. Combinations that cannot be
// constructed or fitted are reported as skipped, not as hard errors, so a
// single bad grid entry does not abort the search.
func (g *GridSearch) evaluate(cfg knn.Config, X [][]float64, y []int, folds [][]int) Result {
	if _, err := knn.New(cfg); err != nil {
		log.Warn().
			Str("metric", cfg.Metric).
			Str("weighting", cfg.Weighting).
			Int("k", cfg.K).
			Err(err).
			Msg("Skipping grid combination")
		return Result{Config: cfg, Skipped: true, Reason: err.Error()}
	}

	sum := 0.0
	for f := range folds {
		holdout := folds[f]
		inHoldout := make(map[int]bool, len(holdout))
		for _, idx := range holdout {
			inHoldout[idx] = true
		}

		var trainX, testX [][]float64
		var trainY, testY []int
		for i := range X {
			if inHoldout[i] {
				testX = append(testX, X[i])
				testY = append(testY, y[i])
			} else {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}

		clf, err := knn.New(cfg)
		if err != nil {
			return Result{Config: cfg, Skipped: true, Reason: err.Error()}
		}
		if err := clf.Fit(trainX, trainY); err != nil {
			return Result{Config: cfg, Skipped: true, Reason: err.Error()}
		}
		acc, err := clf.Score(testX, testY)
		if err != nil {
			return Result{Config: cfg, Skipped: true, Reason: err.Error()}
		}
		sum += acc

		if g.metrics != nil {
			g.metrics.CVEvaluationsInc()
		}
	}

	return Result{Config: cfg, MeanAccuracy: sum / float64(len(folds))}
}

// kFold assigns row indices to folds using a seeded permutation.
func kFold(n, k int, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds
}
