package cfg

import (
	"fmt"
)

// knownMetrics lists every distance metric the tuner may name in its grid.
// haversine is accepted here so the grid can carry it; the tuner decides
// whether a metric is actually usable for the feature space.
var knownMetrics = map[string]bool{
	"euclidean": true,
	"manhattan": true,
	"chebyshev": true,
	"minkowski": true,
	"haversine": true,
}

var knownWeights = map[string]bool{
	"uniform":  true,
	"distance": true,
}

func validateSettings(s *Settings) error {
	if s.TestFraction <= 0 || s.TestFraction >= 1 {
		return fmt.Errorf("testFraction must be in (0, 1), got %g", s.TestFraction)
	}
	if s.Neighbors <= 0 {
		return fmt.Errorf("neighbors must be positive, got %d", s.Neighbors)
	}
	if !knownMetrics[s.Metric] {
		return fmt.Errorf("unknown distance metric %q", s.Metric)
	}
	if !knownWeights[s.Weighting] {
		return fmt.Errorf("unknown weighting scheme %q", s.Weighting)
	}
	if s.MinkowskiP < 1 {
		return fmt.Errorf("minkowskiP must be >= 1, got %g", s.MinkowskiP)
	}
	if s.CVFolds < 2 {
		return fmt.Errorf("cross-validation folds must be >= 2, got %d", s.CVFolds)
	}
	for _, k := range s.GridNeighbors {
		if k <= 0 {
			return fmt.Errorf("grid neighbor count must be positive, got %d", k)
		}
	}
	for _, m := range s.GridMetrics {
		if !knownMetrics[m] {
			return fmt.Errorf("unknown distance metric %q in tuning grid", m)
		}
	}
	for _, w := range s.GridWeights {
		if !knownWeights[w] {
			return fmt.Errorf("unknown weighting scheme %q in tuning grid", w)
		}
	}
	if s.MetricsPort < 0 || s.MetricsPort > 65535 {
		return fmt.Errorf("metricsPort must be in [0, 65535], got %d", s.MetricsPort)
	}
	return nil
}
