// Package knn implements a K-nearest-neighbors classifier over dense
// float64 feature vectors, with selectable distance metrics and neighbor
// weighting schemes.
package knn

import (
	"fmt"
	"math"
)

// Supported distance metric names.
const (
	Euclidean = "euclidean"
	Manhattan = "manhattan"
	Chebyshev = "chebyshev"
	Minkowski = "minkowski"
	Haversine = "haversine"
)

// Weighting scheme names.
const (
	Uniform  = "uniform"
	Distance = "distance"
)

// DistanceFunc computes the distance between two equal-length vectors.
type DistanceFunc func(a, b []float64) float64

// MetricFunc resolves a metric name to its distance function. p is the
// Minkowski order and is ignored by the other metrics. haversine is a
// recognized name but only applies to 2D angular coordinates, so it is
// rejected for this feature space rather than silently misapplied.
func MetricFunc(metric string, p float64) (DistanceFunc, error) {
	switch metric {
	case Euclidean:
		return euclidean, nil
	case Manhattan:
		return manhattan, nil
	case Chebyshev:
		return chebyshev, nil
	case Minkowski:
		if p < 1 {
			return nil, fmt.Errorf("minkowski order must be >= 1, got %g", p)
		}
		return func(a, b []float64) float64 { return minkowski(a, b, p) }, nil
	case Haversine:
		return nil, fmt.Errorf("haversine distance requires 2D angular coordinates and is incompatible with these features")
	default:
		return nil, fmt.Errorf("unknown distance metric %q", metric)
	}
}

func euclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func manhattan(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

func chebyshev(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func minkowski(a, b []float64, p float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Pow(math.Abs(a[i]-b[i]), p)
	}
	return math.Pow(sum, 1/p)
}
