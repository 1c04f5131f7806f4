package knn

import (
	"math"
	"testing"
)

func TestDistanceFunctions(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}

	tests := []struct {
		metric string
		p      float64
		want   float64
	}{
		{Euclidean, 0, 5},
		{Manhattan, 0, 7},
		{Chebyshev, 0, 4},
		{Minkowski, 1, 7}, // p=1 is manhattan
		{Minkowski, 2, 5}, // p=2 is euclidean
	}

	for _, tt := range tests {
		fn, err := MetricFunc(tt.metric, tt.p)
		if err != nil {
			t.Fatalf("MetricFunc(%s, %g) failed: %v", tt.metric, tt.p, err)
		}
		got := fn(a, b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s(p=%g): expected %g, got %g", tt.metric, tt.p, tt.want, got)
		}
	}
}

func TestMinkowskiLimitsToChebyshev(t *testing.T) {
	a := []float64{0, 0}
	b := []float64{3, 4}

	fn, err := MetricFunc(Minkowski, 100)
	if err != nil {
		t.Fatalf("MetricFunc failed: %v", err)
	}
	cheb, err := MetricFunc(Chebyshev, 0)
	if err != nil {
		t.Fatalf("MetricFunc failed: %v", err)
	}

	if math.Abs(fn(a, b)-cheb(a, b)) > 0.1 {
		t.Errorf("high-order minkowski %g should approach chebyshev %g", fn(a, b), cheb(a, b))
	}
}

func TestMetricFuncErrors(t *testing.T) {
	if _, err := MetricFunc(Haversine, 0); err == nil {
		t.Error("expected haversine rejection, got nil")
	}
	if _, err := MetricFunc("mahalanobis", 0); err == nil {
		t.Error("expected error for unknown metric, got nil")
	}
	if _, err := MetricFunc(Minkowski, 0.5); err == nil {
		t.Error("expected error for minkowski order < 1, got nil")
	}
}

func TestDistanceIdentity(t *testing.T) {
	x := []float64{1.5, -2.5, 3.5, 0}
	for _, metric := range []string{Euclidean, Manhattan, Chebyshev} {
		fn, err := MetricFunc(metric, 0)
		if err != nil {
			t.Fatalf("MetricFunc(%s) failed: %v", metric, err)
		}
		if d := fn(x, x); d != 0 {
			t.Errorf("%s: distance of a point to itself is %g, expected 0", metric, d)
		}
	}
}
