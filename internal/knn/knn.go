package knn

import (
	"fmt"
	"sort"
)

// zero-distance cutoff for inverse-distance weighting
const distEps = 1e-12

// Config holds the classifier hyper-parameters.
type Config struct {
	K          int
	Metric     string
	MinkowskiP float64
	Weighting  string
}

// DefaultConfig returns the baseline hyper-parameters: k=5, Euclidean
// distance, uniform weighting.
func DefaultConfig() Config {
	return Config{K: 5, Metric: Euclidean, MinkowskiP: 3, Weighting: Uniform}
}

// Classifier is a lazy KNN model: Fit stores the training data and all the
// work happens at prediction time. Exported fields keep the model
// gob-serializable; the distance function is re-resolved from Params after
// decoding.
type Classifier struct {
	Params  Config
	X       [][]float64
	Y       []int
	Classes []int

	dist DistanceFunc
}

// New validates the hyper-parameters and returns an unfitted classifier.
func New(cfg Config) (*Classifier, error) {
	if cfg.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", cfg.K)
	}
	if cfg.Weighting != Uniform && cfg.Weighting != Distance {
		return nil, fmt.Errorf("unknown weighting scheme %q", cfg.Weighting)
	}
	dist, err := MetricFunc(cfg.Metric, cfg.MinkowskiP)
	if err != nil {
		return nil, err
	}
	return &Classifier{Params: cfg, dist: dist}, nil
}

// Fit stores the training matrix and labels and records the sorted set of
// observed classes.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	if len(X) != len(y) {
		return fmt.Errorf("feature matrix has %d rows but labels have %d", len(X), len(y))
	}
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on empty training set")
	}
	if c.Params.K > len(X) {
		return fmt.Errorf("k=%d exceeds training set size %d", c.Params.K, len(X))
	}

	c.X = X
	c.Y = y
	c.Classes = extractClasses(y)
	return nil
}

// distance returns the metric function, re-resolving it if the classifier
// came out of a gob decode.
func (c *Classifier) distance() (DistanceFunc, error) {
	if c.dist == nil {
		dist, err := MetricFunc(c.Params.Metric, c.Params.MinkowskiP)
		if err != nil {
			return nil, err
		}
		c.dist = dist
	}
	return c.dist, nil
}

type neighbor struct {
	dist  float64
	label int
}

// nearest returns the k nearest training neighbors of x, closest first.
func (c *Classifier) nearest(x []float64) ([]neighbor, error) {
	if c.X == nil {
		return nil, fmt.Errorf("classifier has not been fitted")
	}
	if len(x) != len(c.X[0]) {
		return nil, fmt.Errorf("input has %d features, model was fitted on %d", len(x), len(c.X[0]))
	}
	dist, err := c.distance()
	if err != nil {
		return nil, err
	}

	// Small sorted buffer of the k best seen so far.
	nbrs := make([]neighbor, 0, c.Params.K)
	for i, xi := range c.X {
		d := dist(x, xi)
		if len(nbrs) < c.Params.K {
			nbrs = append(nbrs, neighbor{d, c.Y[i]})
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		} else if d < nbrs[len(nbrs)-1].dist {
			nbrs[len(nbrs)-1] = neighbor{d, c.Y[i]}
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		}
	}
	return nbrs, nil
}

// PredictProba returns the probability distribution over the observed
// classes (in Classes order) for a single input row. The probabilities
// always sum to 1.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	nbrs, err := c.nearest(x)
	if err != nil {
		return nil, err
	}

	votes := make(map[int]float64, len(c.Classes))
	switch c.Params.Weighting {
	case Distance:
		// An exact match dominates: only zero-distance neighbors vote.
		exact := false
		for _, n := range nbrs {
			if n.dist < distEps {
				exact = true
				break
			}
		}
		for _, n := range nbrs {
			if exact {
				if n.dist < distEps {
					votes[n.label]++
				}
			} else {
				votes[n.label] += 1 / n.dist
			}
		}
	default:
		for _, n := range nbrs {
			votes[n.label]++
		}
	}

	total := 0.0
	for _, v := range votes {
		total += v
	}

	proba := make([]float64, len(c.Classes))
	for i, class := range c.Classes {
		proba[i] = votes[class] / total
	}
	return proba, nil
}

// Predict returns the predicted class label for a single input row. Ties
// break toward the lower class code, matching the stable ordering of
// Classes.
func (c *Classifier) Predict(x []float64) (int, error) {
	proba, err := c.PredictProba(x)
	if err != nil {
		return 0, err
	}

	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return c.Classes[best], nil
}

// PredictBatch predicts labels for every row of X.
func (c *Classifier) PredictBatch(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		label, err := c.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}

// Score returns the accuracy of the classifier on X against labels y.
func (c *Classifier) Score(X [][]float64, y []int) (float64, error) {
	if len(X) != len(y) {
		return 0, fmt.Errorf("feature matrix has %d rows but labels have %d", len(X), len(y))
	}
	if len(X) == 0 {
		return 0, fmt.Errorf("cannot score on empty set")
	}

	pred, err := c.PredictBatch(X)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y)), nil
}

func extractClasses(y []int) []int {
	seen := make(map[int]bool)
	for _, label := range y {
		seen[label] = true
	}
	classes := make([]int, 0, len(seen))
	for class := range seen {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}
