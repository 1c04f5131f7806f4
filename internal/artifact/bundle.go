// Package artifact persists trained models and run history. A Bundle is a
// gob-encoded file holding the fitted classifier, the scaler it expects its
// inputs to pass through, and evaluation metadata. The Store archives run
// records in a BoltDB database for later inspection.
package artifact

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loyaltyml/internal/eval"
	"loyaltyml/internal/knn"
	"loyaltyml/internal/prep"
)

// Bundle is the serializable artifact of one trained model.
type Bundle struct {
	Model     *knn.Classifier
	Scaler    *prep.StandardScaler
	Metadata  Metadata
	CreatedAt time.Time
}

// Metadata describes how the bundled model was trained and how it scored.
type Metadata struct {
	Name         string
	Accuracy     float64
	MacroF1      float64
	PerClass     []eval.ClassMetrics
	TrainingTime time.Duration
	Features     []string
	Classes      []int
}

// NewBundle wraps a fitted classifier and its scaler for persistence.
func NewBundle(name string, model *knn.Classifier, scaler *prep.StandardScaler) *Bundle {
	return &Bundle{
		Model:     model,
		Scaler:    scaler,
		CreatedAt: time.Now(),
		Metadata: Metadata{
			Name:     name,
			Features: prep.FeatureNames,
			Classes:  model.Classes,
		},
	}
}

// Save writes the bundle to path, creating parent directories as needed.
func (b *Bundle) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(b); err != nil {
		return fmt.Errorf("failed to encode model bundle: %w", err)
	}
	return nil
}

// LoadBundle reads a bundle back from disk. The decoded classifier
// re-resolves its distance function from its stored hyper-parameters on
// first use.
func LoadBundle(path string) (*Bundle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	var b Bundle
	if err := gob.NewDecoder(file).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode model bundle: %w", err)
	}
	return &b, nil
}
