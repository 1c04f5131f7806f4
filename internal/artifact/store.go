package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const runsBucket = "runs" // Bucket name for pipeline run records

// RunRecord is one archived pipeline run: the evaluated models and the
// grid results, stored as JSON inside BoltDB.
type RunRecord struct {
	Timestamp        time.Time        `json:"timestamp"`
	Rows             int              `json:"rows"`
	RowsDropped      int              `json:"rows_dropped"`
	BaselineAccuracy float64          `json:"baseline_accuracy"`
	TunedAccuracy    float64          `json:"tuned_accuracy"`
	BestParams       map[string]any   `json:"best_params"`
	GridResults      []GridResultJSON `json:"grid_results,omitempty"`
}

// GridResultJSON is the archived form of a single grid combination.
type GridResultJSON struct {
	K            int     `json:"k"`
	Metric       string  `json:"metric"`
	Weighting    string  `json:"weighting"`
	MeanAccuracy float64 `json:"mean_accuracy"`
	Skipped      bool    `json:"skipped,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

// Store archives pipeline runs in a BoltDB database keyed by run timestamp.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the run archive in the given directory.
func NewStore(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "loyalty-runs.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(runsBucket)); err != nil {
			return fmt.Errorf("create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun archives a run record keyed by its timestamp in nanoseconds, so
// keys sort chronologically.
func (s *Store) SaveRun(record RunRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal run record: %w", err)
		}

		key := fmt.Sprintf("%020d", record.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// GetRuns retrieves run records within a time range, oldest first. The
// range is inclusive of both ends.
func (s *Store) GetRuns(start, end time.Time) ([]RunRecord, error) {
	var records []RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		c := b.Cursor()

		startKey := []byte(fmt.Sprintf("%020d", start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%020d", end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			var record RunRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // Skip malformed records
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// LatestRun returns the most recent archived run, or an error if the
// archive is empty.
func (s *Store) LatestRun() (RunRecord, error) {
	var record RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(runsBucket))
		k, v := b.Cursor().Last()
		if k == nil {
			return fmt.Errorf("run archive is empty")
		}
		return json.Unmarshal(v, &record)
	})
	return record, err
}
