package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// LoadFile loads records from a CSV or JSON snapshot, detecting the format
// from the file extension. Snapshots use the same field names and label
// enumerations as the MongoDB collection.
func LoadFile(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}
}

// LoadCSV loads records from a CSV file with a header row. An empty
// householdincome cell is treated as null.
func LoadCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"custid", "category", "householdincome", "householdsize", "educationlevel", "gender"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV header missing column %q", required)
		}
	}

	var rows []Row
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: malformed CSV record: %w", line+1, err)
		}
		line++

		id, err := strconv.Atoi(fields[col["custid"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid custid %q", line, fields[col["custid"]])
		}

		size, err := strconv.ParseFloat(fields[col["householdsize"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid householdsize %q", line, fields[col["householdsize"]])
		}

		education, err := strconv.ParseFloat(fields[col["educationlevel"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid educationlevel %q", line, fields[col["educationlevel"]])
		}

		row, err := rowFromDocument(document{
			CustID:        id,
			Category:      fields[col["category"]],
			Income:        fields[col["householdincome"]],
			HouseholdSize: size,
			Education:     education,
			Gender:        fields[col["gender"]],
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	if err := validateUniqueIDs(rows); err != nil {
		return nil, err
	}

	log.Info().Int("records", len(rows)).Str("path", path).Msg("Loaded records from CSV")
	return rows, nil
}

// LoadJSON loads records from a JSON array of documents.
func LoadJSON(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var docs []struct {
		CustID        int      `json:"custid"`
		Category      string   `json:"category"`
		Income        *float64 `json:"householdincome"`
		HouseholdSize float64  `json:"householdsize"`
		Education     float64  `json:"educationlevel"`
		Gender        string   `json:"gender"`
	}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON records: %w", err)
	}

	rows := make([]Row, 0, len(docs))
	for i, doc := range docs {
		var income interface{}
		if doc.Income != nil {
			income = *doc.Income
		}
		row, err := rowFromDocument(document{
			CustID:        doc.CustID,
			Category:      doc.Category,
			Income:        income,
			HouseholdSize: doc.HouseholdSize,
			Education:     doc.Education,
			Gender:        doc.Gender,
		})
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	if err := validateUniqueIDs(rows); err != nil {
		return nil, err
	}

	log.Info().Int("records", len(rows)).Str("path", path).Msg("Loaded records from JSON")
	return rows, nil
}
