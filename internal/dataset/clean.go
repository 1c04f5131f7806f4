package dataset

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
)

// CleanStats reports what the cleaning pass did.
type CleanStats struct {
	Before      int
	After       int
	NullIncomes int
}

// Clean drops rows with a null household income and returns the surviving
// rows. There is no imputation: a null income always discards the row.
// Post-condition: every returned row has a non-nil Income.
func Clean(rows []Row) ([]Row, CleanStats) {
	stats := CleanStats{Before: len(rows)}

	cleaned := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Income == nil {
			stats.NullIncomes++
			continue
		}
		cleaned = append(cleaned, r)
	}
	stats.After = len(cleaned)

	log.Info().
		Int("rows_before", stats.Before).
		Int("null_incomes", stats.NullIncomes).
		Int("rows_after", stats.After).
		Msg("Cleaned dataset")

	return cleaned, stats
}

// coerceIncome converts a loosely typed income value into *float64.
// nil stays nil (handled later by Clean); numeric types and numeric strings
// are converted; anything else is an error.
func coerceIncome(v interface{}) (*float64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &x, nil
	case float32:
		f := float64(x)
		return &f, nil
	case int:
		f := float64(x)
		return &f, nil
	case int32:
		f := float64(x)
		return &f, nil
	case int64:
		f := float64(x)
		return &f, nil
	case string:
		if x == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil, fmt.Errorf("household income %q is not numeric", x)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("household income has unsupported type %T", v)
	}
}
