// Package dataset loads customer records from a MongoDB collection (or a
// CSV/JSON snapshot), remaps categorical fields through fixed enumerations,
// and cleans the rows for modeling.
package dataset

import (
	"fmt"
	"sort"
)

// Row is a single customer record. Income is a pointer because the source
// field is nullable; Clean drops rows where it is nil.
type Row struct {
	ID            int
	Category      int // loyalty tier, 1..5
	Income        *float64
	HouseholdSize float64
	Education     float64
	Gender        int // 0 or 1
}

// CategoryLabels maps the five loyalty tier labels to their encoded values.
var CategoryLabels = map[string]int{
	"bronze":   1,
	"silver":   2,
	"gold":     3,
	"platinum": 4,
	"diamond":  5,
}

// GenderLabels maps the gender labels to their binary encoding.
var GenderLabels = map[string]int{
	"male":   0,
	"female": 1,
}

// NumCategories is the number of loyalty tiers.
const NumCategories = 5

// CategoryName returns the label for an encoded category value.
func CategoryName(code int) string {
	for name, c := range CategoryLabels {
		if c == code {
			return name
		}
	}
	return fmt.Sprintf("category_%d", code)
}

// CategoryCodes returns the encoded category values in ascending order.
func CategoryCodes() []int {
	codes := make([]int, 0, len(CategoryLabels))
	for _, c := range CategoryLabels {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

func mapCategory(label string) (int, error) {
	code, ok := CategoryLabels[label]
	if !ok {
		return 0, fmt.Errorf("unknown category label %q", label)
	}
	return code, nil
}

func mapGender(label string) (int, error) {
	code, ok := GenderLabels[label]
	if !ok {
		return 0, fmt.Errorf("unknown gender label %q", label)
	}
	return code, nil
}

// validateUniqueIDs checks the load-time invariant that customer ids are
// unique across the dataset.
func validateUniqueIDs(rows []Row) error {
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if seen[r.ID] {
			return fmt.Errorf("duplicate customer id %d", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}
