package dataset

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestClean(t *testing.T) {
	rows := []Row{
		{ID: 1, Category: 1, Income: fptr(52000), HouseholdSize: 3, Education: 2, Gender: 0},
		{ID: 2, Category: 2, Income: nil, HouseholdSize: 2, Education: 4, Gender: 1},
		{ID: 3, Category: 3, Income: fptr(71000), HouseholdSize: 5, Education: 1, Gender: 1},
		{ID: 4, Category: 1, Income: nil, HouseholdSize: 1, Education: 3, Gender: 0},
	}

	cleaned, stats := Clean(rows)

	if stats.Before != 4 {
		t.Errorf("expected 4 rows before cleaning, got %d", stats.Before)
	}
	if stats.NullIncomes != 2 {
		t.Errorf("expected 2 null incomes, got %d", stats.NullIncomes)
	}
	if stats.After != 2 {
		t.Errorf("expected 2 rows after cleaning, got %d", stats.After)
	}
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 cleaned rows, got %d", len(cleaned))
	}

	// Every surviving row has a numeric income
	for _, r := range cleaned {
		if r.Income == nil {
			t.Errorf("row %d survived cleaning with nil income", r.ID)
		}
	}

	// Order preserved
	if cleaned[0].ID != 1 || cleaned[1].ID != 3 {
		t.Errorf("expected rows 1 and 3 to survive in order, got %d and %d", cleaned[0].ID, cleaned[1].ID)
	}
}

func TestCleanAllNull(t *testing.T) {
	rows := []Row{
		{ID: 1, Income: nil},
		{ID: 2, Income: nil},
	}

	cleaned, stats := Clean(rows)
	if len(cleaned) != 0 {
		t.Errorf("expected no rows to survive, got %d", len(cleaned))
	}
	if stats.NullIncomes != 2 {
		t.Errorf("expected 2 null incomes, got %d", stats.NullIncomes)
	}
}

func TestCoerceIncome(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    float64
		isNil   bool
		wantErr bool
	}{
		{"nil stays nil", nil, 0, true, false},
		{"float64", 52000.5, 52000.5, false, false},
		{"int32", int32(41000), 41000, false, false},
		{"int64", int64(63000), 63000, false, false},
		{"numeric string", "58000.25", 58000.25, false, false},
		{"empty string is null", "", 0, true, false},
		{"garbage string", "abc", 0, false, true},
		{"unsupported type", []int{1}, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceIncome(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.isNil {
				if got != nil {
					t.Errorf("expected nil income, got %v", *got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected numeric income, got nil")
			}
			if *got != tt.want {
				t.Errorf("expected %g, got %g", tt.want, *got)
			}
		})
	}
}

func TestMapCategoryAndGender(t *testing.T) {
	if code, err := mapCategory("gold"); err != nil || code != 3 {
		t.Errorf("expected gold to map to 3, got %d (%v)", code, err)
	}
	if _, err := mapCategory("copper"); err == nil {
		t.Error("expected error for unknown category, got nil")
	}
	if code, err := mapGender("female"); err != nil || code != 1 {
		t.Errorf("expected female to map to 1, got %d (%v)", code, err)
	}
	if _, err := mapGender("unknown"); err == nil {
		t.Error("expected error for unknown gender, got nil")
	}
}

func TestValidateUniqueIDs(t *testing.T) {
	rows := []Row{{ID: 1}, {ID: 2}, {ID: 1}}
	if err := validateUniqueIDs(rows); err == nil {
		t.Error("expected duplicate id error, got nil")
	}
	if err := validateUniqueIDs(rows[:2]); err != nil {
		t.Errorf("unexpected error for unique ids: %v", err)
	}
}

func TestCategoryName(t *testing.T) {
	if name := CategoryName(5); name != "diamond" {
		t.Errorf("expected diamond for code 5, got %s", name)
	}
	if name := CategoryName(99); name != "category_99" {
		t.Errorf("expected fallback name for unknown code, got %s", name)
	}
}

func TestCategoryCodes(t *testing.T) {
	codes := CategoryCodes()
	if len(codes) != NumCategories {
		t.Fatalf("expected %d codes, got %d", NumCategories, len(codes))
	}
	for i, c := range codes {
		if c != i+1 {
			t.Errorf("expected code %d at position %d, got %d", i+1, i, c)
		}
	}
}
