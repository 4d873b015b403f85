package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBudget indicates a malformed budget.
var ErrInvalidBudget = errors.New("invalid budget")

// BudgetEntry is a monthly allocation for one category.
type BudgetEntry struct {
	Category Category
	Amount   float64
}

// Budget is the set of monthly allocations. The type does not enforce one
// entry per category; use Validate to check well-formedness.
type Budget []BudgetEntry

// Validate reports duplicate categories and negative or non-finite amounts.
func (b Budget) Validate() error {
	seen := make(map[Category]bool, len(b))
	for i, entry := range b {
		if !IsValidCategory(string(entry.Category)) {
			return fmt.Errorf("%w: entry %d: %w: %q", ErrInvalidBudget, i, ErrInvalidCategory, entry.Category)
		}
		if math.IsNaN(entry.Amount) || math.IsInf(entry.Amount, 0) || entry.Amount < 0 {
			return fmt.Errorf("%w: entry %d: %w: %v", ErrInvalidBudget, i, ErrInvalidAmount, entry.Amount)
		}
		if seen[entry.Category] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidBudget, entry.Category)
		}
		seen[entry.Category] = true
	}
	return nil
}

// Lookup returns the first allocation for category.
func (b Budget) Lookup(category Category) (float64, bool) {
	for _, entry := range b {
		if entry.Category == category {
			return entry.Amount, true
		}
	}
	return 0, false
}

// Set returns a copy of b with category's allocation replaced or appended.
func (b Budget) Set(category Category, amount float64) Budget {
	out := make(Budget, 0, len(b)+1)
	replaced := false
	for _, entry := range b {
		if entry.Category == category {
			if !replaced {
				out = append(out, BudgetEntry{Category: category, Amount: amount})
				replaced = true
			}
			continue
		}
		out = append(out, entry)
	}
	if !replaced {
		out = append(out, BudgetEntry{Category: category, Amount: amount})
	}
	return out
}

// Total sums every allocation.
func (b Budget) Total() float64 {
	total := 0.0
	for _, entry := range b {
		total += entry.Amount
	}
	return total
}
