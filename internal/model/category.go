package model

import "strings"

// Category is one of the fixed spending categories a transaction can carry.
type Category string

const (
	// CategoryHousing covers rent, mortgage and other housing costs.
	CategoryHousing Category = "Housing"
	// CategoryFood covers groceries and dining.
	CategoryFood Category = "Food"
	// CategoryTransportation covers fuel, transit and vehicle costs.
	CategoryTransportation Category = "Transportation"
	// CategoryEntertainment covers leisure and subscriptions.
	CategoryEntertainment Category = "Entertainment"
	// CategoryHealthcare covers medical costs.
	CategoryHealthcare Category = "Healthcare"
	// CategoryShopping covers general retail purchases.
	CategoryShopping Category = "Shopping"
	// CategoryUtilities covers power, water, phone and internet.
	CategoryUtilities Category = "Utilities"
	// CategoryIncome is the conventional category for income transactions.
	CategoryIncome Category = "Income"
	// CategoryOther is the fallback for anything unrecognized.
	CategoryOther Category = "Other"
)

var allCategories = []Category{
	CategoryHousing,
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryShopping,
	CategoryUtilities,
	CategoryIncome,
	CategoryOther,
}

// Categories returns the category enumeration in its canonical order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// IsValidCategory reports whether s names a category exactly.
func IsValidCategory(s string) bool {
	for _, c := range allCategories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// ParseCategory maps s onto the enumeration.
//
// Unrecognized values are coerced to CategoryOther instead of being rejected;
// a bad category label alone never invalidates an imported row.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	if IsValidCategory(s) {
		return Category(s)
	}
	return CategoryOther
}

// CategoryIndex returns the position of c in the canonical order, or len of the
// enumeration for unknown values.
func CategoryIndex(c Category) int {
	for i, known := range allCategories {
		if known == c {
			return i
		}
	}
	return len(allCategories)
}
