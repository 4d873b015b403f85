package ledger

import (
	"testing"

	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareBudget(t *testing.T) {
	budget := model.Budget{
		{Category: model.CategoryHousing, Amount: 1000},
		{Category: model.CategoryFood, Amount: 300},
	}
	spending := map[model.Category]float64{
		model.CategoryFood:     450,
		model.CategoryShopping: 80,
	}

	rows := CompareBudget(budget, spending)
	require.Len(t, rows, 3)

	assert.Equal(t, model.CategoryHousing, rows[0].Category)
	assert.Equal(t, 1000.0, rows[0].Remaining)
	assert.Zero(t, rows[0].PercentUsed)
	assert.False(t, rows[0].OverBudget)

	assert.Equal(t, model.CategoryFood, rows[1].Category)
	assert.Equal(t, -150.0, rows[1].Remaining)
	assert.InDelta(t, 150.0, rows[1].PercentUsed, 1e-9)
	assert.True(t, rows[1].OverBudget)

	assert.Equal(t, model.CategoryShopping, rows[2].Category)
	assert.Zero(t, rows[2].Budgeted)
	assert.True(t, rows[2].OverBudget)
}

func TestCompareBudget_Empty(t *testing.T) {
	assert.Empty(t, CompareBudget(nil, nil))
}

func TestCompareBudget_DuplicateEntriesUseFirst(t *testing.T) {
	budget := model.Budget{
		{Category: model.CategoryFood, Amount: 100},
		{Category: model.CategoryFood, Amount: 500},
	}
	rows := CompareBudget(budget, map[model.Category]float64{model.CategoryFood: 50})
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].Budgeted)
}
