package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// LoadBudget returns the stored budget in the order it was saved.
func (s *SQLiteStorage) LoadBudget(ctx context.Context) (model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, amount FROM budget ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	defer func() { _ = rows.Close() }()

	budget := model.Budget{}
	for rows.Next() {
		var (
			category string
			amount   float64
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan budget entry: %w", err)
		}
		budget = append(budget, model.BudgetEntry{Category: model.Category(category), Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budget: %w", err)
	}

	return budget, nil
}

// SaveBudget replaces the stored budget. A nil or empty budget clears it.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := budget.Validate(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM budget`); err != nil {
			return fmt.Errorf("failed to clear budget: %w", err)
		}
		for i, entry := range budget {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO budget (category, amount, position) VALUES (?, ?, ?)`,
				string(entry.Category), entry.Amount, i,
			); err != nil {
				return fmt.Errorf("failed to insert budget entry %s: %w", entry.Category, err)
			}
		}
		return nil
	})
}
