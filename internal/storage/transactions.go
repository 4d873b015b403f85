package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// LoadTransactions returns the whole ledger in storage order.
func (s *SQLiteStorage) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return loadTransactions(ctx, s.db)
}

func loadTransactions(ctx context.Context, q queryable) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, amount, description, category, type
		FROM transactions
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		var (
			txn      model.Transaction
			category string
			txnType  string
		)
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Amount, &txn.Description, &category, &txnType); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Category = model.Category(category)
		txn.Type = model.TransactionType(txnType)
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// SaveTransactions replaces the stored ledger with transactions. The
// replacement is atomic: on any error the previous ledger is kept.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		return replaceTransactionsTx(ctx, tx, transactions)
	}); err != nil {
		return err
	}

	slog.Debug("Saved ledger", "transactions", len(transactions))
	return nil
}

func replaceTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, date, amount, description, category, type, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, txn := range transactions {
		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Date,
			txn.Amount,
			txn.Description,
			string(txn.Category),
			string(txn.Type),
			i,
		); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}

// TransactionCount returns the number of stored transactions.
func (s *SQLiteStorage) TransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
