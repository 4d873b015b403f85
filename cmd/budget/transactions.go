package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		date        string
		amount      float64
		description string
		category    string
		txnType     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction by hand",
		Example: `  budget add --amount 42.50 --description "Groceries" --category Food
  budget add --date 2024-01-31 --amount 2500 --description Salary --category Income --type income`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedCategory, err := parseCategoryFlag(category)
			if err != nil {
				return err
			}
			parsedType, err := parseTypeFlag(txnType)
			if err != nil {
				return err
			}

			txn, err := model.NewTransaction(date, amount, description, parsedCategory, parsedType)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Transaction not added: %v", err), err)
			}

			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}
				if err := store.SaveTransactions(ctx, append(txns, txn)); err != nil {
					return err
				}

				slog.Debug("Added transaction", "id", txn.ID)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					"Added",
					txn.Description,
					cli.InfoStyle.Render(txn.ID))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "transaction date")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount, greater than zero")
	cmd.Flags().StringVar(&description, "description", "", "what the transaction was for")
	cmd.Flags().StringVar(&category, "category", string(model.CategoryOther), "category: "+categoryNames())
	cmd.Flags().StringVar(&txnType, "type", string(model.TypeExpense), "income or expense")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}

				remaining, found := ledger.Remove(txns, args[0])
				if !found {
					return common.NewUserError(
						fmt.Sprintf("No transaction with id %s. Run `budget list` to see ids", args[0]),
						model.ErrTransactionMissing,
					)
				}
				if err := store.SaveTransactions(ctx, remaining); err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
				return err
			})
		},
	}
}

func listCmd() *cobra.Command {
	var (
		category string
		txnType  string
		query    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts ledger.FilterOptions
			if category != "" {
				parsed, err := parseCategoryFlag(category)
				if err != nil {
					return err
				}
				opts.Category = parsed
			}
			if txnType != "" {
				parsed, err := parseTypeFlag(txnType)
				if err != nil {
					return err
				}
				opts.Type = parsed
			}
			opts.Query = query

			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}
				return cli.RenderTransactions(cmd.OutOrStdout(), ledger.Filter(txns, opts))
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&txnType, "type", "", "only income or expense")
	cmd.Flags().StringVarP(&query, "search", "s", "", "match description or category")

	return cmd
}
