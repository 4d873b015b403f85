package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/spf13/cobra"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage per-category spending allocations",
		Example: `  budget budget set Food 400
  budget budget compare`,
	}

	cmd.AddCommand(budgetSetCmd(), budgetShowCmd(), budgetCompareCmd(), budgetClearCmd())

	return cmd
}

func budgetSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set the allocation for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategoryFlag(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return common.NewUserError(fmt.Sprintf("%q is not a valid amount", args[1]), model.ErrInvalidAmount)
			}

			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				budget, err := store.LoadBudget(ctx)
				if err != nil {
					return err
				}

				budget = budget.Set(category, amount)
				if err := budget.Validate(); err != nil {
					return common.NewUserError(fmt.Sprintf("Budget not saved: %v", err), err)
				}
				if err := store.SaveBudget(ctx, budget); err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(),
					cli.FormatSuccess(fmt.Sprintf("%s budget set to %s", category, cli.FormatMoney(amount))))
				return err
			})
		},
	}
}

func budgetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				budget, err := store.LoadBudget(ctx)
				if err != nil {
					return err
				}
				return cli.RenderBudget(cmd.OutOrStdout(), budget)
			})
		},
	}
}

func budgetCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "Compare spending against allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				budget, err := store.LoadBudget(ctx)
				if err != nil {
					return err
				}
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}

				rows := ledger.CompareBudget(budget, ledger.SpendingByCategory(txns))
				return cli.RenderBudgetComparison(cmd.OutOrStdout(), rows)
			})
		},
	}
}

func budgetClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				if err := store.SaveBudget(ctx, nil); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Budget cleared"))
				return err
			})
		},
	}
}
