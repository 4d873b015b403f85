package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/config"
	"github.com/Veraticus/budget-buddy/internal/csvcodec"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
	"github.com/Veraticus/budget-buddy/internal/sheets"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/Veraticus/budget-buddy/internal/tips"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals, balance and spending by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}
				return cli.RenderSummary(cmd.OutOrStdout(), ledger.Summarize(txns))
			})
		},
	}
}

func tipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "Suggest budget improvements from your spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render(cli.TipIcon+" Budget tips"))
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), tips.Generate(ledger.Summarize(txns)))
				return err
			})
		},
	}
}

// newLedgerWriter is replaced in tests.
var newLedgerWriter = func(cmd *cobra.Command) (service.LedgerWriter, error) {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return nil, common.NewUserError("Google Sheets is not configured. Run `budget sheets auth` or set sheets.* in your config", err)
	}
	writer, err := sheets.NewWriter(cmd.Context(), *cfg, nil)
	if err != nil {
		return nil, err
	}
	return writer, nil
}

func exportCmd() *cobra.Command {
	var (
		output   string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger to CSV or Google Sheets",
		Example: `  budget export                  # budgetbuddy_transactions_<date>.csv
  budget export --output - | head
  budget export --sheets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				txns, err := store.LoadTransactions(ctx)
				if err != nil {
					return err
				}

				if toSheets {
					return exportSheets(cmd, txns)
				}
				return exportCSV(cmd, txns, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or - for stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "write to Google Sheets instead of CSV")
	cmd.MarkFlagsMutuallyExclusive("output", "sheets")

	return cmd
}

func exportCSV(cmd *cobra.Command, txns []model.Transaction, output string) error {
	text := csvcodec.Generate(txns)
	if output == "-" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	if output == "" {
		output = csvcodec.ExportFilename(viper.GetString("export.product"), time.Now())
	}
	output = config.ExpandPath(output)

	if err := os.WriteFile(output, []byte(text), 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(),
		cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(txns), output)))
	return err
}

func exportSheets(cmd *cobra.Command, txns []model.Transaction) error {
	writer, err := newLedgerWriter(cmd)
	if err != nil {
		return err
	}

	if err := writer.Write(cmd.Context(), txns, ledger.Summarize(txns)); err != nil {
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(),
		cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to Google Sheets", len(txns))))
	return err
}
