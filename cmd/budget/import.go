package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/config"
	"github.com/Veraticus/budget-buddy/internal/importer"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/ofx"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newImporter(store *storage.SQLiteStorage) (*importer.Importer, error) {
	if !viper.GetBool("checkpoint.auto") {
		return importer.NewImporter(store), nil
	}
	manager, err := checkpointManager(store)
	if err != nil {
		return nil, err
	}
	return importer.NewImporter(store, importer.WithSnapshotter(manager)), nil
}

// withImporter runs fn against an importer over the configured database. A
// preview runs against an empty in-memory store, so no database is created.
func withImporter(ctx context.Context, preview bool, fn func(imp *importer.Importer) error) error {
	if preview {
		return fn(importer.NewImporter(storage.NewMemoryStorage()))
	}

	return withStorage(ctx, func(store *storage.SQLiteStorage) error {
		imp, err := newImporter(store)
		if err != nil {
			return err
		}
		return fn(imp)
	})
}

func importCmd() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV file",
		Long: `Import transactions from a CSV file with the columns
date, amount, description, category, type (any order, any case).

Rows already in the ledger (same date, description and amount) are skipped.
Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withImporter(ctx, preview, func(imp *importer.Importer) error {
				report, err := imp.ImportCSV(ctx, text, preview)
				if err != nil {
					return importError(err)
				}

				out := cmd.OutOrStdout()
				for _, skipped := range report.Skipped {
					_, _ = fmt.Fprintln(out, cli.FormatWarning(skipped.Error()))
				}
				return printImportResult(out, report.ImportResult)
			})
		},
	}

	cmd.Flags().BoolVarP(&preview, "preview", "p", false, "show what would be imported without saving")

	return cmd
}

func importOFXCmd() *cobra.Command {
	var preview, listAccounts bool

	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX files",
		Example: `  budget import-ofx ~/Downloads/chase_jan_2024.qfx
  budget import-ofx ~/Downloads/*.qfx --preview
  budget import-ofx ~/Downloads/*.qfx --list-accounts`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			if listAccounts {
				return printOFXAccounts(cmd, files)
			}

			candidates, err := parseOFXFiles(cmd, files)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				return common.NewUserError("No transactions found in the given files", ofx.ErrNoTransactions)
			}

			ctx := cmd.Context()
			return withImporter(ctx, preview, func(imp *importer.Importer) error {
				result, err := imp.ImportTransactions(ctx, candidates, preview)
				if err != nil {
					return err
				}
				return printImportResult(cmd.OutOrStdout(), result)
			})
		},
	}

	cmd.Flags().BoolVarP(&preview, "preview", "p", false, "show what would be imported without saving")
	cmd.Flags().BoolVar(&listAccounts, "list-accounts", false, "list the account ids in each file and exit")
	cmd.MarkFlagsMutuallyExclusive("preview", "list-accounts")

	return cmd
}

// expandFiles resolves glob patterns; a pattern with no match is kept when
// it names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
			continue
		}
		slog.Warn("No files found matching pattern", "pattern", pattern)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", os.ErrNotExist)
	}
	return files, nil
}

// parseOFXFiles parses every file, skipping the ones that fail with a warning.
func parseOFXFiles(cmd *cobra.Command, files []string) ([]model.Transaction, error) {
	parser := ofx.NewParser()
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("Parsing OFX files"),
		progressbar.OptionClearOnFinish(),
	)

	var candidates []model.Transaction
	for _, path := range files {
		if err := cmd.Context().Err(); err != nil {
			return nil, err
		}

		txns, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			slog.Warn("Skipping OFX file", "file", filepath.Base(path), "error", err)
		} else {
			slog.Debug("Parsed OFX file", "file", filepath.Base(path), "transactions", len(txns))
			candidates = append(candidates, txns...)
		}

		if err := bar.Add(1); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	}
	_ = bar.Finish()

	return candidates, nil
}

// printOFXAccounts lists the account ids found in each file without importing.
func printOFXAccounts(cmd *cobra.Command, files []string) error {
	parser := ofx.NewParser()
	out := cmd.OutOrStdout()

	for _, path := range files {
		f, err := os.Open(path) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		accounts, err := parser.GetAccounts(cmd.Context(), f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to read accounts from %s: %w", filepath.Base(path), err)
		}

		if len(accounts) == 0 {
			accounts = []string{"(none)"}
		}
		if _, err := fmt.Fprintf(out, "%s: %s\n", filepath.Base(path), strings.Join(accounts, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(cmd.Context(), f)
}

func printImportResult(out io.Writer, result ledger.ImportResult) error {
	switch result.Kind {
	case ledger.ImportKindImported:
		if _, err := fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Preview: %d transactions parsed, nothing saved", result.Count))); err != nil {
			return err
		}
		return cli.RenderTransactions(out, result.Added)
	case ledger.ImportKindAdded:
		msg := fmt.Sprintf("%d new transactions imported", result.Count)
		if result.Duplicates > 0 {
			msg += fmt.Sprintf(" (%d duplicates skipped)", result.Duplicates)
		}
		_, err := fmt.Fprintln(out, cli.FormatSuccess(msg))
		return err
	default:
		_, err := fmt.Fprintln(out, cli.FormatInfo("No new transactions"))
		return err
	}
}
