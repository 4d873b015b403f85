package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: cli.WalletIcon + " Personal transaction ledger and budget tracker",
		Long: `budget-buddy keeps a local ledger of your income and expenses.

Add transactions by hand or import them from CSV and OFX/QFX exports, review
totals and category breakdowns, compare spending against a budget, and export
the ledger to CSV or Google Sheets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/budget/config.yaml)")
	cmd.PersistentFlags().String("db", "", "database path (default: $HOME/.local/share/budget/budget.db)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = viper.BindPFlag("database.path", cmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.AddCommand(
		addCmd(),
		deleteCmd(),
		listCmd(),
		summaryCmd(),
		tipsCmd(),
		importCmd(),
		importOFXCmd(),
		exportCmd(),
		budgetCmd(),
		checkpointCmd(),
		sheetsCmd(),
		versionCmd(),
	)

	return cmd
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx := interrupts.HandleInterrupts(context.Background(), "")

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) || !interrupts.WasInterrupted() {
			fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		}
		os.Exit(1)
	}
}

func initConfig(cfgFile string) error {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(config.ExpandPath(cfgFile))
	} else {
		viper.AddConfigPath(config.ExpandPath(config.DefaultConfigDir))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}
	return common.SetupLogger(level, viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "budget-buddy %s\n", version)
		},
	}
}
