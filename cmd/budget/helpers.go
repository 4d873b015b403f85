package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/config"
	"github.com/Veraticus/budget-buddy/internal/csvcodec"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/spf13/viper"
)

// initStorage opens the configured database and brings its schema current.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath(viper.GetViper()))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		if errors.Is(err, common.ErrDatabaseCorrupted) {
			return nil, common.NewUserError("The database looks corrupted. Restore a checkpoint with: budget checkpoint restore <id>", err)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// withStorage runs fn against an open store and closes it afterwards.
func withStorage(ctx context.Context, fn func(store *storage.SQLiteStorage) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "Failed to close database", common.Fields{"path": store.Path()})
		}
	}()

	return fn(store)
}

func checkpointManager(store *storage.SQLiteStorage) (*storage.CheckpointManager, error) {
	manager, err := store.NewCheckpointManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return manager, nil
}

// parseCategoryFlag matches a category name case-insensitively. Unlike CSV
// import, an unknown name is rejected.
func parseCategoryFlag(value string) (model.Category, error) {
	value = strings.TrimSpace(value)
	for _, category := range model.Categories() {
		if strings.EqualFold(string(category), value) {
			return category, nil
		}
	}
	return "", common.NewUserError(
		fmt.Sprintf("Unknown category %q. Choose one of: %s", value, categoryNames()),
		model.ErrInvalidCategory,
	)
}

func parseTypeFlag(value string) (model.TransactionType, error) {
	txnType := model.TransactionType(strings.ToLower(strings.TrimSpace(value)))
	if !txnType.IsValid() {
		return "", common.NewUserError(
			fmt.Sprintf("Unknown type %q. Use income or expense", value),
			model.ErrInvalidType,
		)
	}
	return txnType, nil
}

func categoryNames() string {
	categories := model.Categories()
	names := make([]string, len(categories))
	for i, category := range categories {
		names[i] = string(category)
	}
	return strings.Join(names, ", ")
}

// readInput reads a named file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(config.ExpandPath(path)) // #nosec G304
	if err != nil {
		return "", common.NewUserError(fmt.Sprintf("Could not read %s", path), err)
	}
	return string(data), nil
}

// importError turns fatal codec errors into actionable messages.
func importError(err error) error {
	var missing *csvcodec.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return common.NewUserError(missing.Error(), err)
	case errors.Is(err, csvcodec.ErrEmptyImport):
		return common.NewUserError(err.Error()+". Check that the file has a header row and at least one valid transaction", err)
	default:
		return err
	}
}
