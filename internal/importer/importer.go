// Package importer runs CSV and statement imports against a stored ledger:
// parse, reconcile against what is already stored, then save.
package importer

import (
	"context"
	"fmt"

	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/csvcodec"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
)

// Importer merges candidate transactions into a store.
type Importer struct {
	store       service.Storage
	snapshotter service.Snapshotter
}

// Option configures an Importer.
type Option func(*Importer)

// WithSnapshotter takes a snapshot of the store before any import that adds
// rows. A failed snapshot aborts the import.
func WithSnapshotter(s service.Snapshotter) Option {
	return func(i *Importer) {
		i.snapshotter = s
	}
}

// NewImporter creates an importer over store.
func NewImporter(store service.Storage, opts ...Option) *Importer {
	i := &Importer{store: store}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Report is the outcome of a CSV import, including rows the codec skipped.
type Report struct {
	Skipped []csvcodec.MalformedRowError
	ledger.ImportResult
}

// ImportCSV parses text and imports its rows. With preview set, the parsed
// rows are returned as an ImportKindImported result and nothing is read from
// or written to the store.
func (i *Importer) ImportCSV(ctx context.Context, text string, preview bool) (Report, error) {
	parsed, err := csvcodec.Parse(text)
	if err != nil {
		return Report{}, err
	}

	result, err := i.ImportTransactions(ctx, parsed.Transactions, preview)
	if err != nil {
		return Report{}, err
	}

	return Report{ImportResult: result, Skipped: parsed.Skipped}, nil
}

// ImportTransactions reconciles candidates with the stored ledger and saves
// the merged ledger when at least one candidate is new.
func (i *Importer) ImportTransactions(ctx context.Context, candidates []model.Transaction, preview bool) (ledger.ImportResult, error) {
	if preview {
		return ledger.Preview(candidates), nil
	}

	existing, err := i.store.LoadTransactions(ctx)
	if err != nil {
		return ledger.ImportResult{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	result := ledger.ImportMerge(candidates, existing)
	if result.Kind != ledger.ImportKindAdded {
		common.LogDebug("No new transactions to import", common.Fields{
			"candidates": len(candidates),
			"duplicates": result.Duplicates,
		})
		return result, nil
	}

	if i.snapshotter != nil {
		if err := i.snapshotter.AutoCheckpoint(ctx, "import"); err != nil {
			return ledger.ImportResult{}, fmt.Errorf("failed to snapshot before import: %w", err)
		}
	}

	if err := i.store.SaveTransactions(ctx, result.Ledger); err != nil {
		return ledger.ImportResult{}, fmt.Errorf("failed to save ledger: %w", err)
	}

	common.LogInfo("Imported transactions", common.Fields{
		"added":      result.Count,
		"duplicates": result.Duplicates,
		"total":      len(result.Ledger),
	})
	return result, nil
}
