package ledger

import "github.com/Veraticus/budget-buddy/internal/model"

// ImportKind tags the outcome of an import.
type ImportKind string

const (
	// ImportKindImported is a preview: candidates parsed, nothing merged.
	ImportKindImported ImportKind = "imported"
	// ImportKindAdded means at least one candidate was merged into the ledger.
	ImportKindAdded ImportKind = "added"
	// ImportKindNoop means every candidate was already present.
	ImportKindNoop ImportKind = "noop"
)

// ImportResult is the outcome of ImportMerge or Preview.
//
// For ImportKindImported, Added holds every candidate and Ledger is nil.
// For ImportKindAdded, Added holds the new entries and Ledger the merged set
// that should replace the stored ledger. For ImportKindNoop, Added is empty
// and Ledger is the unchanged existing set; callers should not persist it.
type ImportResult struct {
	Kind       ImportKind
	Added      []model.Transaction
	Ledger     []model.Transaction
	Count      int
	Duplicates int
}

// ImportMerge appends to existing every candidate that is not already in it.
//
// A candidate duplicates an existing entry when date, description and amount
// all match; category and type are ignored. Only the existing ledger is
// consulted, so two identical rows within one import are both kept.
func ImportMerge(candidates, existing []model.Transaction) ImportResult {
	merged := make([]model.Transaction, len(existing), len(existing)+len(candidates))
	copy(merged, existing)

	var added []model.Transaction
	duplicates := 0
	for _, candidate := range candidates {
		if containsEntry(existing, candidate) {
			duplicates++
			continue
		}
		merged = append(merged, candidate)
		added = append(added, candidate)
	}

	if len(added) == 0 {
		return ImportResult{
			Kind:       ImportKindNoop,
			Ledger:     merged,
			Duplicates: duplicates,
		}
	}

	return ImportResult{
		Kind:       ImportKindAdded,
		Added:      added,
		Ledger:     merged,
		Count:      len(added),
		Duplicates: duplicates,
	}
}

// Preview reports what an import would contain without consulting any ledger.
func Preview(candidates []model.Transaction) ImportResult {
	added := make([]model.Transaction, len(candidates))
	copy(added, candidates)
	return ImportResult{
		Kind:  ImportKindImported,
		Added: added,
		Count: len(added),
	}
}

func containsEntry(txns []model.Transaction, candidate model.Transaction) bool {
	for _, txn := range txns {
		if txn.SameEntry(candidate) {
			return true
		}
	}
	return false
}
