package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MaxAutoCheckpoints is how many automatic checkpoints are kept.
const MaxAutoCheckpoints = 5

// CheckpointManager handles database checkpoint operations.
type CheckpointManager struct {
	db             *sql.DB
	now            func() time.Time
	dbPath         string
	checkpointsDir string
}

// CheckpointInfo describes one checkpoint. It is stored as a JSON file next
// to the snapshot.
type CheckpointInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
	IsAuto        bool           `json:"is_auto"`
}

// Transactions returns the number of ledger rows captured.
func (c CheckpointInfo) Transactions() int {
	return c.RowCounts["transactions"]
}

// BudgetEntries returns the number of budget rows captured.
func (c CheckpointInfo) BudgetEntries() int {
	return c.RowCounts["budget"]
}

// Common errors.
var (
	ErrCheckpointNotFound    = errors.New("checkpoint not found")
	ErrCheckpointCorrupted   = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists      = errors.New("checkpoint already exists")
	ErrInvalidCheckpointID   = errors.New("invalid checkpoint id: cannot contain path separators")
	ErrCheckpointUnsupported = errors.New("checkpoints not supported")
)

// NewCheckpointManager creates a new checkpoint manager. Checkpoints live in
// a "checkpoints" directory beside the database file.
func NewCheckpointManager(db *sql.DB, dbPath string) (*CheckpointManager, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	checkpointsDir := filepath.Join(filepath.Dir(absPath), "checkpoints")

	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		db:             db,
		dbPath:         absPath,
		checkpointsDir: checkpointsDir,
		now:            time.Now,
	}, nil
}

// Dir returns the directory checkpoints are written to.
func (cm *CheckpointManager) Dir() string {
	return cm.checkpointsDir
}

// Create creates a new checkpoint with the given tag and description. An
// empty tag gets a timestamped name.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointInfo, error) {
	return cm.create(ctx, tag, description, false)
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointInfo, error) {
	now := cm.now()
	if tag == "" {
		tag = fmt.Sprintf("checkpoint-%s", now.Format("2006-01-02-150405"))
	}
	if err := validateCheckpointID(tag); err != nil {
		return nil, err
	}

	checkpointPath := cm.snapshotPath(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointExists, tag)
	}

	var schemaVersion int
	if err := cm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	rowCounts := cm.collectRowCounts(ctx)

	if err := cm.backupDatabase(ctx, checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	stat, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	info := CheckpointInfo{
		ID:            tag,
		CreatedAt:     now,
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
		IsAuto:        auto,
	}

	if err := cm.saveMetadata(cm.metadataPath(tag), info); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Debug("Created checkpoint", "id", tag, "auto", auto, "size", info.FileSize)
	return &info, nil
}

// List returns all checkpoints, newest first.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointInfo, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		info, err := cm.loadMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("Skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, *info)
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})

	return checkpoints, nil
}

// Info retrieves information about a specific checkpoint.
func (cm *CheckpointManager) Info(_ context.Context, checkpointID string) (*CheckpointInfo, error) {
	if err := validateCheckpointID(checkpointID); err != nil {
		return nil, err
	}

	info, err := cm.loadMetadata(cm.metadataPath(checkpointID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
		}
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	return info, nil
}

// Restore replaces the database file with a checkpoint.
//
// The manager's database handle is closed first; the owning storage must be
// reopened before further use.
func (cm *CheckpointManager) Restore(ctx context.Context, checkpointID string) error {
	if _, err := cm.Info(ctx, checkpointID); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(checkpointID)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := verifyIntegrity(checkpointPath); err != nil {
		return fmt.Errorf("%w: %v", ErrCheckpointCorrupted, err)
	}

	if err := cm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := cm.dbPath + ".restore-backup"
	if err := copyFile(cm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	// Stale WAL frames would otherwise be replayed onto the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(cm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	if err := copyFile(checkpointPath, cm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, cm.dbPath); restoreErr != nil {
			slog.Error("failed to restore backup after checkpoint restore failure", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	slog.Info("Restored checkpoint", "id", checkpointID)
	return nil
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(_ context.Context, checkpointID string) error {
	if err := validateCheckpointID(checkpointID); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(checkpointID)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCheckpointNotFound, checkpointID)
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}

	metadataPath := cm.metadataPath(checkpointID)
	if err := os.Remove(metadataPath); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "path", metadataPath)
	}

	return nil
}

// AutoCheckpoint creates an automatic checkpoint named after reason and
// prunes automatic checkpoints beyond MaxAutoCheckpoints.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, reason string) error {
	tag := fmt.Sprintf("auto-%s-%s", reason, cm.now().Format("2006-01-02-150405.000"))
	description := fmt.Sprintf("Automatic checkpoint before %s", reason)

	if _, err := cm.create(ctx, tag, description, true); err != nil {
		return fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.cleanupOldAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}

	return nil
}

func (cm *CheckpointManager) cleanupOldAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	autoCount := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount <= MaxAutoCheckpoints {
			continue
		}
		if err := cm.Delete(ctx, cp.ID); err != nil {
			slog.Debug("failed to delete old auto-checkpoint during cleanup", "error", err, "checkpoint", cp.ID)
		}
	}

	return nil
}

func (cm *CheckpointManager) snapshotPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".db")
}

func (cm *CheckpointManager) metadataPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".json")
}

func (cm *CheckpointManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int)

	tableQueries := map[string]string{
		"transactions": "SELECT COUNT(*) FROM transactions",
		"budget":       "SELECT COUNT(*) FROM budget",
	}

	for table, query := range tableQueries {
		var count int
		if err := cm.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			// Table might not exist before migrations ran
			counts[table] = 0
			continue
		}
		counts[table] = count
	}

	return counts
}

func (cm *CheckpointManager) backupDatabase(ctx context.Context, destPath string) error {
	if _, err := cm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint WAL: %w", err)
	}

	// VACUUM INTO takes a string literal, so quotes would break out of it.
	if strings.ContainsAny(destPath, `'";`) {
		return fmt.Errorf("invalid destination path: contains forbidden characters")
	}
	// #nosec G201 - destPath is validated above
	query := fmt.Sprintf("VACUUM INTO '%s'", destPath)
	if _, err := cm.db.ExecContext(ctx, query); err != nil {
		slog.Debug("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(cm.dbPath, destPath)
	}

	return nil
}

func (cm *CheckpointManager) saveMetadata(path string, info CheckpointInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (cm *CheckpointManager) loadMetadata(path string) (*CheckpointInfo, error) {
	// #nosec G304 - path is built from a validated checkpoint id
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var info CheckpointInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func validateCheckpointID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidCheckpointID, id)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// copyFile copies src over dst through a temporary file and a rename.
func copyFile(src, dst string) error {
	// #nosec G304 - paths come from the manager, not user input
	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	// #nosec G304 - tmpDst is derived from dst
	destination, err := os.Create(tmpDst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}

	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}
