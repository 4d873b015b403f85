package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/csvcodec"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
	"github.com/Veraticus/budget-buddy/internal/sheets"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t       *testing.T
	dir     string
	dbPath  string
	cfgPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		t:       t,
		dir:     dir,
		dbPath:  filepath.Join(dir, "budget.db"),
		cfgPath: filepath.Join(dir, "config.yaml"),
	}

	cfg := fmt.Sprintf("database:\n  path: %s\nlogging:\n  level: error\n", env.dbPath)
	require.NoError(t, os.WriteFile(env.cfgPath, []byte(cfg), 0600))
	t.Cleanup(viper.Reset)

	return env
}

func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, "budget %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) ledger() []model.Transaction {
	e.t.Helper()
	store, err := storage.NewSQLiteStorage(e.dbPath)
	require.NoError(e.t, err)
	defer func() { _ = store.Close() }()
	require.NoError(e.t, store.Migrate(context.Background()))

	txns, err := store.LoadTransactions(context.Background())
	require.NoError(e.t, err)
	return txns
}

func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const sampleCSV = "date,amount,description,category,type\n" +
	"2024-01-01,1000,Salary,Income,income\n" +
	"2024-01-02,200,Groceries,Food,expense\n"

func TestAddListSummary(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("add", "--date", "2024-01-05", "--amount", "42.5", "--description", "Dinner out", "--category", "food")
	assert.Contains(t, out, "Added Dinner out")

	env.mustRun("add", "--date", "2024-01-01", "--amount", "1000", "--description", "Salary", "--category", "Income", "--type", "income")

	txns := env.ledger()
	require.Len(t, txns, 2)
	assert.Equal(t, model.CategoryFood, txns[0].Category)
	assert.Equal(t, model.TypeExpense, txns[0].Type)

	out = env.mustRun("list")
	assert.Less(t, strings.Index(out, "Dinner out"), strings.Index(out, "Salary"))
	assert.Contains(t, out, "-$42.50")

	out = env.mustRun("list", "--type", "income")
	assert.NotContains(t, out, "Dinner out")
	assert.Contains(t, out, "Salary")

	out = env.mustRun("list", "--search", "dinner")
	assert.Contains(t, out, "Dinner out")
	assert.NotContains(t, out, "Salary")

	out = env.mustRun("summary")
	assert.Contains(t, out, "$1000.00")
	assert.Contains(t, out, "$42.50")
	assert.Contains(t, out, "$957.50")
}

func TestAdd_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
		args    []string
	}{
		{name: "negative amount", args: []string{"--amount", "-5", "--description", "x"}, wantErr: model.ErrInvalidAmount},
		{name: "zero amount", args: []string{"--amount", "0", "--description", "x"}, wantErr: model.ErrInvalidAmount},
		{name: "unknown category", args: []string{"--amount", "5", "--description", "x", "--category", "Travel"}, wantErr: model.ErrInvalidCategory},
		{name: "unknown type", args: []string{"--amount", "5", "--description", "x", "--type", "refund"}, wantErr: model.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.run("", append([]string{"add"}, tt.args...)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
			assert.Empty(t, env.ledger())
		})
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "--amount", "10", "--description", "Coffee")
	env.mustRun("add", "--amount", "20", "--description", "Lunch")

	txns := env.ledger()
	require.Len(t, txns, 2)

	out := env.mustRun("delete", txns[0].ID)
	assert.Contains(t, out, "Deleted "+txns[0].ID)

	remaining := env.ledger()
	require.Len(t, remaining, 1)
	assert.Equal(t, txns[1].ID, remaining[0].ID)

	_, err := env.run("", "delete", "missing-id")
	assert.ErrorIs(t, err, model.ErrTransactionMissing)
	assert.Len(t, env.ledger(), 1)
}

func TestImportCSV(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile("bank.csv", sampleCSV)

	out := env.mustRun("import", path, "--preview")
	assert.Contains(t, out, "Preview: 2 transactions parsed")
	assert.Contains(t, out, "Groceries")
	assert.NoFileExists(t, env.dbPath)

	out = env.mustRun("import", path)
	assert.Contains(t, out, "2 new transactions imported")
	assert.Len(t, env.ledger(), 2)

	out = env.mustRun("import", path)
	assert.Contains(t, out, "No new transactions")
	assert.Len(t, env.ledger(), 2)

	out = env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "auto-import-")
}

func TestImportCSV_FromStdinWithSkippedRows(t *testing.T) {
	env := newTestEnv(t)
	input := sampleCSV + "2024-01-03,abc,Broken,Food,expense\n"

	out, err := env.run(input, "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "row 4 skipped")
	assert.Contains(t, out, "2 new transactions imported")
}

func TestImportCSV_AutoCheckpointDisabled(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("BUDGET_CHECKPOINT_AUTO", "false")
	path := env.writeFile("bank.csv", sampleCSV)

	env.mustRun("import", path)

	out := env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "No checkpoints found.")
}

func TestImportCSV_FatalErrors(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, err error)
		name    string
		content string
	}{
		{
			name:    "missing columns",
			content: "date,amount,description\n2024-01-01,5,Coffee\n",
			check: func(t *testing.T, err error) {
				t.Helper()
				var missing *csvcodec.MissingColumnsError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, []string{"category", "type"}, missing.Missing)
				assert.Contains(t, common.UserMessage(err), "missing required columns")
			},
		},
		{
			name:    "no valid rows",
			content: "date,amount,description,category,type\n2024-01-01,abc,Coffee,Food,expense\n",
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.ErrorIs(t, err, csvcodec.ErrEmptyImport)
				assert.Contains(t, common.UserMessage(err), "header row")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			path := env.writeFile("bad.csv", tt.content)

			_, err := env.run("", "import", path)
			require.Error(t, err)
			tt.check(t, err)
			assert.Empty(t, env.ledger())
		})
	}
}

func TestImportOFX(t *testing.T) {
	env := newTestEnv(t)
	path, err := filepath.Abs(filepath.Join("testdata", "statement.qfx"))
	require.NoError(t, err)

	out := env.mustRun("import-ofx", path, "--preview")
	assert.Contains(t, out, "Preview: 2 transactions parsed")
	assert.NoFileExists(t, env.dbPath)

	out = env.mustRun("import-ofx", filepath.Join(filepath.Dir(path), "*.qfx"))
	assert.Contains(t, out, "2 new transactions imported")

	txns := env.ledger()
	require.Len(t, txns, 2)
	assert.Equal(t, "2024-01-15", txns[0].Date)
	assert.Equal(t, 25.5, txns[0].Amount)
	assert.Equal(t, model.TypeExpense, txns[0].Type)
	assert.Equal(t, model.TypeIncome, txns[1].Type)

	out = env.mustRun("import-ofx", path)
	assert.Contains(t, out, "No new transactions")
}

func TestImportOFX_ListAccounts(t *testing.T) {
	env := newTestEnv(t)
	path, err := filepath.Abs(filepath.Join("testdata", "statement.qfx"))
	require.NoError(t, err)

	out := env.mustRun("import-ofx", path, "--list-accounts")
	assert.Equal(t, "statement.qfx: 1234567890\n", out)
	assert.NoFileExists(t, env.dbPath)
}

func TestImportOFX_NoFiles(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "import-ofx", filepath.Join(env.dir, "*.ofx"))
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "No files found")
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("import", env.writeFile("bank.csv", sampleCSV))

	out := env.mustRun("export", "--output", "-")
	assert.True(t, strings.HasPrefix(out, "date,amount,description,category,type\n"))
	assert.Contains(t, out, "2024-01-02,200,Groceries,Food,expense")

	target := filepath.Join(env.dir, "out.csv")
	out = env.mustRun("export", "--output", target)
	assert.Contains(t, out, "Exported 2 transactions")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	parsed, err := csvcodec.Parse(string(data))
	require.NoError(t, err)
	assert.Len(t, parsed.Transactions, 2)
}

func TestExportSheets(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("import", env.writeFile("bank.csv", sampleCSV))

	mock := sheets.NewMockWriter()
	original := newLedgerWriter
	newLedgerWriter = func(*cobra.Command) (service.LedgerWriter, error) { return mock, nil }
	t.Cleanup(func() { newLedgerWriter = original })

	out := env.mustRun("export", "--sheets")
	assert.Contains(t, out, "Exported 2 transactions to Google Sheets")

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0].Transactions, 2)
	assert.Equal(t, 1000.0, calls[0].Summary.TotalIncome)
	assert.Equal(t, 200.0, calls[0].Summary.TotalExpenses)

	mock.SetWriteError(errors.New("quota exceeded"))
	_, err := env.run("", "export", "--sheets")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestExportSheets_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(key, "")
	}

	_, err := env.run("", "export", "--sheets")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.Contains(t, common.UserMessage(err), "budget sheets auth")
}

func TestTips(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("import", env.writeFile("bank.csv", sampleCSV))

	out := env.mustRun("tips")
	assert.Contains(t, out, "Budget tips")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "Food")
}

func TestBudgetCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("import", env.writeFile("bank.csv", sampleCSV))

	out := env.mustRun("budget", "set", "food", "150")
	assert.Contains(t, out, "Food budget set to $150.00")
	env.mustRun("budget", "set", "Housing", "900")
	env.mustRun("budget", "set", "Food", "250")

	out = env.mustRun("budget", "show")
	assert.Contains(t, out, "$250.00")
	assert.Contains(t, out, "$1150.00")
	assert.NotContains(t, out, "$150.00")

	out = env.mustRun("budget", "compare")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "$50.00")

	_, err := env.run("", "budget", "set", "--", "Food", "-1")
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
	_, err = env.run("", "budget", "set", "Food", "lots")
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	env.mustRun("budget", "clear")
	out = env.mustRun("budget", "show")
	assert.Contains(t, out, "No budget set.")
}

func TestCheckpointCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("add", "--amount", "10", "--description", "Coffee")

	out := env.mustRun("checkpoint", "create", "--tag", "before", "--description", "one coffee")
	assert.Contains(t, out, "Created checkpoint before")
	assert.Contains(t, out, "one coffee")

	_, err := env.run("", "checkpoint", "create", "--tag", "before")
	assert.ErrorIs(t, err, storage.ErrCheckpointExists)

	env.mustRun("add", "--amount", "20", "--description", "Lunch")
	require.Len(t, env.ledger(), 2)

	out, err = env.run("n\n", "checkpoint", "restore", "before")
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")
	assert.Len(t, env.ledger(), 2)

	out, err = env.run("y\n", "checkpoint", "restore", "before")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored from checkpoint before")

	txns := env.ledger()
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee", txns[0].Description)

	out = env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "before")

	env.mustRun("checkpoint", "delete", "before", "--force")
	out = env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "No checkpoints found.")

	_, err = env.run("", "checkpoint", "restore", "before", "--force")
	assert.ErrorIs(t, err, storage.ErrCheckpointNotFound)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Equal(t, "budget-buddy dev\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("", "--log-level", "loud", "version")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
