// Package csvcodec converts between ledger transactions and CSV text.
//
// The column contract is fixed: date, amount, description, category, type.
// On input the columns may appear in any order and are matched
// case-insensitively; on output they are always written in that order.
package csvcodec

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/budget-buddy/internal/model"
)

// Column names.
const (
	ColumnDate        = "date"
	ColumnAmount      = "amount"
	ColumnDescription = "description"
	ColumnCategory    = "category"
	ColumnType        = "type"
)

// RequiredColumns lists the header columns every import must carry, in
// export order.
var RequiredColumns = []string{ColumnDate, ColumnAmount, ColumnDescription, ColumnCategory, ColumnType}

// ParseResult holds the rows that survived validation and the ones that did not.
type ParseResult struct {
	Transactions []model.Transaction
	Skipped      []MalformedRowError
}

type columnIndex map[string]int

// Parse reads CSV text into freshly identified transactions.
//
// Leniency rules: an unknown category becomes Other, and a type other than
// income/expense is derived from the sign of the raw amount. Rows with the
// wrong field count or a non-numeric amount are skipped and reported in
// ParseResult.Skipped. A missing required column returns *MissingColumnsError;
// zero surviving rows returns *EmptyImportError.
func Parse(text string) (ParseResult, error) {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return ParseResult{}, &EmptyImportError{}
	}

	header := splitHeader(lines[0].text)
	columns, err := indexColumns(header)
	if err != nil {
		return ParseResult{}, err
	}

	var result ParseResult
	for _, line := range lines[1:] {
		txn, rowErr := parseRow(line.text, len(header), columns)
		if rowErr != nil {
			skipped := MalformedRowError{Line: line.number, Err: rowErr}
			slog.Warn("Skipping CSV row", "line", line.number, "error", rowErr)
			result.Skipped = append(result.Skipped, skipped)
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	if len(result.Transactions) == 0 {
		return result, &EmptyImportError{Skipped: result.Skipped}
	}

	slog.Debug("Parsed CSV",
		"transactions", len(result.Transactions),
		"skipped", len(result.Skipped))

	return result, nil
}

// Generate renders txns as CSV text in the order given.
//
// The description is wrapped in double quotes when it contains a comma.
// Embedded quotes and newlines are written as-is and will not survive a
// round trip. Parse trims every field, so leading or trailing spaces in a
// description are lost as well.
func Generate(txns []model.Transaction) string {
	var b strings.Builder
	b.WriteString(strings.Join(RequiredColumns, ","))
	b.WriteByte('\n')

	for _, txn := range txns {
		description := txn.Description
		if strings.Contains(description, ",") {
			description = `"` + description + `"`
		}
		row := []string{
			txn.Date,
			strconv.FormatFloat(math.Abs(txn.Amount), 'f', -1, 64),
			description,
			string(txn.Category),
			string(txn.Type),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	return b.String()
}

// ExportFilename returns the conventional export name for the given day,
// e.g. budgetbuddy_transactions_2024-03-01.csv.
func ExportFilename(product string, day time.Time) string {
	return fmt.Sprintf("%s_transactions_%s.csv", product, day.Format("2006-01-02"))
}

type numberedLine struct {
	text   string
	number int
}

// nonEmptyLines drops a leading UTF-8 byte order mark, which spreadsheet
// exports often prepend to the header.
func nonEmptyLines(text string) []numberedLine {
	text = strings.TrimPrefix(text, "\ufeff")
	raw := strings.Split(text, "\n")
	lines := make([]numberedLine, 0, len(raw))
	for i, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, numberedLine{text: line, number: i + 1})
	}
	return lines
}

func splitHeader(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func indexColumns(header []string) (columnIndex, error) {
	columns := make(columnIndex, len(RequiredColumns))
	for i, name := range header {
		key := strings.ToLower(name)
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	return columns, nil
}

// splitRow splits one line on commas. A field wrapped in double quotes may
// contain commas; stray quotes inside unquoted fields are kept literally.
func splitRow(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

func parseRow(line string, width int, columns columnIndex) (model.Transaction, error) {
	fields, err := splitRow(line)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(fields) != width {
		return model.Transaction{}, fmt.Errorf("%w: got %d fields, want %d", ErrFieldCount, len(fields), width)
	}

	rawAmount := fields[columns[ColumnAmount]]
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return model.Transaction{}, &InvalidAmountError{Value: rawAmount}
	}

	return model.Transaction{
		ID:          model.NewID(),
		Date:        fields[columns[ColumnDate]],
		Amount:      math.Abs(amount),
		Description: fields[columns[ColumnDescription]],
		Category:    model.ParseCategory(fields[columns[ColumnCategory]]),
		Type:        model.ResolveType(fields[columns[ColumnType]], amount),
	}, nil
}
