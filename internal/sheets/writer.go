package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/ledger"
	"github.com/Veraticus/budget-buddy/internal/model"
	"github.com/Veraticus/budget-buddy/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheet layout constants shared by the value builder and the formatter.
const (
	sheetTitle          = "Ledger"
	transactionColumns  = 6
	amountColumn        = 4
	summaryHeaderRows   = 2
	currencyPattern     = "$#,##0.00"
	percentPattern      = "0.00\"%\""
	clearRange          = "A:Z"
	maxRetryBackoff     = 30 * time.Second
	retryBackoffFactor  = 2.0
	valueInputOption    = "USER_ENTERED"
	frozenHeaderRows    = 1
	sectionSpacerRows   = 1
	exportedAtTimestamp = "2006-01-02 15:04"
)

// Writer implements service.LedgerWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	now     func() time.Time
	config  Config
}

var _ service.LedgerWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets ledger writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrSheetsUnavailable, err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Write replaces the sheet contents with the summary, the category
// breakdown and every transaction.
func (w *Writer) Write(ctx context.Context, txns []model.Transaction, summary ledger.Summary) error {
	w.logger.Info("starting ledger export", "transactions", len(txns))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     maxRetryBackoff,
		Multiplier:   retryBackoffFactor,
	}
	if retryOpts.MaxAttempts < 1 {
		retryOpts.MaxAttempts = 1
	}

	if clearErr := common.WithRetry(ctx, func() error {
		return w.clearSheet(ctx, spreadsheetID)
	}, retryOpts); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	report := BuildReport(txns, summary)
	values := reportValues(report, w.now())

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		requests := formattingRequests(report, len(values))
		err = common.WithRetry(ctx, func() error {
			_, updateErr := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: requests,
			}).Context(ctx).Do()
			return classifyAPIError(updateErr)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("ledger export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets the configured spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("%w: unable to access spreadsheet %s: %w", common.ErrSheetsUnavailable, w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetTitle}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: unable to create spreadsheet: %w", common.ErrSheetsUnavailable, err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classifyAPIError(err)
}

// classifyAPIError maps Google API failures onto the retry policy: 429 is a
// rate limit, other 4xx responses are permanent, everything else is retried.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return common.Permanent(err)
	default:
		return err
	}
}

// writeData writes values in BatchSize chunks to stay under API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption(valueInputOption).
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, classifyAPIError(err))
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// reportValues lays the report out as sheet rows: a title, the totals, the
// category breakdown, then the transaction table.
func reportValues(report Report, exportedAt time.Time) [][]any {
	values := make([][]any, 0, 12+len(report.Categories)+len(report.Transactions))

	values = append(values,
		[]any{"Budget Buddy Ledger", "Exported " + exportedAt.Format(exportedAtTimestamp)},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Income", report.TotalIncome.InexactFloat64()},
		[]any{"Total Expenses", report.TotalExpenses.InexactFloat64()},
		[]any{"Balance", report.Balance.InexactFloat64()},
		[]any{"Transactions", len(report.Transactions)},
		[]any{},
		[]any{"Spending by Category"},
		[]any{"Category", "Amount", "Share"},
	)
	for _, row := range report.Categories {
		values = append(values, []any{row.Category, row.Amount.InexactFloat64(), row.Share.InexactFloat64()})
	}

	values = append(values,
		[]any{},
		[]any{"Date", "Description", "Category", "Type", "Amount", "Signed"},
	)
	for _, row := range report.Transactions {
		values = append(values, []any{
			row.Date,
			row.Description,
			row.Category,
			row.Type,
			row.Amount.InexactFloat64(),
			row.Signed.InexactFloat64(),
		})
	}

	return values
}

// formattingRequests styles the layout produced by reportValues.
func formattingRequests(report Report, totalRows int) []*sheets.Request {
	categoryStart := int64(10)
	categoryEnd := categoryStart + int64(len(report.Categories))
	txnHeader := categoryEnd + sectionSpacerRows

	bold := func(startRow, endRow, endCol int64, size int64) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					StartRowIndex:    startRow,
					EndRowIndex:      endRow,
					StartColumnIndex: 0,
					EndColumnIndex:   endCol,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: size},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		}
	}
	number := func(startRow, endRow, col int64, kind, pattern string) *sheets.Request {
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					StartRowIndex:    startRow,
					EndRowIndex:      endRow,
					StartColumnIndex: col,
					EndColumnIndex:   col + 1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: kind, Pattern: pattern},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		}
	}

	return []*sheets.Request{
		bold(0, 1, 2, 16),
		bold(summaryHeaderRows, summaryHeaderRows+1, 1, 12),
		bold(categoryStart-2, categoryStart, 3, 0),
		bold(txnHeader, txnHeader+1, transactionColumns, 0),
		number(3, 6, 1, "CURRENCY", currencyPattern),
		number(categoryStart, categoryEnd, 1, "CURRENCY", currencyPattern),
		number(categoryStart, categoryEnd, 2, "NUMBER", percentPattern),
		number(txnHeader+1, int64(totalRows), amountColumn, "CURRENCY", currencyPattern),
		number(txnHeader+1, int64(totalRows), amountColumn+1, "CURRENCY", currencyPattern),
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   transactionColumns,
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					GridProperties: &sheets.GridProperties{FrozenRowCount: frozenHeaderRows},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}
