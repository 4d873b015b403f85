// Package sheets exports the ledger and its summary to Google Sheets.
package sheets

import (
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/budget-buddy/internal/common"
)

// DefaultSpreadsheetName is used when no spreadsheet name is configured.
const DefaultSpreadsheetName = "Budget Buddy Ledger"

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  DefaultSpreadsheetName,
		TimeZone:         "America/New_York",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// LoadFromEnv overlays credentials and spreadsheet settings from the
// GOOGLE_SHEETS_* environment variables. Unset variables leave the current
// value alone.
func (c *Config) LoadFromEnv() error {
	overlay := map[string]*string{
		"GOOGLE_SHEETS_CLIENT_ID":            &c.ClientID,
		"GOOGLE_SHEETS_CLIENT_SECRET":        &c.ClientSecret,
		"GOOGLE_SHEETS_REFRESH_TOKEN":        &c.RefreshToken,
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH": &c.ServiceAccountPath,
		"GOOGLE_SHEETS_SPREADSHEET_ID":       &c.SpreadsheetID,
		"GOOGLE_SHEETS_SPREADSHEET_NAME":     &c.SpreadsheetName,
	}
	for key, field := range overlay {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*field = value
		}
	}

	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "") {
		return fmt.Errorf("%w: missing Google Sheets authentication: provide either service account path or OAuth2 credentials", common.ErrMissingConfig)
	}

	if c.SpreadsheetName == "" {
		c.SpreadsheetName = DefaultSpreadsheetName
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no authentication method configured", common.ErrMissingConfig)
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}
