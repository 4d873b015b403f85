package config

import (
	"github.com/Veraticus/budget-buddy/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration. Viper keys (config file
// or BUDGET_SHEETS_* variables) win over the GOOGLE_SHEETS_* variables, which
// win over defaults.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	// Direct environment variables first; viper overrides below. The
	// credential check in LoadFromEnv is repeated by Validate.
	_ = config.LoadFromEnv()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = v
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}
	if viper.IsSet("sheets.batch_size") {
		config.BatchSize = viper.GetInt("sheets.batch_size")
	}
	if viper.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = viper.GetInt("sheets.retry_attempts")
	}
	if viper.IsSet("sheets.retry_delay") {
		config.RetryDelay = viper.GetDuration("sheets.retry_delay")
	}
	if viper.IsSet("sheets.formatting") {
		config.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
