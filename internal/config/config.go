package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the keys the CLI reads.
const (
	DefaultDatabasePath = "$HOME/.local/share/budget/budget.db"
	DefaultConfigDir    = "$HOME/.config/budget"
	DefaultProduct      = "budgetbuddy"
	EnvPrefix           = "BUDGET"
)

// SetDefaults registers default values and environment binding on v.
// Nested keys map to variables with dots replaced by underscores, so
// database.path is read from BUDGET_DATABASE_PATH.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("export.product", DefaultProduct)
	v.SetDefault("checkpoint.auto", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// DatabasePath returns the expanded database location from v.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// TokenPath returns where the Sheets OAuth token is cached.
func TokenPath(v *viper.Viper) string {
	if path := v.GetString("sheets.token_file"); path != "" {
		return ExpandPath(path)
	}
	return filepath.Join(ExpandPath(DefaultConfigDir), "sheets-token.json")
}
