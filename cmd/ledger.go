package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/internal/iocache"
	"github.com/huangsam/rbicalc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ledgerBackendFromConfig reads and validates the ledger settings without the full shared setup.
func ledgerBackendFromConfig() (schema.DatabaseBackend, string, error) {
	configureConfigFile()
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := strings.ToLower(strings.TrimSpace(viper.GetString("ledger-backend")))
	connStr := viper.GetString("ledger-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid ledger backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// ledgerSetup loads minimal configuration needed for ledger operations.
func ledgerSetup() error {
	backend, connStr, err := ledgerBackendFromConfig()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize ledger: %w", err)
	}

	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// ledgerSetupWrapper wraps ledgerSetup to provide PreRunE for ledger commands.
func ledgerSetupWrapper(_ *cobra.Command, _ []string) error {
	return ledgerSetup()
}

// ledgerMigrateSetup loads the ledger settings without opening the store,
// so migrations can run on a fresh database.
func ledgerMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := ledgerBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetLedgerDBFilePath()
	}

	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = connStr
	return nil
}

// ledgerCmd focused on calculation ledger management.
//
// Note: Ledger subcommands use minimal initialization (ledgerSetup) instead of
// the full sharedSetup, so they need no formula arguments.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the calculation ledger and its exports",
	Long: `Manage the audit trail of calculation runs.

When enabled with --ledger-backend, rbicalc records every run, storing:
- Run metadata (timestamp, command, configuration, duration)
- Each calculation with its inputs, value, factors or error kind

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  status  - Show ledger statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all ledger data
  migrate - Run database schema migrations

Examples:
  # Check ledger status
  rbicalc ledger status --ledger-backend sqlite

  # Export for analysis in pandas/DuckDB
  rbicalc ledger export --ledger-backend sqlite --output-file ledger`,
}

// ledgerClearCmd clears the ledger.
var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs and calculations",
	Long: `Delete all stored runs and calculations.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  rbicalc ledger export --ledger-backend sqlite --output-file backup
  rbicalc ledger clear --ledger-backend sqlite`,
	PreRunE: ledgerMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearLedger(cfg.LedgerBackend, contract.GetLedgerDBFilePath(), cfg.LedgerDBConnect); err != nil {
			contract.LogFatal("Failed to clear ledger", err)
		}
		fmt.Println("Ledger cleared successfully.")
	},
}

// ledgerStatusCmd shows ledger status.
var ledgerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display ledger statistics and connection details",
	Long: `Show the backend, the number of recorded runs and calculations, and the
timestamps of the oldest and latest runs.

Examples:
  rbicalc ledger status --ledger-backend sqlite`,
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetLedgerStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get ledger status", err)
		}
		iocache.PrintLedgerStatus(status)
	},
}

// ledgerExportCmd exports the ledger to Parquet files.
var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs and calculations to Parquet",
	Long: `Export all stored ledger data to Parquet for use with analytics tools.

Writes two files next to --output-file:
- <output-file>.runs.parquet
- <output-file>.calculations.parquet

Examples:
  rbicalc ledger export --ledger-backend sqlite --output-file ledger
  duckdb -c "SELECT family, count(*) FROM read_parquet('ledger.calculations.parquet') GROUP BY family"`,
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteLedgerExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export ledger", err)
		}
	},
}

// ledgerMigrateCmd runs database migrations for the ledger store.
var ledgerMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the ledger store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  rbicalc ledger migrate --ledger-backend postgresql --ledger-db-connect "host=... dbname=rbi"

  # Rollback to initial state
  rbicalc ledger migrate --ledger-backend sqlite --target-version 0`,
	PreRunE: ledgerMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateLedger(cfg.LedgerBackend, cfg.LedgerDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
