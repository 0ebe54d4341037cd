// Package cmd defines the command-line interface for rbicalc.
package cmd

import (
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(formulasCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the formulas subcommands to the parent formulas command
	formulasCmd.AddCommand(formulasListCmd)
	formulasCmd.AddCommand(formulasShowCmd)

	// Add the ledger subcommands to the parent ledger command
	ledgerCmd.AddCommand(ledgerStatusCmd)
	ledgerCmd.AddCommand(ledgerClearCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)
	ledgerCmd.AddCommand(ledgerMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers for batch evaluation")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("lenient-categories", false, "Resolve unknown categorical inputs to a neutral factor of 1.0")
	rootCmd.PersistentFlags().String("ledger-backend", string(schema.NoneBackend), "Ledger backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("ledger-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of calcCmd to Viper
	calcCmd.Flags().String("variant", "", "Variant key such as DTHIN_1 (defaults to the family's basic variant)")
	calcCmd.Flags().StringArrayP("input", "i", nil, "Named input as name=value (repeatable)")
	calcCmd.Flags().String("inputs-file", "", "YAML or JSON file with named inputs")
	if err := viper.BindPFlags(calcCmd.Flags()); err != nil {
		contract.LogFatal("Error binding calc flags", err)
	}

	// Bind all flags of formulasListCmd to Viper
	formulasListCmd.Flags().String("family", "", "Only list formulas of this family")
	if err := viper.BindPFlags(formulasListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding formulas list flags", err)
	}

	// Bind all flags of riskCmd to Viper
	riskCmd.Flags().Float64("pof", 0, "Probability of failure")
	riskCmd.Flags().Float64("cof", 0, "Consequence of failure")
	if err := viper.BindPFlags(riskCmd.Flags()); err != nil {
		contract.LogFatal("Error binding risk flags", err)
	}

	// Bind all flags of ledgerMigrateCmd to Viper
	ledgerMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(ledgerMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ledger migrate flags", err)
	}
}
