package cmd

import (
	"github.com/huangsam/rbicalc/core"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/spf13/cobra"
)

// formulasCmd groups the registry inspection commands.
var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "Inspect the formula registry",
	Long: `Browse the registered formula definitions.

Subcommands:
  list - List definitions, optionally for one family
  show - Show one definition with its input defaults`,
}

// formulasListCmd lists registry definitions.
var formulasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered formulas grouped by family",
	Long: `List every registered formula, or only those of --family.

Examples:
  rbicalc formulas list
  rbicalc formulas list --family DTHIN --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFormulasList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list formulas", err)
		}
	},
}

// formulasShowCmd prints one definition.
var formulasShowCmd = &cobra.Command{
	Use:   "show <variant>",
	Short: "Show one formula definition and its input defaults",
	Long: `Show the required and optional inputs of one variant, with the value each
optional input takes when omitted.

Examples:
  rbicalc formulas show DTHIN_1
  rbicalc formulas show DFCUI_ADVANCED --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFormulaShow(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot show formula", err)
		}
	},
}
