package cmd

import (
	"github.com/huangsam/rbicalc/core"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/spf13/cobra"
)

// riskCmd classifies a POF/COF pair on the risk matrix.
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Classify probability and consequence of failure on the risk matrix.",
	Long: `Multiply probability of failure by consequence of failure and place the
score in one of five risk bands, with its category, priority and the
recommended inspection interval.

Examples:
  rbicalc risk --pof 0.02 --cof 2
  rbicalc risk --pof 0.5 --cof 1 --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRisk(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot classify risk", err)
		}
	},
}
