package cmd

import (
	"github.com/huangsam/rbicalc/core"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/spf13/cobra"
)

// calcCmd evaluates a single formula.
var calcCmd = &cobra.Command{
	Use:   "calc <family>",
	Short: "Evaluate one formula for a set of named inputs.",
	Long: `Evaluate a damage factor, consequence or risk formula.

The family selects the calculator (DTHIN, DFEXT, DFSCC, DFMFAT, DFCUI, COF,
RISK_MATRIX) and --variant picks one of its registered variants. Inputs are
given as repeated name=value pairs, loaded from a YAML/JSON file, or both;
pairs on the command line win over the file.

Examples:
  # Basic thinning damage factor
  rbicalc calc DTHIN -i nominalThickness=10 -i currentThickness=8 -i corrosionRate=0.1 -i age=5

  # Localized thinning with an explicit localization factor
  rbicalc calc DTHIN --variant DTHIN_1 --inputs-file pipe-12.yaml -i localizationFactor=3

  # External damage with coating condition, as JSON
  rbicalc calc DFEXT -i corrosionRate=0.5 -i coatingCondition="Very Poor" --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCalc(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot calculate formula", err)
		}
	},
}
