package cmd

import (
	"github.com/huangsam/rbicalc/core"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/spf13/cobra"
)

// batchCmd evaluates every request of a batch file.
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Evaluate many independent formula requests from a file.",
	Long: `Evaluate a YAML or JSON batch file concurrently.

Each request names a family, an optional variant and its inputs. Requests are
evaluated by --workers goroutines and reported in file order; a failed request
is reported next to the others and does not stop the batch.

Batch file layout:
  requests:
    - id: line-12
      family: DTHIN
      variant: DTHIN_1
      inputs: {nominalThickness: 10, currentThickness: 8, corrosionRate: 0.1, age: 5}

Examples:
  # Evaluate a plant survey with 8 workers
  rbicalc batch survey.yaml --workers 8

  # Export results to CSV
  rbicalc batch survey.yaml --output csv --output-file results.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run batch", err)
		}
	},
}
