package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/rbicalc/internal/parquet"
)

// ExecuteLedgerExport exports the ledger to Parquet files prefixed by outputFile.
func ExecuteLedgerExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetLedgerStore()
	if store == nil {
		return errors.New("ledger store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get ledger status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no ledger data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total calculations: %d\n", status.TotalCalculations)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	calculations, err := store.GetAllCalculations()
	if err != nil {
		return fmt.Errorf("failed to retrieve calculations: %w", err)
	}

	parquetRuns := parquet.ConvertLedgerRunRecords(runs)
	parquetCalculations := parquet.ConvertCalculationRecords(calculations)

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteLedgerRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	calculationsFile := outputFile + ".calculations.parquet"
	if err := parquet.WriteCalculationsParquet(parquetCalculations, calculationsFile); err != nil {
		return fmt.Errorf("failed to write calculations: %w", err)
	}
	fmt.Printf("Exported %d calculations to: %s\n", len(parquetCalculations), calculationsFile)

	return nil
}
