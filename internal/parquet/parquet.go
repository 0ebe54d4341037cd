// Package parquet provides data structures and functions for exporting the
// calculation ledger to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/rbicalc/schema"
	"github.com/parquet-go/parquet-go"
)

// LedgerRun represents a single recorded run with metadata.
// This struct maps to the rbicalc_runs database table.
type LedgerRun struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalCalculations is the number of calculations recorded in this run
	TotalCalculations int32 `parquet:"total_calculations,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Calculation represents one formula evaluation within a run.
// This struct maps to the rbicalc_calculations database table.
type Calculation struct {
	RunID      string    `parquet:"run_id,snappy"`
	Sequence   int32     `parquet:"seq_no,snappy"`
	RequestID  string    `parquet:"request_id,snappy"`
	FormulaKey string    `parquet:"formula_key,snappy,dict"`
	Family     string    `parquet:"family,snappy,dict"`
	CalcTime   time.Time `parquet:"calc_time,snappy"`

	// Value is nil when the calculation failed
	Value *float64 `parquet:"result_value,optional,snappy"`

	// ErrorKind is nil when the calculation succeeded
	ErrorKind *string `parquet:"error_kind,optional,snappy,dict"`

	InputsJSON  string  `parquet:"inputs_json,snappy"`
	FactorsJSON *string `parquet:"factors_json,optional,snappy"`
}

// WriteLedgerRunsParquet writes a slice of LedgerRun structs to a Parquet file.
func WriteLedgerRunsParquet(data []LedgerRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCalculationsParquet writes a slice of Calculation structs to a Parquet file.
func WriteCalculationsParquet(data []Calculation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows to outputPath with a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertLedgerRunRecords converts schema.LedgerRunRecord to LedgerRun for Parquet export.
func ConvertLedgerRunRecords(records []schema.LedgerRunRecord) []LedgerRun {
	result := make([]LedgerRun, len(records))
	for i, record := range records {
		result[i] = LedgerRun{
			RunID:             record.RunID,
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
			RunDurationMs:     record.RunDurationMs,
			TotalCalculations: record.TotalCalculations,
			ConfigParams:      record.ConfigParams,
		}
	}
	return result
}

// ConvertCalculationRecords converts schema.CalculationRecord to Calculation for Parquet export.
func ConvertCalculationRecords(records []schema.CalculationRecord) []Calculation {
	result := make([]Calculation, len(records))
	for i, record := range records {
		result[i] = Calculation{
			RunID:       record.RunID,
			Sequence:    record.Sequence,
			RequestID:   record.RequestID,
			FormulaKey:  record.FormulaKey,
			Family:      record.Family,
			CalcTime:    record.CalcTime,
			Value:       record.Value,
			ErrorKind:   record.ErrorKind,
			InputsJSON:  record.InputsJSON,
			FactorsJSON: record.FactorsJSON,
		}
	}
	return result
}
