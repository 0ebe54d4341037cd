package schema

import "time"

// CalculationEntry is what the engine tooling hands to the ledger for one calculation.
type CalculationEntry struct {
	Sequence  int
	RequestID string
	Key       VariantKey
	Family    Family
	Inputs    FormulaInput
	Result    *FormulaResult // nil when the calculation failed
	Err       *FormulaError  // nil when the calculation succeeded
	CalcTime  time.Time
}

// LedgerRunRecord represents a row from the rbicalc_runs table.
type LedgerRunRecord struct {
	RunID             string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	TotalCalculations int32
	ConfigParams      *string
}

// CalculationRecord represents a row from the rbicalc_calculations table.
type CalculationRecord struct {
	RunID       string
	Sequence    int32
	RequestID   string
	FormulaKey  string
	Family      string
	CalcTime    time.Time
	Value       *float64
	ErrorKind   *string
	InputsJSON  string
	FactorsJSON *string
}
