package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rbicalc/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []LedgerRun {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"command":"batch","workers":4}`

	return []LedgerRun{
		{
			RunID:             "6f1c7c1e-0b8e-4a55-9d1c-3f3b7d9d2f10",
			StartTime:         start,
			EndTime:           &end,
			RunDurationMs:     &duration,
			TotalCalculations: 12,
			ConfigParams:      &params,
		},
		{
			RunID:     "a3f0d1b2-5c44-4e0f-8a2e-7e1f0c9b4d21",
			StartTime: now,
			// Still running: nullable fields stay nil
		},
	}
}

func sampleCalculations() []Calculation {
	now := time.Now()
	value := 0.2
	factors := `{"thinningLoss":2,"damageFactor":0.2}`
	kind := string(schema.MissingRequiredInput)

	return []Calculation{
		{
			RunID:       "6f1c7c1e-0b8e-4a55-9d1c-3f3b7d9d2f10",
			Sequence:    0,
			RequestID:   "line-12",
			FormulaKey:  "DTHIN_BASIC",
			Family:      "DTHIN",
			CalcTime:    now,
			Value:       &value,
			InputsJSON:  `{"nominalThickness":10,"currentThickness":8,"corrosionRate":0.1,"age":5}`,
			FactorsJSON: &factors,
		},
		{
			RunID:      "6f1c7c1e-0b8e-4a55-9d1c-3f3b7d9d2f10",
			Sequence:   1,
			RequestID:  "line-13",
			FormulaKey: "DTHIN_1",
			Family:     "DTHIN",
			CalcTime:   now,
			ErrorKind:  &kind,
			InputsJSON: `{"nominalThickness":10}`,
		},
	}
}

func TestLedgerRunStructTags(t *testing.T) {
	schema := parquet.SchemaOf(new(LedgerRun))
	require.NotNil(t, schema)

	for _, colName := range []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_calculations", "config_params"} {
		_, ok := schema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestCalculationStructTags(t *testing.T) {
	schema := parquet.SchemaOf(new(Calculation))
	require.NotNil(t, schema)

	for _, colName := range []string{
		"run_id", "seq_no", "request_id", "formula_key", "family", "calc_time",
		"result_value", "error_kind", "inputs_json", "factors_json",
	} {
		_, ok := schema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteLedgerRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()

	require.NoError(t, WriteLedgerRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[LedgerRun](file)
	defer func() { _ = reader.Close() }()

	readData := make([]LedgerRun, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	for i := range data {
		assert.Equal(t, data[i].RunID, readData[i].RunID)
		assert.Equal(t, data[i].TotalCalculations, readData[i].TotalCalculations)
		assert.WithinDuration(t, data[i].StartTime, readData[i].StartTime, time.Microsecond)
		if data[i].EndTime == nil {
			assert.Nil(t, readData[i].EndTime)
			assert.Nil(t, readData[i].RunDurationMs)
			assert.Nil(t, readData[i].ConfigParams)
			continue
		}
		require.NotNil(t, readData[i].EndTime)
		assert.WithinDuration(t, *data[i].EndTime, *readData[i].EndTime, time.Microsecond)
		require.NotNil(t, readData[i].RunDurationMs)
		assert.Equal(t, *data[i].RunDurationMs, *readData[i].RunDurationMs)
		require.NotNil(t, readData[i].ConfigParams)
		assert.Equal(t, *data[i].ConfigParams, *readData[i].ConfigParams)
	}
}

func TestWriteCalculationsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "calculations.parquet")
	data := sampleCalculations()

	require.NoError(t, WriteCalculationsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Calculation](file)
	defer func() { _ = reader.Close() }()

	readData := make([]Calculation, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	require.NotNil(t, readData[0].Value)
	assert.InDelta(t, 0.2, *readData[0].Value, 1e-12)
	assert.Nil(t, readData[0].ErrorKind)
	assert.Equal(t, "DTHIN_BASIC", readData[0].FormulaKey)

	assert.Nil(t, readData[1].Value)
	assert.Nil(t, readData[1].FactorsJSON)
	require.NotNil(t, readData[1].ErrorKind)
	assert.Equal(t, string(schema.MissingRequiredInput), *readData[1].ErrorKind)
	assert.Equal(t, int32(1), readData[1].Sequence)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteLedgerRunsParquet([]LedgerRun{}, outputPath))

	_, err := os.Stat(outputPath)
	assert.NoError(t, err)
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteCalculationsParquet(sampleCalculations(), "/nonexistent/directory/calculations.parquet")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestConvertRecords(t *testing.T) {
	end := time.Now()
	duration := int32(42)
	runs := ConvertLedgerRunRecords([]schema.LedgerRunRecord{{
		RunID:             "run-1",
		StartTime:         end.Add(-time.Second),
		EndTime:           &end,
		RunDurationMs:     &duration,
		TotalCalculations: 3,
	}})
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, int32(3), runs[0].TotalCalculations)
	assert.Equal(t, &duration, runs[0].RunDurationMs)

	value := 24.0
	calcs := ConvertCalculationRecords([]schema.CalculationRecord{{
		RunID:      "run-1",
		Sequence:   2,
		RequestID:  "r",
		FormulaKey: "RISK_MATRIX_BASIC",
		Family:     "RISK_MATRIX",
		CalcTime:   end,
		Value:      &value,
		InputsJSON: `{"pof":0.05,"cof":0.5}`,
	}})
	require.Len(t, calcs, 1)
	assert.Equal(t, int32(2), calcs[0].Sequence)
	assert.Equal(t, "RISK_MATRIX_BASIC", calcs[0].FormulaKey)
	assert.Equal(t, &value, calcs[0].Value)
}
