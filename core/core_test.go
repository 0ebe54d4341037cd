package core

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/internal/iocache"
	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a JSON config writing to a temp file.
func newTestConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		Workers:       2,
		Precision:     2,
		Output:        schema.JSONOut,
		OutputFile:    filepath.Join(t.TempDir(), "out.json"),
		LedgerBackend: schema.NoneBackend,
	}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(content, &out))
	return out
}

// newRecordingManager returns a manager whose ledger accepts one run with n calculations.
func newRecordingManager(n int) (*iocache.MockStoreManager, *iocache.MockLedgerStore) {
	store := &iocache.MockLedgerStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return("run-1", nil)
	store.On("RecordCalculation", "run-1", mock.Anything).Return(nil).Times(n)
	store.On("EndRun", "run-1", mock.Anything, n).Return(nil)

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetLedgerStore").Return(store)
	return mgr, store
}

// TestExecuteCalc tests the single calculation entry point.
func TestExecuteCalc(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Target = "dthin"
	cfg.Variant = "DTHIN_1"
	cfg.Inputs = schema.FormulaInput{
		"nominalThickness": "10",
		"currentThickness": "8",
		"corrosionRate":    "0.1",
		"age":              "5",
	}
	mgr, store := newRecordingManager(1)

	require.NoError(t, ExecuteCalc(context.Background(), cfg, mgr))

	out := readJSON(t, cfg.OutputFile)
	assert.Equal(t, "DTHIN_1", out["key"])
	assert.InDelta(t, 0.4, out["value"], 1e-12)

	mgr.AssertExpectations(t)
	store.AssertExpectations(t)
	entry := store.Calls[1].Arguments.Get(1).(schema.CalculationEntry)
	assert.Equal(t, schema.DthinLocalized, entry.Key)
	assert.Equal(t, schema.DthinFamily, entry.Family)
	assert.NotEmpty(t, entry.RequestID)
	assert.NotNil(t, entry.Result)
	assert.Nil(t, entry.Err)
}

func TestExecuteCalcInputsFileOverriddenByFlags(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Target = "DFEXT"
	cfg.InputsFile = writeTempFile(t, "inputs.yaml", "corrosionRate: 0.9\ncoatingCondition: Poor\n")
	cfg.Inputs = schema.FormulaInput{"corrosionRate": "0.5"}

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetLedgerStore").Return(nil)

	require.NoError(t, ExecuteCalc(context.Background(), cfg, mgr))

	out := readJSON(t, cfg.OutputFile)
	assert.InDelta(t, 0.5*0.8, out["value"], 1e-12)
	mgr.AssertExpectations(t)
}

func TestExecuteCalcRecordsFailures(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Target = "DTHIN"
	cfg.Variant = "DTHIN_1"
	cfg.Inputs = schema.FormulaInput{"nominalThickness": "10"}
	mgr, store := newRecordingManager(1)

	err := ExecuteCalc(context.Background(), cfg, mgr)
	ferr := requireFormulaError(t, err, schema.MissingRequiredInput)
	assert.Equal(t, "currentThickness", ferr.Field)

	store.AssertExpectations(t)
	entry := store.Calls[1].Arguments.Get(1).(schema.CalculationEntry)
	assert.Nil(t, entry.Result)
	require.NotNil(t, entry.Err)
	assert.Equal(t, schema.DthinFamily, entry.Family)
}

func TestExecuteCalcWithoutTarget(t *testing.T) {
	err := ExecuteCalc(context.Background(), newTestConfig(t), nil)
	assert.ErrorContains(t, err, "family is required")
}

func TestExecuteCalcLenient(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Target = "DFEXT"
	cfg.Inputs = schema.FormulaInput{"corrosionRate": "0.5", "coatingCondition": "Goood"}

	err := ExecuteCalc(context.Background(), cfg, nil)
	requireFormulaError(t, err, schema.InvalidInput)

	cfg.LenientCategories = true
	require.NoError(t, ExecuteCalc(context.Background(), cfg, nil))
	assert.InDelta(t, 0.5, readJSON(t, cfg.OutputFile)["value"], 1e-12)
}

// TestExecuteBatch tests the batch entry point.
func TestExecuteBatch(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Target = writeTempFile(t, "batch.yaml", `
requests:
  - id: a
    family: RISK_MATRIX
    inputs: {pof: 0.1, cof: 0.5}
  - id: b
    family: DTHIN
    variant: DTHIN_99
`)
	mgr, store := newRecordingManager(2)

	require.NoError(t, ExecuteBatch(context.Background(), cfg, mgr))

	out := readJSON(t, cfg.OutputFile)
	assert.Equal(t, float64(2), out["total"])
	assert.Equal(t, float64(1), out["succeeded"])
	assert.Equal(t, float64(1), out["failed"])
	store.AssertExpectations(t)
}

func TestExecuteBatchMissingFile(t *testing.T) {
	cfg := newTestConfig(t)
	err := ExecuteBatch(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "batch file is required")

	cfg.Target = filepath.Join(t.TempDir(), "nope.yaml")
	assert.Error(t, ExecuteBatch(context.Background(), cfg, nil))
}

func TestExecuteFormulasList(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		cfg := newTestConfig(t)
		require.NoError(t, ExecuteFormulasList(context.Background(), cfg, nil))

		families, ok := readJSON(t, cfg.OutputFile)["families"].([]any)
		require.True(t, ok)
		assert.Len(t, families, len(schema.AllFamilies))
	})

	t.Run("one family", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Family = "cof"
		require.NoError(t, ExecuteFormulasList(context.Background(), cfg, nil))

		families, ok := readJSON(t, cfg.OutputFile)["families"].([]any)
		require.True(t, ok)
		require.Len(t, families, 1)
		listing := families[0].(map[string]any)
		assert.Equal(t, "COF", listing["family"])
		assert.Len(t, listing["definitions"], 2)
	})

	t.Run("unknown family", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Family = "NOPE"
		assert.ErrorContains(t, ExecuteFormulasList(context.Background(), cfg, nil), "unknown formula family")
	})
}

func TestExecuteFormulaShow(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Target = "dthin_1"
	require.NoError(t, ExecuteFormulaShow(context.Background(), cfg, nil))

	out := readJSON(t, cfg.OutputFile)
	assert.Equal(t, "DTHIN_1", out["key"])
	defaults, ok := out["defaults"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, defaults["localizationFactor"])
	assert.Equal(t, 1.0, defaults["managementFactor"])

	cfg.Target = "DTHIN_99"
	err := ExecuteFormulaShow(context.Background(), cfg, nil)
	requireFormulaError(t, err, schema.FormulaNotFound)
}

func TestExecuteRisk(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.RiskInputs = schema.FormulaInput{"pof": 0.02, "cof": 2.0}
	mgr, store := newRecordingManager(1)

	require.NoError(t, ExecuteRisk(context.Background(), cfg, mgr))

	out := readJSON(t, cfg.OutputFile)
	assert.Equal(t, "Medium", out["level_name"])
	assert.Equal(t, "C", out["category"])
	assert.InDelta(t, 0.04, out["score"], 1e-12)
	store.AssertExpectations(t)
}

func TestExecuteRiskRejectsNaN(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.RiskInputs = schema.FormulaInput{"pof": 0.1, "cof": math.NaN()}
	err := ExecuteRisk(context.Background(), cfg, nil)
	ferr := requireFormulaError(t, err, schema.InvalidInput)
	assert.Equal(t, "cof", ferr.Field)
}

func TestExecuteRiskRequiresBothValues(t *testing.T) {
	tests := []struct {
		name    string
		inputs  schema.FormulaInput
		missing string
	}{
		{"nothing set", nil, "pof"},
		{"only pof", schema.FormulaInput{"pof": 0.5}, "cof"},
		{"only cof", schema.FormulaInput{"cof": 1.0}, "pof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.RiskInputs = tt.inputs
			err := ExecuteRisk(context.Background(), cfg, nil)
			ferr := requireFormulaError(t, err, schema.MissingRequiredInput)
			assert.Equal(t, tt.missing, ferr.Field)

			_, statErr := os.Stat(cfg.OutputFile)
			assert.True(t, os.IsNotExist(statErr), "no classification should be written")
		})
	}
}

func TestExecuteRiskAcceptsExplicitZero(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.RiskInputs = schema.FormulaInput{"pof": 0.0, "cof": 5.0}
	require.NoError(t, ExecuteRisk(context.Background(), cfg, nil))
	assert.Equal(t, "Low", readJSON(t, cfg.OutputFile)["level_name"])
}

func TestLedgerRunWarnsOnStoreErrors(t *testing.T) {
	store := &iocache.MockLedgerStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return("", assert.AnError)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetLedgerStore").Return(store)

	run := beginLedgerRun(mgr, "calc", newTestConfig(t))
	run.record(schema.BatchRequest{Family: "DTHIN"}, nil, schema.NewNotFoundError("DTHIN_99"))
	run.end()

	// A failed BeginRun leaves the run detached from the store
	store.AssertNotCalled(t, "RecordCalculation", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerRunSkipsUnscheduledItems(t *testing.T) {
	mgr, store := newRecordingManager(1)
	run := beginLedgerRun(mgr, "batch", newTestConfig(t))

	result := schema.FormulaResult{Key: schema.CofArea, Family: schema.CofFamily}
	run.recordItems([]schema.BatchItemResult{
		{Index: 0, Result: &result},
		{Index: 1}, // cancelled before evaluation
	})
	run.end()

	store.AssertExpectations(t)
	assert.Equal(t, 1, run.count)
}
