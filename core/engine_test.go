package core

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireFormulaError asserts err is a *schema.FormulaError of the given kind.
func requireFormulaError(t *testing.T, err error, kind schema.ErrorKind) *schema.FormulaError {
	t.Helper()
	var ferr *schema.FormulaError
	require.True(t, errors.As(err, &ferr), "expected *schema.FormulaError, got %v", err)
	require.Equal(t, kind, ferr.Kind, "unexpected error: %v", ferr)
	return ferr
}

func thinningInputs() schema.FormulaInput {
	return schema.FormulaInput{
		"nominalThickness": 10.0,
		"currentThickness": 8.0,
		"corrosionRate":    0.1,
		"age":              5.0,
	}
}

func TestCalculateThinningBasic(t *testing.T) {
	e := NewEngine()
	result, err := e.Calculate("DTHIN", "", thinningInputs())
	require.NoError(t, err)

	assert.Equal(t, schema.DthinBasic, result.Key)
	assert.Equal(t, schema.DthinFamily, result.Family)
	assert.InDelta(t, 0.2, result.Value, 1e-12)
	assert.InDelta(t, 2.0, result.Factors["thinningLoss"], 1e-12)
	assert.Equal(t, "fraction", result.Metadata.Unit)
	assert.NotEmpty(t, result.Formula)
}

func TestCalculateThinningLocalizedDefault(t *testing.T) {
	e := NewEngine()
	result, err := e.Calculate("DTHIN", "DTHIN_1", thinningInputs())
	require.NoError(t, err)

	// localizationFactor defaults to 2.0
	assert.InDelta(t, 0.4, result.Value, 1e-12)
	assert.InDelta(t, 2.0, result.Factors["localizationFactor"], 1e-12)
}

func TestCalculateMissingRequiredInput(t *testing.T) {
	e := NewEngine()
	_, err := e.Calculate("DTHIN", "DTHIN_1", schema.FormulaInput{"nominalThickness": 10.0})

	ferr := requireFormulaError(t, err, schema.MissingRequiredInput)
	assert.Equal(t, "currentThickness", ferr.Field)
	assert.Equal(t, schema.DthinLocalized, ferr.Key)
}

func TestCalculateBlankAndNilInputsAreMissing(t *testing.T) {
	e := NewEngine()
	for name, v := range map[string]any{"nil": nil, "blank": "  "} {
		t.Run(name, func(t *testing.T) {
			inputs := thinningInputs()
			inputs["age"] = v
			_, err := e.Calculate("DTHIN", "", inputs)
			ferr := requireFormulaError(t, err, schema.MissingRequiredInput)
			assert.Equal(t, "age", ferr.Field)
		})
	}
}

func TestCalculateUnknownVariant(t *testing.T) {
	e := NewEngine()
	_, err := e.Calculate("DTHIN", "DTHIN_99", thinningInputs())
	ferr := requireFormulaError(t, err, schema.FormulaNotFound)
	assert.Equal(t, schema.VariantKey("DTHIN_99"), ferr.Key)
}

func TestCalculateCategoryHandling(t *testing.T) {
	inputs := schema.FormulaInput{"corrosionRate": 0.5, "coatingCondition": "Goood"}

	t.Run("strict", func(t *testing.T) {
		_, err := NewEngine().Calculate("DFEXT", "", inputs)
		ferr := requireFormulaError(t, err, schema.InvalidInput)
		assert.Equal(t, "coatingCondition", ferr.Field)
		assert.Contains(t, ferr.Message, "Goood")
	})

	t.Run("lenient", func(t *testing.T) {
		e := NewEngine(WithLenientCategories())
		assert.True(t, e.Lenient())
		result, err := e.Calculate("DFEXT", "", inputs)
		require.NoError(t, err)
		// Unknown category resolves to the neutral multiplier
		assert.InDelta(t, 1.0, result.Factors["coatingFactor"], 1e-12)
		assert.InDelta(t, 0.5, result.Value, 1e-12)
	})
}

func TestCalculateWeakTyping(t *testing.T) {
	e := NewEngine()
	inputs := schema.FormulaInput{
		"nominalThickness": "10",
		"currentThickness": "8",
		"corrosionRate":    "0.1",
		"age":              5,
	}
	result, err := e.Calculate("DTHIN", "", inputs)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, result.Value, 1e-12)

	ext, err := e.Calculate("DFEXT", "", schema.FormulaInput{
		"corrosionRate":      "0.5",
		"coatingCondition":   "Poor",
		"cathodicProtection": "true",
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5*0.8*0.3, ext.Value, 1e-12)
}

func TestCalculateRejectsBadNumbers(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		name  string
		value any
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"nan string", "NaN"},
		{"not a number", "ten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := thinningInputs()
			inputs["corrosionRate"] = tt.value
			_, err := e.Calculate("DTHIN", "", inputs)
			ferr := requireFormulaError(t, err, schema.InvalidInput)
			assert.Equal(t, "corrosionRate", ferr.Field)
		})
	}
}

func TestCalculateNonPositiveDivisors(t *testing.T) {
	e := NewEngine()

	inputs := thinningInputs()
	inputs["nominalThickness"] = 0
	_, err := e.Calculate("DTHIN", "", inputs)
	ferr := requireFormulaError(t, err, schema.InvalidInput)
	assert.Equal(t, "nominalThickness", ferr.Field)

	_, err = e.Calculate("DFMFAT", "", schema.FormulaInput{"cycleCount": 10, "stressRange": 50, "fatigueLife": 0})
	ferr = requireFormulaError(t, err, schema.InvalidInput)
	assert.Equal(t, "fatigueLife", ferr.Field)
}

func TestCalculateNoWallLossIgnoresOptionalInputs(t *testing.T) {
	e := NewEngine()
	inputs := schema.FormulaInput{
		"nominalThickness": 10,
		"currentThickness": 10,
		"corrosionRate":    0.1,
		"age":              5,
		"h2sContent":       1e300,
		"waterContent":     1e300,
		"erosionRate":      1e200,
		"flowVelocity":     1e200,
	}
	for _, variant := range []schema.VariantKey{schema.DthinSourWater, schema.DthinErosion} {
		t.Run(string(variant), func(t *testing.T) {
			result, err := e.Calculate("DTHIN", string(variant), inputs)
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.Value)
		})
	}
}

func TestCalculateOverflowedFactorIsInvalidInput(t *testing.T) {
	e := NewEngine()
	inputs := thinningInputs()
	inputs["erosionRate"] = 1e200
	inputs["flowVelocity"] = 1e200

	_, err := e.Calculate("DTHIN", string(schema.DthinErosion), inputs)
	ferr := requireFormulaError(t, err, schema.InvalidInput)
	assert.Equal(t, "erosionRate", ferr.Field)
}

func TestCheckFiniteResult(t *testing.T) {
	tests := []struct {
		name   string
		result schema.FormulaResult
		field  string
	}{
		{"finite", schema.FormulaResult{Value: 0.5, Factors: map[string]float64{"mechanismFactor": 2}}, ""},
		{"nan value", schema.FormulaResult{Value: math.NaN()}, "NaN"},
		{"infinite factor", schema.FormulaResult{Value: 1, Factors: map[string]float64{"lossRatio": 0.2, "mechanismFactor": math.Inf(1)}}, "mechanismFactor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ferr := checkFiniteResult(schema.DthinErosion, tt.result)
			if tt.field == "" {
				assert.Nil(t, ferr)
				return
			}
			require.NotNil(t, ferr)
			assert.Equal(t, schema.CalculationError, ferr.Kind)
			assert.Contains(t, ferr.Message, tt.field)
		})
	}
}

func TestCalculateResultsEncodeAsJSON(t *testing.T) {
	e := NewEngine()
	inputs := thinningInputs()
	inputs["erosionRate"] = 1e150
	inputs["flowVelocity"] = 1e150
	result, err := e.Calculate("DTHIN", string(schema.DthinErosion), inputs)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Value)

	_, err = json.Marshal(schema.EnrichResult(result))
	assert.NoError(t, err)

	risk, err := e.Calculate("RISK_MATRIX", "", schema.FormulaInput{"pof": 1e200, "cof": 1e200})
	require.NoError(t, err)
	assert.Equal(t, "E", risk.Risk.Category)
	_, err = json.Marshal(schema.EnrichResult(risk))
	assert.NoError(t, err)
}

func TestCalculateInputNamesAreCaseSensitive(t *testing.T) {
	e := NewEngine()
	inputs := thinningInputs()
	inputs["LocalizationFactor"] = 5
	inputs["ManagementFactor"] = 0

	result, err := e.Calculate("DTHIN", "DTHIN_1", inputs)
	require.NoError(t, err)
	// Miscased names are ignored, so both defaults apply
	assert.InDelta(t, 0.4, result.Value, 1e-12)
	assert.InDelta(t, 2.0, result.Factors["localizationFactor"], 1e-12)
	assert.InDelta(t, 1.0, result.Factors["managementFactor"], 1e-12)

	_, err = e.Calculate("DTHIN", "", schema.FormulaInput{
		"NominalThickness": 10, "currentThickness": 8, "corrosionRate": 0.1, "age": 5,
	})
	ferr := requireFormulaError(t, err, schema.MissingRequiredInput)
	assert.Equal(t, "nominalThickness", ferr.Field)
}

func TestCalculateRiskMatrix(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		pof, cof float64
		level    int
		name     string
	}{
		{0.0001, 0.5, 1, "Low"},
		{0.01, 0.5, 2, "Medium-Low"},
		{0.1, 0.5, 3, "Medium"},
		{0.5, 1.0, 4, "Medium-High"},
		{1.0, 1.0, 5, "High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Calculate("RISK_MATRIX", "", schema.FormulaInput{"pof": tt.pof, "cof": tt.cof})
			require.NoError(t, err)
			require.NotNil(t, result.Risk)
			assert.InDelta(t, tt.pof*tt.cof, result.Value, 1e-12)
			assert.Equal(t, tt.level, result.Risk.Level)
			assert.Equal(t, tt.name, result.Risk.LevelName)
		})
	}
}

func TestCalculateConsequenceUnbounded(t *testing.T) {
	e := NewEngine()
	result, err := e.Calculate("COF", "", schema.FormulaInput{"impact": 2, "fluidInventory": 50})
	require.NoError(t, err)
	assert.InDelta(t, 100_000, result.Value, 1e-9)
	assert.Nil(t, result.Metadata.Range.Max)

	area, err := e.Calculate("COF", "COF_AREA", schema.FormulaInput{"areaImpact": -5, "safetyImpact": 6})
	require.NoError(t, err)
	assert.Zero(t, area.Value)
}

func TestCalculateIsIdempotent(t *testing.T) {
	e := NewEngine()
	inputs := schema.FormulaInput{
		"operatingTemperature": 120,
		"insulationType":       "Calcium Silicate",
		"insulationCondition":  "Poor",
		"weatherExposure":      "Marine",
	}
	first, err := e.Calculate("DFCUI", "DFCUI_ADVANCED", inputs)
	require.NoError(t, err)
	second, err := e.Calculate("DFCUI", "DFCUI_ADVANCED", inputs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculateDoesNotMutateInputs(t *testing.T) {
	e := NewEngine()
	inputs := thinningInputs()
	inputs["localizationFactor"] = "3"
	before := schema.FormulaInput{}
	for k, v := range inputs {
		before[k] = v
	}

	_, err := e.Calculate("DTHIN", "DTHIN_1", inputs)
	require.NoError(t, err)
	assert.Equal(t, before, inputs)
}

func TestCalculateConcurrent(t *testing.T) {
	e := NewEngine()
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			result, err := e.Calculate("DTHIN", "DTHIN_4", thinningInputs())
			assert.NoError(t, err)
			assert.InDelta(t, 0.2*1.1, result.Value, 1e-12)
		})
	}
	wg.Wait()
}

func TestEngineCatalogAccessors(t *testing.T) {
	e := NewEngine()

	assert.Len(t, e.GetAvailableFormulas(), len(allVariantKeys))

	def, ok := e.GetFormulaConfig("dfcui_advanced")
	require.True(t, ok)
	assert.Equal(t, schema.DFCuiAdvanced, def.Key)

	_, ok = e.GetFormulaConfig("DTHIN_99")
	assert.False(t, ok)

	assert.Len(t, e.GetFormulasByType("cof"), 2)
	assert.Empty(t, e.GetFormulasByType("NOPE"))
}

func TestEvaluateUnwiredFamily(t *testing.T) {
	e := NewEngine()
	def := schema.FormulaDefinition{Family: "BOGUS", Key: "BOGUS_BASIC"}
	_, ferr := e.evaluate(def, nil)
	require.NotNil(t, ferr)
	assert.Equal(t, schema.UnsupportedFormula, ferr.Kind)
}

func TestWithRegistry(t *testing.T) {
	r, err := newRegistry(formulaTable[:1])
	require.NoError(t, err)
	e := NewEngine(WithRegistry(r))
	assert.Len(t, e.GetAvailableFormulas(), 1)

	_, cerr := e.Calculate("RISK_MATRIX", "", schema.FormulaInput{"pof": 1, "cof": 1})
	requireFormulaError(t, cerr, schema.FormulaNotFound)
}
