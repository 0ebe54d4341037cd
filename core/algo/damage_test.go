package algo

import (
	"math"
	"testing"

	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalCorrosion(t *testing.T) {
	tests := []struct {
		name     string
		input    ExternalInput
		expected float64
		coating  float64
		cp       float64
	}{
		{
			name:     "good coating with cathodic protection",
			input:    ExternalInput{CorrosionRate: 0.5, CoatingCondition: schema.ConditionGood, CathodicProtection: true},
			expected: 0.045,
			coating:  0.3,
			cp:       0.3,
		},
		{
			name:     "very poor coating without protection",
			input:    ExternalInput{CorrosionRate: 0.5, CoatingCondition: schema.ConditionVeryPoor},
			expected: 0.5,
			coating:  1.0,
			cp:       1.0,
		},
		{
			name:     "clamped at one",
			input:    ExternalInput{CorrosionRate: 5, CoatingCondition: schema.ConditionPoor},
			expected: 1.0,
			coating:  0.8,
			cp:       1.0,
		},
		{
			name:     "unknown coating is neutral",
			input:    ExternalInput{CorrosionRate: 0.5, CoatingCondition: "Splendid"},
			expected: 0.5,
			coating:  1.0,
			cp:       1.0,
		},
		{
			name:     "negative rate clamps to zero",
			input:    ExternalInput{CorrosionRate: -1, CoatingCondition: schema.ConditionFair},
			expected: 0,
			coating:  0.6,
			cp:       1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExternalCorrosion(tt.input)
			assert.InDelta(t, tt.expected, result.Value, 1e-9)
			assert.InDelta(t, tt.coating, result.Factors["coatingFactor"], 1e-9)
			assert.InDelta(t, tt.cp, result.Factors["cpFactor"], 1e-9)
			assert.Equal(t, schema.BoundedRange(0, 1), result.Metadata.Range)
		})
	}
}

func TestStressCorrosionCracking(t *testing.T) {
	tests := []struct {
		name     string
		input    SCCInput
		expected float64
	}{
		{name: "susceptible material", input: SCCInput{StressLevel: 50, SusceptibleMaterial: true, Temperature: 100}, expected: 0.5},
		{name: "resistant material", input: SCCInput{StressLevel: 50, Temperature: 100}, expected: 0.05},
		{name: "stress saturates", input: SCCInput{StressLevel: 300, SusceptibleMaterial: true, Temperature: 20}, expected: 1},
		{name: "hot service", input: SCCInput{StressLevel: 20, SusceptibleMaterial: true, Temperature: 260}, expected: 0.4},
		{name: "sour chloride environment", input: SCCInput{StressLevel: 40, SusceptibleMaterial: true, Temperature: 25, H2SContent: 2500, ChlorideContent: 2500}, expected: 0.6},
		{name: "no stress with extreme contents", input: SCCInput{SusceptibleMaterial: true, Temperature: 1e308, H2SContent: math.MaxFloat64, ChlorideContent: math.MaxFloat64}, expected: 0},
		{name: "extreme contents saturate", input: SCCInput{StressLevel: 50, SusceptibleMaterial: true, Temperature: 1e308, H2SContent: math.MaxFloat64, ChlorideContent: math.MaxFloat64}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StressCorrosionCracking(tt.input)
			assert.InDelta(t, tt.expected, result.Value, 1e-9)
			assert.Contains(t, result.Factors, "materialFactor")
			for name, v := range result.Factors {
				assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "factor %s = %v", name, v)
			}
		})
	}
}

func TestMechanicalFatigue(t *testing.T) {
	result, err := MechanicalFatigue(FatigueInput{CycleCount: 1e5, StressRange: 50, FatigueLife: 1e6})
	require.NoError(t, err)
	assert.InDelta(t, 0.025, result.Value, 1e-12)

	result, err = MechanicalFatigue(FatigueInput{CycleCount: 5e6, StressRange: 150, FatigueLife: 1e6})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Value)

	a, err := MechanicalFatigue(FatigueInput{CycleCount: 1e5, StressRange: 50, FatigueLife: 1e6, VibrationLevel: 0})
	require.NoError(t, err)
	b, err := MechanicalFatigue(FatigueInput{CycleCount: 1e5, StressRange: 50, FatigueLife: 1e6, VibrationLevel: 99})
	require.NoError(t, err)
	assert.Equal(t, a.Value, b.Value, "vibration level does not affect the result")
	assert.Equal(t, 99.0, b.Factors["vibrationLevel"])

	_, err = MechanicalFatigue(FatigueInput{CycleCount: 1, StressRange: 1, FatigueLife: 0})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "fatigueLife", inputErr.Field)
}

// neutralCUIInput yields a product of 2.4 for the basic variant.
func neutralCUIInput() CUIInput {
	return CUIInput{
		OperatingTemperature:  100,
		InsulationType:        schema.InsulationMineralWool,
		InsulationCondition:   schema.ConditionFair,
		WeatherExposure:       schema.WeatherExposed,
		MoistureIngress:       schema.MoistureModerate,
		CoatingCondition:      schema.ConditionFair,
		EnvironmentalSeverity: schema.SeverityModerate,
		OperatingCycles:       50,
		MaintenanceFrequency:  1,
		Age:                   20,
	}
}

func TestMechanicalFatigueOverflow(t *testing.T) {
	tests := []struct {
		name  string
		input FatigueInput
		field string
	}{
		{"cycle ratio", FatigueInput{CycleCount: 1e300, StressRange: 50, FatigueLife: 1e-10}, "cycleCount"},
		{"stress squared", FatigueInput{CycleCount: 10, StressRange: 1e200, FatigueLife: 1e6}, "stressRange"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MechanicalFatigue(tt.input)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.field, inputErr.Field)
		})
	}

	// No cycles yields zero however large the stress term
	result, err := MechanicalFatigue(FatigueInput{CycleCount: 0, StressRange: 1e150, FatigueLife: 1e6})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Value)
}

func TestCUITemperatureFactor(t *testing.T) {
	tests := []struct {
		temp     float64
		expected float64
	}{
		{-40, 0.5},
		{59.9, 0.5},
		{60, 2.0},
		{120, 2.0},
		{175, 2.0},
		{175.1, 1.5},
		{300, 1.5},
		{300.1, 1.0},
		{600, 1.0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, cuiTemperatureFactor(tt.temp), "temperature %v", tt.temp)
	}
}

func TestCorrosionUnderInsulation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*CUIInput)
		advanced bool
		expected float64
	}{
		{name: "neutral basic", expected: 2.4},
		{name: "neutral advanced", advanced: true, expected: 2.88},
		{name: "cellular glass indoors", mutate: func(in *CUIInput) {
			in.InsulationType = schema.InsulationCellularGlass
			in.WeatherExposure = schema.WeatherIndoor
		}, expected: 2.0 * 0.3 * 0.3},
		{name: "maintenance floor", mutate: func(in *CUIInput) { in.MaintenanceFrequency = 10 }, expected: 2.4 * 0.3},
		{name: "cycling cap", mutate: func(in *CUIInput) { in.OperatingCycles = 1000; in.InsulationType = schema.InsulationPolyurethane }, expected: 2.0 * 0.8 * 2.0},
		{name: "age cap", mutate: func(in *CUIInput) { in.Age = 100; in.InsulationType = schema.InsulationCalciumSilicate }, expected: 2.0 * 1.5},
		{name: "clamped at five", mutate: func(in *CUIInput) {
			in.InsulationType = schema.InsulationPerlite
			in.InsulationCondition = schema.ConditionVeryPoor
			in.MoistureIngress = schema.MoistureSevere
		}, expected: 5},
		{name: "new equipment", mutate: func(in *CUIInput) { in.Age = 0 }, expected: 0},
		{name: "new equipment with overflowing maintenance", mutate: func(in *CUIInput) {
			in.InsulationType = schema.InsulationPerlite
			in.InsulationCondition = schema.ConditionVeryPoor
			in.MoistureIngress = schema.MoistureSevere
			in.CoatingCondition = schema.ConditionVeryPoor
			in.EnvironmentalSeverity = schema.SeveritySevere
			in.WeatherExposure = schema.WeatherMarine
			in.OperatingCycles = 1000
			in.MaintenanceFrequency = -math.MaxFloat64
			in.Age = 0
		}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := neutralCUIInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			result := CorrosionUnderInsulation(in, tt.advanced)
			assert.InDelta(t, tt.expected, result.Value, 1e-9)
			assert.Equal(t, schema.BoundedRange(0, 5), result.Metadata.Range)
			if tt.advanced {
				assert.Equal(t, 1.2, result.Factors["advancedFactor"])
			} else {
				assert.NotContains(t, result.Factors, "advancedFactor")
			}
		})
	}
}

func TestCorrosionUnderInsulationAdvancedRatio(t *testing.T) {
	in := neutralCUIInput()
	in.WeatherExposure = schema.WeatherMarine
	in.MoistureIngress = schema.MoistureLow
	basic := CorrosionUnderInsulation(in, false)
	advanced := CorrosionUnderInsulation(in, true)
	require.Less(t, advanced.Value, 5.0)
	assert.InDelta(t, basic.Value*1.2, advanced.Value, 1e-9)
}
