package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/rbicalc/schema"
)

// Bounds and multipliers specific to corrosion under insulation.
const (
	cuiMaxValue         = 5.0
	cuiAdvancedFactor   = 1.2
	cuiCyclesPerUnit    = 50.0
	cuiMaxCyclingFactor = 2.0
	cuiAgePerUnit       = 20.0
	cuiMaxAgeFactor     = 1.5
	cuiMinMaintenance   = 0.3
)

var cuiInsulationTypeFactors = map[schema.InsulationType]float64{
	schema.InsulationMineralWool:     1.2,
	schema.InsulationCalciumSilicate: 1.0,
	schema.InsulationCellularGlass:   0.3,
	schema.InsulationPerlite:         1.5,
	schema.InsulationPolyurethane:    0.8,
	schema.InsulationOther:           1.0,
}

// Shared by insulation condition and coating condition.
var cuiConditionFactors = map[schema.Condition]float64{
	schema.ConditionExcellent: 0.2,
	schema.ConditionGood:      0.5,
	schema.ConditionFair:      1.0,
	schema.ConditionPoor:      2.0,
	schema.ConditionVeryPoor:  3.0,
}

var cuiMoistureFactors = map[schema.MoistureLevel]float64{
	schema.MoistureNone:     0.1,
	schema.MoistureLow:      0.5,
	schema.MoistureModerate: 1.0,
	schema.MoistureHigh:     2.0,
	schema.MoistureSevere:   3.0,
}

var cuiSeverityFactors = map[schema.Severity]float64{
	schema.SeverityLow:      0.5,
	schema.SeverityModerate: 1.0,
	schema.SeverityHigh:     1.5,
	schema.SeveritySevere:   2.0,
}

var cuiWeatherFactors = map[schema.WeatherExposure]float64{
	schema.WeatherIndoor:    0.3,
	schema.WeatherSheltered: 0.7,
	schema.WeatherExposed:   1.0,
	schema.WeatherMarine:    1.5,
}

// CUIInput holds the inputs of the corrosion-under-insulation damage factor.
type CUIInput struct {
	OperatingTemperature  float64                `mapstructure:"operatingTemperature"`
	InsulationType        schema.InsulationType  `mapstructure:"insulationType"`
	InsulationCondition   schema.Condition       `mapstructure:"insulationCondition"`
	WeatherExposure       schema.WeatherExposure `mapstructure:"weatherExposure"`
	MoistureIngress       schema.MoistureLevel   `mapstructure:"moistureIngress"`
	CoatingCondition      schema.Condition       `mapstructure:"coatingCondition"`
	EnvironmentalSeverity schema.Severity        `mapstructure:"environmentalSeverity"`
	OperatingCycles       float64                `mapstructure:"operatingCycles"`
	MaintenanceFrequency  float64                `mapstructure:"maintenanceFrequency"`
	Age                   float64                `mapstructure:"age"`
}

// cuiTemperatureFactor peaks in the 60–175°C band where CUI is most active.
func cuiTemperatureFactor(t float64) float64 {
	switch {
	case t < 60:
		return 0.5
	case t <= 175:
		return 2.0
	case t <= 300:
		return 1.5
	default:
		return 1.0
	}
}

// CorrosionUnderInsulation computes DFCui as the product of ten factors,
// times 1.2 for the advanced variant, clamped to [0,5].
func CorrosionUnderInsulation(in CUIInput, advanced bool) schema.FormulaResult {
	factors := map[string]float64{
		"temperatureFactor":         cuiTemperatureFactor(in.OperatingTemperature),
		"insulationTypeFactor":      lookup(cuiInsulationTypeFactors, in.InsulationType),
		"insulationConditionFactor": lookup(cuiConditionFactors, in.InsulationCondition),
		"moistureFactor":            lookup(cuiMoistureFactors, in.MoistureIngress),
		"coatingFactor":             lookup(cuiConditionFactors, in.CoatingCondition),
		"environmentalFactor":       lookup(cuiSeverityFactors, in.EnvironmentalSeverity),
		"weatherFactor":             lookup(cuiWeatherFactors, in.WeatherExposure),
		"cyclingFactor":             math.Min(in.OperatingCycles/cuiCyclesPerUnit, cuiMaxCyclingFactor),
		"maintenanceFactor":         math.Max(cuiMinMaintenance, 1-(in.MaintenanceFrequency-1)*0.2),
		"ageFactor":                 math.Min(in.Age/cuiAgePerUnit, cuiMaxAgeFactor),
	}

	// Fixed multiplication order keeps results bit-identical across runs.
	order := []string{
		"temperatureFactor", "insulationTypeFactor", "insulationConditionFactor", "moistureFactor", "coatingFactor",
		"environmentalFactor", "weatherFactor", "cyclingFactor", "maintenanceFactor", "ageFactor",
	}
	values := make([]float64, 0, len(order)+1)
	expr := ""
	for i, name := range order {
		values = append(values, factors[name])
		if i > 0 {
			expr += " × "
		}
		expr += fmtNum(factors[name])
	}

	label := "DFCui"
	if advanced {
		values = append(values, cuiAdvancedFactor)
		factors["advancedFactor"] = cuiAdvancedFactor
		expr += " × " + fmtNum(cuiAdvancedFactor)
		label = "DFCui[advanced]"
	}
	value := clamp(product(values...), 0, cuiMaxValue)

	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("%s = clamp(%s, 0, 5) = %s", label, expr, fmtNum(value)),
		Factors: factors,
		Metadata: schema.ResultMetadata{
			Unit:  "factor",
			Range: schema.BoundedRange(0, cuiMaxValue),
		},
	}
}
