package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/rbicalc/schema"
)

// FatigueInput holds the inputs of the mechanical fatigue damage factor.
type FatigueInput struct {
	CycleCount     float64 `mapstructure:"cycleCount"`
	StressRange    float64 `mapstructure:"stressRange"`
	FatigueLife    float64 `mapstructure:"fatigueLife"`
	VibrationLevel float64 `mapstructure:"vibrationLevel"`
}

// MechanicalFatigue computes DFMfat = (cycles / life) × (stressRange / 100)², clamped to [0,1].
// VibrationLevel is carried into the factor map for traceability but does not
// contribute to the value.
func MechanicalFatigue(in FatigueInput) (schema.FormulaResult, error) {
	if in.FatigueLife <= 0 {
		return schema.FormulaResult{}, &InputError{Field: "fatigueLife", Reason: "must be greater than zero"}
	}
	usage := in.CycleCount / in.FatigueLife
	if math.IsInf(usage, 0) {
		return schema.FormulaResult{}, &InputError{Field: "cycleCount", Reason: "divided by fatigueLife overflows"}
	}
	stress := in.StressRange / 100
	if math.IsInf(stress*stress, 0) {
		return schema.FormulaResult{}, &InputError{Field: "stressRange", Reason: "squared overflows"}
	}
	value := clamp(product(usage, stress, stress), 0, 1)

	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("DFMfat = min((%s / %s) × %s², 1) = %s", fmtNum(in.CycleCount), fmtNum(in.FatigueLife), fmtNum(stress), fmtNum(value)),
		Factors: map[string]float64{
			"cycleRatio":     usage,
			"stressFactor":   stress * stress,
			"fatigueLife":    in.FatigueLife,
			"vibrationLevel": in.VibrationLevel,
		},
		Metadata: schema.ResultMetadata{
			Unit:  "fraction",
			Range: schema.BoundedRange(0, 1),
			Notes: []string{"vibrationLevel is recorded but does not affect the result"},
		},
	}, nil
}
