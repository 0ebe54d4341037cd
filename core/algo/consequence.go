package algo

import (
	"fmt"

	"github.com/huangsam/rbicalc/schema"
)

// currencyPerInventoryUnit converts production impact × inventory into currency.
const currencyPerInventoryUnit = 1000.0

// ProductionConsequenceInput holds the inputs of the production consequence.
type ProductionConsequenceInput struct {
	Impact         float64 `mapstructure:"impact"`
	FluidInventory float64 `mapstructure:"fluidInventory"`
}

// AreaConsequenceInput holds the inputs of the area consequence.
type AreaConsequenceInput struct {
	AreaImpact   float64 `mapstructure:"areaImpact"`
	SafetyImpact float64 `mapstructure:"safetyImpact"`
}

// ProductionConsequence computes impact × fluidInventory × 1000.
// The result is unbounded above and floored at zero.
func ProductionConsequence(in ProductionConsequenceInput) schema.FormulaResult {
	value := floor(in.Impact*in.FluidInventory*currencyPerInventoryUnit, 0)
	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("COF = %s × %s × %s = %s", fmtNum(in.Impact), fmtNum(in.FluidInventory), fmtNum(currencyPerInventoryUnit), fmtNum(value)),
		Factors: map[string]float64{
			"impact":         in.Impact,
			"fluidInventory": in.FluidInventory,
			"unitConversion": currencyPerInventoryUnit,
		},
		Metadata: schema.ResultMetadata{
			Unit:  "currency",
			Range: schema.UnboundedRange(0),
			Notes: []string{"range is advisory; the value is not capped"},
		},
	}
}

// AreaConsequence computes areaImpact × safetyImpact, floored at zero.
func AreaConsequence(in AreaConsequenceInput) schema.FormulaResult {
	value := floor(in.AreaImpact*in.SafetyImpact, 0)
	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("COF = %s × %s = %s", fmtNum(in.AreaImpact), fmtNum(in.SafetyImpact), fmtNum(value)),
		Factors: map[string]float64{
			"areaImpact":   in.AreaImpact,
			"safetyImpact": in.SafetyImpact,
		},
		Metadata: schema.ResultMetadata{
			Unit:  "area",
			Range: schema.UnboundedRange(0),
			Notes: []string{"range is advisory; the value is not capped"},
		},
	}
}
