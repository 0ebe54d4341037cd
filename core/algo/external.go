package algo

import (
	"fmt"

	"github.com/huangsam/rbicalc/schema"
)

// cathodicProtectionFactor scales external corrosion when CP is in service.
const cathodicProtectionFactor = 0.3

var externalCoatingFactors = map[schema.Condition]float64{
	schema.ConditionExcellent: 0.1,
	schema.ConditionGood:      0.3,
	schema.ConditionFair:      0.6,
	schema.ConditionPoor:      0.8,
	schema.ConditionVeryPoor:  1.0,
}

// ExternalInput holds the inputs of the external corrosion damage factor.
type ExternalInput struct {
	CorrosionRate      float64          `mapstructure:"corrosionRate"`
	CoatingCondition   schema.Condition `mapstructure:"coatingCondition"`
	CathodicProtection bool             `mapstructure:"cathodicProtection"`
}

// ExternalCorrosion computes DFExt = rate × coatingFactor × cpFactor, clamped to [0,1].
func ExternalCorrosion(in ExternalInput) schema.FormulaResult {
	coating := lookup(externalCoatingFactors, in.CoatingCondition)
	cp := 1.0
	if in.CathodicProtection {
		cp = cathodicProtectionFactor
	}
	value := clamp(in.CorrosionRate*coating*cp, 0, 1)

	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("DFExt = min(%s × %s × %s, 1) = %s", fmtNum(in.CorrosionRate), fmtNum(coating), fmtNum(cp), fmtNum(value)),
		Factors: map[string]float64{
			"corrosionRate":      in.CorrosionRate,
			"coatingFactor":      coating,
			"cpFactor":           cp,
			"cathodicProtection": boolFactor(in.CathodicProtection),
		},
		Metadata: schema.ResultMetadata{
			Unit:  "fraction",
			Range: schema.BoundedRange(0, 1),
		},
	}
}
