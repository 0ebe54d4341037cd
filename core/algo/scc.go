package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/rbicalc/schema"
)

// Material factors for stress corrosion cracking.
const (
	susceptibleMaterialFactor = 1.0
	resistantMaterialFactor   = 0.1
)

// SCCInput holds the inputs of the stress corrosion cracking damage factor.
type SCCInput struct {
	StressLevel         float64 `mapstructure:"stressLevel"`
	SusceptibleMaterial bool    `mapstructure:"susceptibleMaterial"`
	Temperature         float64 `mapstructure:"temperature"`
	H2SContent          float64 `mapstructure:"h2sContent"`
	ChlorideContent     float64 `mapstructure:"chlorideContent"`
}

// StressCorrosionCracking computes DFScc as the product of stress, material,
// temperature and environment factors, clamped to [0,1].
func StressCorrosionCracking(in SCCInput) schema.FormulaResult {
	stress := math.Min(in.StressLevel/100, 1)
	material := resistantMaterialFactor
	if in.SusceptibleMaterial {
		material = susceptibleMaterialFactor
	}
	temp := math.Max(1, (in.Temperature-60)/100)
	env := 1 + in.H2SContent/10000 + in.ChlorideContent/10000
	value := clamp(product(stress, material, temp, env), 0, 1)

	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("DFScc = min(%s × %s × %s × %s, 1) = %s", fmtNum(stress), fmtNum(material), fmtNum(temp), fmtNum(env), fmtNum(value)),
		Factors: map[string]float64{
			"stressFactor":    stress,
			"materialFactor":  material,
			"tempFactor":      temp,
			"envFactor":       env,
			"h2sContent":      in.H2SContent,
			"chlorideContent": in.ChlorideContent,
		},
		Metadata: schema.ResultMetadata{
			Unit:  "fraction",
			Range: schema.BoundedRange(0, 1),
		},
	}
}
