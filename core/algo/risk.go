package algo

import (
	"fmt"
	"math"

	"github.com/huangsam/rbicalc/schema"
)

// riskBand is one row of the risk matrix. A score belongs to the first band
// whose upper bound exceeds it; the last band has no upper bound.
type riskBand struct {
	upper          float64
	bounded        bool
	level          int
	name           string
	category       string
	priority       string
	intervalMonths int
}

// riskBands are ascending, contiguous and exhaustive over all scores.
var riskBands = []riskBand{
	{upper: 0.001, bounded: true, level: 1, name: "Low", category: "A", priority: "Very Low", intervalMonths: 60},
	{upper: 0.01, bounded: true, level: 2, name: "Medium-Low", category: "B", priority: "Low", intervalMonths: 36},
	{upper: 0.1, bounded: true, level: 3, name: "Medium", category: "C", priority: "Medium", intervalMonths: 24},
	{upper: 1.0, bounded: true, level: 4, name: "Medium-High", category: "D", priority: "High", intervalMonths: 12},
	{level: 5, name: "High", category: "E", priority: "Very High", intervalMonths: 6},
}

// RiskThresholds returns the band boundaries in ascending order.
func RiskThresholds() []float64 {
	out := make([]float64, 0, len(riskBands)-1)
	for _, b := range riskBands {
		if b.bounded {
			out = append(out, b.upper)
		}
	}
	return out
}

// RiskInput holds the inputs of the risk matrix.
type RiskInput struct {
	POF float64 `mapstructure:"pof"`
	COF float64 `mapstructure:"cof"`
}

// ClassifyScore maps a risk score onto exactly one band.
func ClassifyScore(score float64) schema.RiskAssessment {
	band := riskBands[len(riskBands)-1]
	for _, b := range riskBands {
		if b.bounded && score < b.upper {
			band = b
			break
		}
	}
	return schema.RiskAssessment{
		Score:                    score,
		Level:                    band.level,
		LevelName:                band.name,
		Category:                 band.category,
		Priority:                 band.priority,
		InspectionIntervalMonths: band.intervalMonths,
	}
}

// RiskMatrix computes riskScore = pof × cof and classifies it.
// A product beyond the float64 range saturates at ±math.MaxFloat64.
func RiskMatrix(in RiskInput) schema.FormulaResult {
	score := in.POF * in.COF
	var notes []string
	if math.IsInf(score, 0) {
		score = math.Copysign(math.MaxFloat64, score)
		notes = append(notes, "score saturated at the largest representable value")
	}
	assessment := ClassifyScore(score)
	notes = append(notes, fmt.Sprintf("inspect every %d months", assessment.InspectionIntervalMonths))
	return schema.FormulaResult{
		Value:   score,
		Formula: fmt.Sprintf("risk = %s × %s = %s → %s (%s)", fmtNum(in.POF), fmtNum(in.COF), fmtNum(score), assessment.LevelName, assessment.Category),
		Factors: map[string]float64{
			"pof": in.POF,
			"cof": in.COF,
		},
		Metadata: schema.ResultMetadata{
			Unit:  "risk",
			Range: schema.UnboundedRange(0),
			Notes: notes,
		},
		Risk: &assessment,
	}
}

// ClassifyRisk is the convenience form returning the combined result.
func ClassifyRisk(pof, cof float64) schema.RiskMatrixResult {
	r := RiskMatrix(RiskInput{POF: pof, COF: cof})
	return schema.RiskMatrixResult{FormulaResult: r, RiskAssessment: *r.Risk}
}
