package algo

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/huangsam/rbicalc/schema"
)

// ThinningMechanism selects the mechanism factor of a thinning variant.
type ThinningMechanism int

// All thinning mechanisms.
const (
	MechanismBasic ThinningMechanism = iota
	MechanismLocalized
	MechanismGeneral
	MechanismErosion
	MechanismFlowAssisted
	MechanismMicrobial
	MechanismAcid
	MechanismCaustic
	MechanismAmine
	MechanismSourWater
	MechanismHighTempH2S
	MechanismSulfidic
	MechanismNaphthenicAcid
	MechanismAtmospheric
	MechanismCoolingWater
	MechanismGalvanic
	MechanismUniform
)

var mechanismNames = map[ThinningMechanism]string{
	MechanismBasic:          "basic",
	MechanismLocalized:      "localized",
	MechanismGeneral:        "general",
	MechanismErosion:        "erosion",
	MechanismFlowAssisted:   "flow-assisted",
	MechanismMicrobial:      "microbiologically-influenced",
	MechanismAcid:           "acid",
	MechanismCaustic:        "caustic",
	MechanismAmine:          "amine",
	MechanismSourWater:      "sour-water",
	MechanismHighTempH2S:    "high-temperature H2/H2S",
	MechanismSulfidic:       "sulfidic",
	MechanismNaphthenicAcid: "naphthenic-acid",
	MechanismAtmospheric:    "atmospheric",
	MechanismCoolingWater:   "cooling-water",
	MechanismGalvanic:       "galvanic",
	MechanismUniform:        "uniform",
}

func (m ThinningMechanism) String() string {
	if name, ok := mechanismNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mechanism(%d)", int(m))
}

// thinningMechanisms maps each registered thinning variant to its mechanism.
var thinningMechanisms = map[schema.VariantKey]ThinningMechanism{
	schema.DthinBasic:        MechanismBasic,
	schema.DthinLocalized:    MechanismLocalized,
	schema.DthinGeneral:      MechanismGeneral,
	schema.DthinErosion:      MechanismErosion,
	schema.DthinFlowAssisted: MechanismFlowAssisted,
	schema.DthinMicrobial:    MechanismMicrobial,
	schema.DthinAcid:         MechanismAcid,
	schema.DthinCaustic:      MechanismCaustic,
	schema.DthinAmine:        MechanismAmine,
	schema.DthinSourWater:    MechanismSourWater,
	schema.DthinHighTempH2S:  MechanismHighTempH2S,
	schema.DthinSulfidic:     MechanismSulfidic,
	schema.DthinNaphthenic:   MechanismNaphthenicAcid,
	schema.DthinAtmospheric:  MechanismAtmospheric,
	schema.DthinCoolingWater: MechanismCoolingWater,
	schema.DthinGalvanic:     MechanismGalvanic,
	schema.DthinUniform:      MechanismUniform,
}

// ThinningMechanismFor returns the mechanism wired to a thinning variant.
// There is deliberately no fallback: an unknown key is not a uniform variant.
func ThinningMechanismFor(key schema.VariantKey) (ThinningMechanism, bool) {
	m, ok := thinningMechanisms[key]
	return m, ok
}

// ThinningInput holds every input any thinning variant reads.
type ThinningInput struct {
	NominalThickness float64 `mapstructure:"nominalThickness"`
	CurrentThickness float64 `mapstructure:"currentThickness"`
	CorrosionRate    float64 `mapstructure:"corrosionRate"`
	Age              float64 `mapstructure:"age"`

	LocalizationFactor      float64 `mapstructure:"localizationFactor"`
	ErosionRate             float64 `mapstructure:"erosionRate"`
	FlowVelocity            float64 `mapstructure:"flowVelocity"`
	MicrobialActivity       float64 `mapstructure:"microbialActivity"`
	OxygenLevel             float64 `mapstructure:"oxygenLevel"`
	PHLevel                 float64 `mapstructure:"phLevel"`
	Causticity              float64 `mapstructure:"causticity"`
	AmineConcentration      float64 `mapstructure:"amineConcentration"`
	H2SContent              float64 `mapstructure:"h2sContent"`
	WaterContent            float64 `mapstructure:"waterContent"`
	SulfurContent           float64 `mapstructure:"sulfurContent"`
	AcidNumber              float64 `mapstructure:"acidNumber"`
	Humidity                float64 `mapstructure:"humidity"`
	Salinity                float64 `mapstructure:"salinity"`
	ChlorideContent         float64 `mapstructure:"chlorideContent"`
	PotentialDifference     float64 `mapstructure:"potentialDifference"`
	InspectionEffectiveness float64 `mapstructure:"inspectionEffectiveness"`
	ConfidenceFactor        float64 `mapstructure:"confidenceFactor"`

	// Applied to every variant.
	ManagementFactor      float64 `mapstructure:"managementFactor"`
	EnvironmentalSeverity float64 `mapstructure:"environmentalSeverity"`
}

// mechanismFactor returns the multiplier for m and the inputs it consumed.
func mechanismFactor(m ThinningMechanism, in ThinningInput) (float64, map[string]float64) {
	switch m {
	case MechanismLocalized:
		return in.LocalizationFactor, map[string]float64{"localizationFactor": in.LocalizationFactor}
	case MechanismGeneral:
		projected := math.Min(in.CorrosionRate*in.Age/in.NominalThickness, 1)
		return 1 + projected, map[string]float64{"corrosionRate": in.CorrosionRate, "age": in.Age, "projectedLossRatio": projected}
	case MechanismErosion:
		return 1 + in.ErosionRate*in.FlowVelocity, map[string]float64{"erosionRate": in.ErosionRate, "flowVelocity": in.FlowVelocity}
	case MechanismFlowAssisted:
		return 1 + in.FlowVelocity/10, map[string]float64{"flowVelocity": in.FlowVelocity}
	case MechanismMicrobial:
		return 1 + in.MicrobialActivity*in.OxygenLevel, map[string]float64{"microbialActivity": in.MicrobialActivity, "oxygenLevel": in.OxygenLevel}
	case MechanismAcid:
		f := 1.0
		switch {
		case in.PHLevel < 4:
			f = 2.0
		case in.PHLevel < 6:
			f = 1.5
		}
		return f, map[string]float64{"phLevel": in.PHLevel}
	case MechanismCaustic:
		return 1 + in.Causticity, map[string]float64{"causticity": in.Causticity}
	case MechanismAmine:
		return 1 + in.AmineConcentration/100, map[string]float64{"amineConcentration": in.AmineConcentration}
	case MechanismSourWater:
		return 1 + in.H2SContent/10000*(1+in.WaterContent/100), map[string]float64{"h2sContent": in.H2SContent, "waterContent": in.WaterContent}
	case MechanismHighTempH2S:
		return 1 + in.H2SContent/5000, map[string]float64{"h2sContent": in.H2SContent}
	case MechanismSulfidic:
		return 1 + in.SulfurContent/2, map[string]float64{"sulfurContent": in.SulfurContent}
	case MechanismNaphthenicAcid:
		return 1 + in.AcidNumber/2, map[string]float64{"acidNumber": in.AcidNumber}
	case MechanismAtmospheric:
		return 1 + in.Humidity/100*(1+in.Salinity), map[string]float64{"humidity": in.Humidity, "salinity": in.Salinity}
	case MechanismCoolingWater:
		return 1 + in.ChlorideContent/1000, map[string]float64{"chlorideContent": in.ChlorideContent}
	case MechanismGalvanic:
		return 1 + 2*in.PotentialDifference, map[string]float64{"potentialDifference": in.PotentialDifference}
	default: // MechanismBasic
		return 1, map[string]float64{}
	}
}

// mechanismInput names the largest raw input behind a mechanism factor.
func mechanismInput(used map[string]float64) string {
	names := slices.Sorted(maps.Keys(used))
	best := ""
	for _, name := range names {
		if best == "" || math.Abs(used[name]) > math.Abs(used[best]) {
			best = name
		}
	}
	return best
}

// Thinning computes the normalized thinning damage factor for mechanism m.
func Thinning(m ThinningMechanism, in ThinningInput) (schema.FormulaResult, error) {
	if in.NominalThickness <= 0 {
		return schema.FormulaResult{}, &InputError{Field: "nominalThickness", Reason: "must be greater than zero"}
	}

	loss := in.NominalThickness - in.CurrentThickness
	ratio := loss / in.NominalThickness
	factors := map[string]float64{
		"thinningLoss":          loss,
		"lossRatio":             ratio,
		"managementFactor":      in.ManagementFactor,
		"environmentalSeverity": in.EnvironmentalSeverity,
	}

	var base float64
	var expr string
	switch {
	case loss <= 0:
		// No wall loss: the mechanism multiplier is never evaluated.
		expr = fmt.Sprintf("(%s / %s)", fmtNum(loss), fmtNum(in.NominalThickness))
	case m == MechanismUniform:
		divisor := in.InspectionEffectiveness * in.ConfidenceFactor
		if divisor <= 0 {
			return schema.FormulaResult{}, &InputError{Field: "inspectionEffectiveness", Reason: "times confidenceFactor must be greater than zero"}
		}
		factors["inspectionEffectiveness"] = in.InspectionEffectiveness
		factors["confidenceFactor"] = in.ConfidenceFactor
		base = ratio / divisor
		expr = fmt.Sprintf("(%s / %s) / (%s × %s)",
			fmtNum(loss), fmtNum(in.NominalThickness), fmtNum(in.InspectionEffectiveness), fmtNum(in.ConfidenceFactor))
	default:
		mf, used := mechanismFactor(m, in)
		if math.IsInf(mf, 0) || math.IsNaN(mf) {
			return schema.FormulaResult{}, &InputError{Field: mechanismInput(used), Reason: "overflows the mechanism factor"}
		}
		maps.Copy(factors, used)
		factors["mechanismFactor"] = mf
		base = ratio * mf
		expr = fmt.Sprintf("(%s / %s) × %s", fmtNum(loss), fmtNum(in.NominalThickness), fmtNum(mf))
	}

	value := clamp(product(base, in.ManagementFactor, in.EnvironmentalSeverity), 0, 1)
	return schema.FormulaResult{
		Value:   value,
		Formula: fmt.Sprintf("Dthin[%s] = clamp(%s × %s × %s, 0, 1) = %s", m, expr, fmtNum(in.ManagementFactor), fmtNum(in.EnvironmentalSeverity), fmtNum(value)),
		Factors: factors,
		Metadata: schema.ResultMetadata{
			Unit:  "fraction",
			Range: schema.BoundedRange(0, 1),
		},
	}, nil
}
