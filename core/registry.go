package core

import (
	"fmt"

	"github.com/huangsam/rbicalc/schema"
)

// Categories used to group registry entries.
const (
	damageFactorCategory = "damage-factor"
	consequenceCategory  = "consequence"
	riskCategory         = "risk"
)

// definitionVersion is stamped on every registered formula.
const definitionVersion = "1.0.0"

// Inputs shared by every thinning variant.
var (
	thinningRequired = []string{"nominalThickness", "currentThickness", "corrosionRate", "age"}
	thinningCommon   = []string{"managementFactor", "environmentalSeverity"}
)

// thinningDefinition builds a Dthin entry with its mechanism-specific optional inputs.
func thinningDefinition(key schema.VariantKey, name, description string, optional ...string) schema.FormulaDefinition {
	return schema.FormulaDefinition{
		Family:      schema.DthinFamily,
		Key:         key,
		Name:        name,
		Description: description,
		Required:    thinningRequired,
		Optional:    append(optional, thinningCommon...),
		Unit:        "fraction",
		Category:    damageFactorCategory,
		Version:     definitionVersion,
		Range:       schema.BoundedRange(0, 1),
	}
}

// formulaTable is the closed catalog of formulas. Every key declared in
// schema must appear exactly once; registry tests enforce this.
var formulaTable = []schema.FormulaDefinition{
	thinningDefinition(schema.DthinBasic, "Thinning (basic)", "Fraction of wall thickness lost to general thinning."),
	thinningDefinition(schema.DthinLocalized, "Thinning (localized)", "Thinning concentrated at local sites such as pits.", "localizationFactor"),
	thinningDefinition(schema.DthinGeneral, "Thinning (general corrosion)", "Uniform metal loss projected over the service age."),
	thinningDefinition(schema.DthinErosion, "Thinning (erosion)", "Metal loss driven by erosive flow.", "erosionRate", "flowVelocity"),
	thinningDefinition(schema.DthinFlowAssisted, "Thinning (flow-assisted corrosion)", "Corrosion accelerated by flow velocity.", "flowVelocity"),
	thinningDefinition(schema.DthinMicrobial, "Thinning (MIC)", "Microbiologically influenced corrosion.", "microbialActivity", "oxygenLevel"),
	thinningDefinition(schema.DthinAcid, "Thinning (acid)", "Acid corrosion graded by process pH.", "phLevel"),
	thinningDefinition(schema.DthinCaustic, "Thinning (caustic)", "Caustic corrosion.", "causticity"),
	thinningDefinition(schema.DthinAmine, "Thinning (amine)", "Amine corrosion in gas treating units.", "amineConcentration"),
	thinningDefinition(schema.DthinSourWater, "Thinning (sour water)", "Sour water corrosion from dissolved H2S.", "h2sContent", "waterContent"),
	thinningDefinition(schema.DthinHighTempH2S, "Thinning (high temperature H2/H2S)", "High temperature hydrogen and H2S corrosion.", "h2sContent"),
	thinningDefinition(schema.DthinSulfidic, "Thinning (sulfidic)", "High temperature sulfidic corrosion.", "sulfurContent"),
	thinningDefinition(schema.DthinNaphthenic, "Thinning (naphthenic acid)", "Naphthenic acid corrosion graded by total acid number.", "acidNumber"),
	thinningDefinition(schema.DthinAtmospheric, "Thinning (atmospheric)", "External atmospheric corrosion.", "humidity", "salinity"),
	thinningDefinition(schema.DthinCoolingWater, "Thinning (cooling water)", "Cooling water corrosion graded by chloride content.", "chlorideContent"),
	thinningDefinition(schema.DthinGalvanic, "Thinning (galvanic)", "Galvanic corrosion between dissimilar metals.", "potentialDifference"),
	thinningDefinition(schema.DthinUniform, "Thinning (uniform)", "Loss ratio adjusted by inspection quality.", "inspectionEffectiveness", "confidenceFactor"),
	{
		Family:      schema.DFExtFamily,
		Key:         schema.DFExtBasic,
		Name:        "External corrosion",
		Description: "External corrosion damage factor reduced by coating and cathodic protection.",
		Required:    []string{"corrosionRate", "coatingCondition"},
		Optional:    []string{"cathodicProtection"},
		Unit:        "fraction",
		Category:    damageFactorCategory,
		Version:     definitionVersion,
		Range:       schema.BoundedRange(0, 1),
	},
	{
		Family:      schema.DFSccFamily,
		Key:         schema.DFSccBasic,
		Name:        "Stress corrosion cracking",
		Description: "Cracking susceptibility from stress, material, temperature and environment.",
		Required:    []string{"stressLevel", "susceptibleMaterial", "temperature"},
		Optional:    []string{"h2sContent", "chlorideContent"},
		Unit:        "fraction",
		Category:    damageFactorCategory,
		Version:     definitionVersion,
		Range:       schema.BoundedRange(0, 1),
	},
	{
		Family:      schema.DFMfatFamily,
		Key:         schema.DFMfatBasic,
		Name:        "Mechanical fatigue",
		Description: "Consumed fatigue life scaled by the squared stress range.",
		Required:    []string{"cycleCount", "stressRange"},
		Optional:    []string{"fatigueLife", "vibrationLevel"},
		Unit:        "fraction",
		Category:    damageFactorCategory,
		Version:     definitionVersion,
		Range:       schema.BoundedRange(0, 1),
	},
	{
		Family:      schema.DFCuiFamily,
		Key:         schema.DFCuiBasic,
		Name:        "Corrosion under insulation",
		Description: "Product of ten CUI susceptibility factors.",
		Required:    []string{"operatingTemperature", "insulationType", "insulationCondition"},
		Optional:    []string{"weatherExposure", "moistureIngress", "coatingCondition", "environmentalSeverity", "operatingCycles", "maintenanceFrequency", "age"},
		Unit:        "factor",
		Category:    damageFactorCategory,
		Version:     definitionVersion,
		Range:       schema.BoundedRange(0, 5),
	},
	{
		Family:      schema.DFCuiFamily,
		Key:         schema.DFCuiAdvanced,
		Name:        "Corrosion under insulation (advanced)",
		Description: "CUI factor product with explicit weather exposure and a 1.2 severity uplift.",
		Required:    []string{"operatingTemperature", "insulationType", "insulationCondition", "weatherExposure"},
		Optional:    []string{"moistureIngress", "coatingCondition", "environmentalSeverity", "operatingCycles", "maintenanceFrequency", "age"},
		Unit:        "factor",
		Category:    damageFactorCategory,
		Version:     definitionVersion,
		Range:       schema.BoundedRange(0, 5),
	},
	{
		Family:      schema.CofFamily,
		Key:         schema.CofProduction,
		Name:        "Consequence of failure (production)",
		Description: "Production loss converted to currency.",
		Required:    []string{"impact", "fluidInventory"},
		Unit:        "currency",
		Category:    consequenceCategory,
		Version:     definitionVersion,
		Range:       schema.UnboundedRange(0),
	},
	{
		Family:      schema.CofFamily,
		Key:         schema.CofArea,
		Name:        "Consequence of failure (area)",
		Description: "Affected area weighted by safety impact.",
		Required:    []string{"areaImpact", "safetyImpact"},
		Unit:        "area",
		Category:    consequenceCategory,
		Version:     definitionVersion,
		Range:       schema.UnboundedRange(0),
	},
	{
		Family:      schema.RiskMatrixFamily,
		Key:         schema.RiskMatrixBasic,
		Name:        "Risk matrix",
		Description: "Risk score pof × cof classified into inspection priority bands.",
		Required:    []string{"pof", "cof"},
		Unit:        "risk",
		Category:    riskCategory,
		Version:     definitionVersion,
		Range:       schema.UnboundedRange(0),
	},
}

// Registry is the read-only catalog of formula definitions.
// It is safe for concurrent use once constructed.
type Registry struct {
	byKey   map[schema.VariantKey]schema.FormulaDefinition
	ordered []schema.VariantKey
}

// NewRegistry builds the registry from the compiled formula table.
// It panics if the table is inconsistent, which can only be a programming error.
func NewRegistry() *Registry {
	r, err := newRegistry(formulaTable)
	if err != nil {
		panic(err)
	}
	return r
}

// newRegistry indexes defs, rejecting duplicate keys and unknown families.
func newRegistry(defs []schema.FormulaDefinition) (*Registry, error) {
	r := &Registry{
		byKey:   make(map[schema.VariantKey]schema.FormulaDefinition, len(defs)),
		ordered: make([]schema.VariantKey, 0, len(defs)),
	}
	for _, def := range defs {
		if _, ok := schema.ValidFamilies[def.Family]; !ok {
			return nil, fmt.Errorf("formula %s has unknown family %q", def.Key, def.Family)
		}
		if _, dup := r.byKey[def.Key]; dup {
			return nil, fmt.Errorf("formula %s registered twice", def.Key)
		}
		r.byKey[def.Key] = def.Clone()
		r.ordered = append(r.ordered, def.Key)
	}
	return r, nil
}

// Lookup returns a copy of the definition registered under key.
func (r *Registry) Lookup(key schema.VariantKey) (schema.FormulaDefinition, bool) {
	def, ok := r.byKey[key]
	if !ok {
		return schema.FormulaDefinition{}, false
	}
	return def.Clone(), true
}

// Resolve maps a family and optional variant onto a definition.
// An empty variant selects the family's BASIC entry. A variant registered
// under a different family is treated as not found.
func (r *Registry) Resolve(family, variant string) (schema.FormulaDefinition, *schema.FormulaError) {
	fam := schema.NormalizeFamily(family)
	key := schema.NormalizeVariant(variant)
	if key == "" {
		key = schema.DefaultVariant(fam)
	}
	def, ok := r.Lookup(key)
	if !ok || def.Family != fam {
		return schema.FormulaDefinition{}, schema.NewNotFoundError(key)
	}
	return def, nil
}

// List returns every definition in registration order.
func (r *Registry) List() []schema.FormulaDefinition {
	out := make([]schema.FormulaDefinition, 0, len(r.ordered))
	for _, key := range r.ordered {
		out = append(out, r.byKey[key].Clone())
	}
	return out
}

// ByFamily returns the definitions of one family in registration order.
func (r *Registry) ByFamily(family schema.Family) []schema.FormulaDefinition {
	out := []schema.FormulaDefinition{}
	for _, key := range r.ordered {
		if def := r.byKey[key]; def.Family == family {
			out = append(out, def.Clone())
		}
	}
	return out
}

// Len returns the number of registered formulas.
func (r *Registry) Len() int {
	return len(r.ordered)
}
