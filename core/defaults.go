package core

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/huangsam/rbicalc/core/algo"
	"github.com/huangsam/rbicalc/schema"
)

// Default values for optional inputs, one entry per calculator input type.
// Raw inputs are decoded over a copy of these, so anything the caller omits
// keeps the value below.
var (
	thinningDefaults = algo.ThinningInput{
		LocalizationFactor:      2.0,
		ErosionRate:             0.1,
		FlowVelocity:            1.0,
		MicrobialActivity:       0.5,
		OxygenLevel:             0.5,
		PHLevel:                 7.0,
		Causticity:              0.1,
		AmineConcentration:      20,
		H2SContent:              0,
		WaterContent:            0,
		SulfurContent:           0.5,
		AcidNumber:              0.5,
		Humidity:                50,
		Salinity:                0,
		ChlorideContent:         0,
		PotentialDifference:     0.1,
		InspectionEffectiveness: 1.0,
		ConfidenceFactor:        1.0,
		ManagementFactor:        1.0,
		EnvironmentalSeverity:   1.0,
	}

	externalDefaults = algo.ExternalInput{
		CathodicProtection: false,
	}

	sccDefaults = algo.SCCInput{
		H2SContent:      0,
		ChlorideContent: 0,
	}

	fatigueDefaults = algo.FatigueInput{
		FatigueLife:    1_000_000,
		VibrationLevel: 0,
	}

	// WeatherExposure only applies to the basic variant; advanced requires it.
	cuiDefaults = algo.CUIInput{
		WeatherExposure:       schema.WeatherExposed,
		MoistureIngress:       schema.MoistureModerate,
		CoatingCondition:      schema.ConditionFair,
		EnvironmentalSeverity: schema.SeverityModerate,
		OperatingCycles:       50,
		MaintenanceFrequency:  1,
		Age:                   20,
	}
)

// familyDefaults returns the default input struct of a family, or nil when
// the family has no optional inputs.
func familyDefaults(family schema.Family) any {
	switch family {
	case schema.DthinFamily:
		return thinningDefaults
	case schema.DFExtFamily:
		return externalDefaults
	case schema.DFSccFamily:
		return sccDefaults
	case schema.DFMfatFamily:
		return fatigueDefaults
	case schema.DFCuiFamily:
		return cuiDefaults
	}
	return nil
}

// OptionalDefaults returns the value each optional input of def takes when omitted.
func OptionalDefaults(def schema.FormulaDefinition) map[string]any {
	out := map[string]any{}
	defaults := familyDefaults(def.Family)
	if defaults == nil || len(def.Optional) == 0 {
		return out
	}
	all := map[string]any{}
	if err := mapstructure.Decode(defaults, &all); err != nil {
		return out
	}
	for _, field := range def.Optional {
		if v, ok := all[field]; ok {
			out[field] = v
		}
	}
	return out
}
