package schema

import "slices"

// Categorical inputs. Values must match the table spelling exactly.
type (
	// Condition grades a coating or insulation jacket.
	Condition string

	// InsulationType names the insulation material.
	InsulationType string

	// MoistureLevel grades moisture ingress into insulation.
	MoistureLevel string

	// Severity grades the surrounding environment.
	Severity string

	// WeatherExposure describes how exposed the equipment is to weather.
	WeatherExposure string
)

// Coating and insulation conditions.
const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
	ConditionVeryPoor  Condition = "Very Poor"
)

// Insulation materials.
const (
	InsulationMineralWool     InsulationType = "Mineral Wool"
	InsulationCalciumSilicate InsulationType = "Calcium Silicate"
	InsulationCellularGlass   InsulationType = "Cellular Glass"
	InsulationPerlite         InsulationType = "Perlite"
	InsulationPolyurethane    InsulationType = "Polyurethane"
	InsulationOther           InsulationType = "Other"
)

// Moisture ingress levels.
const (
	MoistureNone     MoistureLevel = "None"
	MoistureLow      MoistureLevel = "Low"
	MoistureModerate MoistureLevel = "Moderate"
	MoistureHigh     MoistureLevel = "High"
	MoistureSevere   MoistureLevel = "Severe"
)

// Environmental severities.
const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeveritySevere   Severity = "Severe"
)

// Weather exposures.
const (
	WeatherIndoor    WeatherExposure = "Indoor"
	WeatherSheltered WeatherExposure = "Sheltered"
	WeatherExposed   WeatherExposure = "Exposed"
	WeatherMarine    WeatherExposure = "Marine"
)

// Ordered value sets, used for boundary validation and help output.
var (
	AllConditions       = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionVeryPoor}
	AllInsulationTypes  = []InsulationType{InsulationMineralWool, InsulationCalciumSilicate, InsulationCellularGlass, InsulationPerlite, InsulationPolyurethane, InsulationOther}
	AllMoistureLevels   = []MoistureLevel{MoistureNone, MoistureLow, MoistureModerate, MoistureHigh, MoistureSevere}
	AllSeverities       = []Severity{SeverityLow, SeverityModerate, SeverityHigh, SeveritySevere}
	AllWeatherExposures = []WeatherExposure{WeatherIndoor, WeatherSheltered, WeatherExposed, WeatherMarine}
)

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool { return slices.Contains(AllConditions, c) }

// Valid reports whether t is one of the known insulation types.
func (t InsulationType) Valid() bool { return slices.Contains(AllInsulationTypes, t) }

// Valid reports whether m is one of the known moisture levels.
func (m MoistureLevel) Valid() bool { return slices.Contains(AllMoistureLevels, m) }

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool { return slices.Contains(AllSeverities, s) }

// Valid reports whether w is one of the known weather exposures.
func (w WeatherExposure) Valid() bool { return slices.Contains(AllWeatherExposures, w) }
