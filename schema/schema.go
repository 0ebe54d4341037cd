// Package schema has models, enumerations and errors shared by all parts of rbicalc.
package schema

import "slices"

// FormulaInput is the open bag of named inputs supplied by the host application.
// Field names are case-sensitive and variant-specific.
type FormulaInput map[string]any

// ValueRange is the documented output range of a formula.
// A nil Max means the output is unbounded above.
type ValueRange struct {
	Min float64  `json:"min"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether v lies within the range.
func (r ValueRange) Contains(v float64) bool {
	if v < r.Min {
		return false
	}
	return r.Max == nil || v <= *r.Max
}

// BoundedRange returns a closed range [lo, hi].
func BoundedRange(lo, hi float64) ValueRange {
	return ValueRange{Min: lo, Max: &hi}
}

// UnboundedRange returns a range [lo, +inf).
func UnboundedRange(lo float64) ValueRange {
	return ValueRange{Min: lo}
}

// FormulaDefinition describes one registered formula variant.
// Definitions are built once by the registry and never mutated afterwards.
type FormulaDefinition struct {
	Family      Family     `json:"family"`
	Key         VariantKey `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Required    []string   `json:"required_inputs"` // Checked in declared order
	Optional    []string   `json:"optional_inputs"`
	Unit        string     `json:"unit"`
	Category    string     `json:"category"`
	Version     string     `json:"version"`
	Range       ValueRange `json:"range"`
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (d FormulaDefinition) Clone() FormulaDefinition {
	d.Required = slices.Clone(d.Required)
	d.Optional = slices.Clone(d.Optional)
	if d.Range.Max != nil {
		hi := *d.Range.Max
		d.Range.Max = &hi
	}
	return d
}

// ResultMetadata carries presentation details for a result.
type ResultMetadata struct {
	Unit  string     `json:"unit"`
	Range ValueRange `json:"range"`
	Notes []string   `json:"notes,omitempty"`
}

// FormulaResult is the outcome of a successful calculation.
type FormulaResult struct {
	Key      VariantKey         `json:"key"`
	Family   Family             `json:"family"`
	Value    float64            `json:"value"`
	Formula  string             `json:"formula"` // Human-readable expression that produced Value
	Factors  map[string]float64 `json:"factors"` // Resolved sub-factors for audit/traceability
	Metadata ResultMetadata     `json:"metadata"`
	Risk     *RiskAssessment    `json:"risk,omitempty"` // Only set by the risk matrix family
}

// RiskAssessment is the classification produced by the risk matrix.
type RiskAssessment struct {
	Score                    float64 `json:"score"`
	Level                    int     `json:"level"` // Ordinal 1 (lowest) to 5 (highest)
	LevelName                string  `json:"level_name"`
	Category                 string  `json:"category"` // A through E
	Priority                 string  `json:"priority"`
	InspectionIntervalMonths int     `json:"inspection_interval_months"`
}

// RiskMatrixResult couples the formula result with its risk classification.
type RiskMatrixResult struct {
	FormulaResult
	RiskAssessment
}
