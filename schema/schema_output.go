package schema

// Severity labels shared by text, CSV and JSON outputs.
const (
	CriticalValue = "Critical"
	HighValue     = "High"
	ModerateValue = "Moderate"
	LowValue      = "Low"
	UnratedValue  = "-"
)

// EnrichedResult adds presentation data to a FormulaResult.
type EnrichedResult struct {
	Label string `json:"label"`
	FormulaResult
}

// FamilyListing groups registry definitions under their family for display.
type FamilyListing struct {
	Family      Family              `json:"family"`
	Definitions []FormulaDefinition `json:"definitions"`
}

// CatalogRenderModel is the complete model for printing the formula registry.
type CatalogRenderModel struct {
	Title    string          `json:"title"`
	Families []FamilyListing `json:"families"`
}

// GetPlainLabel returns a plain text label for a result.
// Risk matrix results use their band name; bounded damage factors are graded
// by the fraction of their range consumed; unbounded results are unrated.
func GetPlainLabel(r FormulaResult) string {
	if r.Risk != nil {
		return r.Risk.LevelName
	}
	if r.Metadata.Range.Max == nil || *r.Metadata.Range.Max <= r.Metadata.Range.Min {
		return UnratedValue
	}
	span := *r.Metadata.Range.Max - r.Metadata.Range.Min
	frac := (r.Value - r.Metadata.Range.Min) / span
	switch {
	case frac >= 0.8:
		return CriticalValue
	case frac >= 0.6:
		return HighValue
	case frac >= 0.4:
		return ModerateValue
	default:
		return LowValue
	}
}

// EnrichResult adds a label to a single result.
func EnrichResult(r FormulaResult) EnrichedResult {
	return EnrichedResult{Label: GetPlainLabel(r), FormulaResult: r}
}

// DefinitionDetail is a registry definition together with the values its
// optional inputs take when omitted.
type DefinitionDetail struct {
	FormulaDefinition
	Defaults map[string]any `json:"defaults"`
}

// BatchRenderModel summarizes a batch evaluation for display.
type BatchRenderModel struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// NewBatchRenderModel counts outcomes over items.
func NewBatchRenderModel(items []BatchItemResult) BatchRenderModel {
	model := BatchRenderModel{Total: len(items), Items: items}
	for _, item := range items {
		if item.Succeeded() {
			model.Succeeded++
		} else {
			model.Failed++
		}
	}
	return model
}
