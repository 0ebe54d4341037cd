package schema_test

import (
	"testing"

	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		result   schema.FormulaResult
		expected string
	}{
		{"Critical Upper", fraction(1.0), "Critical"},
		{"Critical Lower", fraction(0.8), "Critical"},
		{"High Lower", fraction(0.6), "High"},
		{"Moderate Upper", fraction(0.59), "Moderate"},
		{"Moderate Lower", fraction(0.4), "Moderate"},
		{"Low", fraction(0.1), "Low"},
		{"Unbounded", schema.FormulaResult{Value: 1e6, Metadata: schema.ResultMetadata{Range: schema.UnboundedRange(0)}}, "-"},
		{"Risk Band", schema.FormulaResult{Value: 0.05, Risk: &schema.RiskAssessment{LevelName: "Medium"}}, "Medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.result))
		})
	}
}

func fraction(v float64) schema.FormulaResult {
	return schema.FormulaResult{Value: v, Metadata: schema.ResultMetadata{Range: schema.BoundedRange(0, 1)}}
}

func TestEnrichResult(t *testing.T) {
	enriched := schema.EnrichResult(fraction(0.9))
	assert.Equal(t, "Critical", enriched.Label)
	assert.Equal(t, 0.9, enriched.Value)
}

func TestNewBatchRenderModel(t *testing.T) {
	result := fraction(0.2)
	items := []schema.BatchItemResult{
		{Index: 0, Result: &result},
		{Index: 1, Error: schema.NewNotFoundError("DTHIN_99")},
		{Index: 2}, // never evaluated
	}

	model := schema.NewBatchRenderModel(items)
	assert.Equal(t, 3, model.Total)
	assert.Equal(t, 1, model.Succeeded)
	assert.Equal(t, 2, model.Failed)
	assert.Len(t, model.Items, 3)
}
