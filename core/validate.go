package core

import (
	"strings"

	"github.com/huangsam/rbicalc/schema"
)

// ValidateInputs checks the required inputs of def in declared order and
// reports the first one that is missing. A field is missing when it is absent,
// nil, or a blank string.
func ValidateInputs(def schema.FormulaDefinition, inputs schema.FormulaInput) *schema.FormulaError {
	for _, field := range def.Required {
		if !isPresent(inputs, field) {
			return schema.NewMissingInputError(def.Key, field)
		}
	}
	return nil
}

// isPresent reports whether inputs carries a usable value for field.
func isPresent(inputs schema.FormulaInput, field string) bool {
	v, ok := inputs[field]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}
