package schema

import "fmt"

// ErrorKind discriminates FormulaError values.
type ErrorKind string

// All error kinds returned across the engine boundary.
const (
	FormulaNotFound      ErrorKind = "FORMULA_NOT_FOUND"
	MissingRequiredInput ErrorKind = "MISSING_REQUIRED_INPUT"
	UnsupportedFormula   ErrorKind = "UNSUPPORTED_FORMULA"
	CalculationError     ErrorKind = "CALCULATION_ERROR"
	InvalidInput         ErrorKind = "INVALID_INPUT"
)

// FormulaError is the only error type returned by the engine.
// Callers branch on Kind; Field and Message are set where the kind carries them.
type FormulaError struct {
	Kind    ErrorKind  `json:"kind"`
	Key     VariantKey `json:"key,omitempty"`
	Field   string     `json:"field,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Error implements the error interface.
func (e *FormulaError) Error() string {
	switch e.Kind {
	case FormulaNotFound:
		return fmt.Sprintf("%s: no formula registered for %q", e.Kind, e.Key)
	case MissingRequiredInput:
		return fmt.Sprintf("%s: %s requires %q", e.Kind, e.Key, e.Field)
	case UnsupportedFormula:
		return fmt.Sprintf("%s: no calculator wired for %q", e.Kind, e.Key)
	case InvalidInput:
		return fmt.Sprintf("%s: %s field %q: %s", e.Kind, e.Key, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Key, e.Message)
	}
}

// NewNotFoundError reports an unknown family/variant key.
func NewNotFoundError(key VariantKey) *FormulaError {
	return &FormulaError{Kind: FormulaNotFound, Key: key}
}

// NewMissingInputError names the first absent required field.
func NewMissingInputError(key VariantKey, field string) *FormulaError {
	return &FormulaError{Kind: MissingRequiredInput, Key: key, Field: field}
}

// NewUnsupportedError signals a registry entry with no wired calculator.
func NewUnsupportedError(key VariantKey) *FormulaError {
	return &FormulaError{Kind: UnsupportedFormula, Key: key}
}

// NewCalculationError wraps an unexpected failure, preserving its message.
func NewCalculationError(key VariantKey, msg string) *FormulaError {
	return &FormulaError{Kind: CalculationError, Key: key, Message: msg}
}

// NewInvalidInputError rejects a present but unusable input value.
func NewInvalidInputError(key VariantKey, field, msg string) *FormulaError {
	return &FormulaError{Kind: InvalidInput, Key: key, Field: field, Message: msg}
}
