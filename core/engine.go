package core

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/huangsam/rbicalc/core/algo"
	"github.com/huangsam/rbicalc/schema"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLenientCategories makes unknown categorical values resolve to the
// neutral multiplier 1.0 instead of failing with INVALID_INPUT.
func WithLenientCategories() Option {
	return func(e *Engine) { e.lenient = true }
}

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// Engine resolves, validates and evaluates formulas.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry *Registry
	lenient  bool
}

// NewEngine creates an engine over the compiled formula registry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	return e
}

// Lenient reports whether unknown categories fall back to a neutral factor.
func (e *Engine) Lenient() bool {
	return e.lenient
}

// Calculate evaluates one formula. The variant may be empty to select the
// family's BASIC entry. Any returned error is a *schema.FormulaError.
func (e *Engine) Calculate(family, variant string, inputs schema.FormulaInput) (schema.FormulaResult, error) {
	def, ferr := e.registry.Resolve(family, variant)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	if ferr := ValidateInputs(def, inputs); ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	result, ferr := e.evaluate(def, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	if ferr := checkFiniteResult(def.Key, result); ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	result.Key = def.Key
	result.Family = def.Family
	if result.Metadata.Unit == "" {
		result.Metadata.Unit = def.Unit
	}
	return result, nil
}

// checkFiniteResult rejects a result whose value or any traced factor is NaN
// or infinite. Results must stay encodable as JSON.
func checkFiniteResult(key schema.VariantKey, result schema.FormulaResult) *schema.FormulaError {
	if math.IsNaN(result.Value) || math.IsInf(result.Value, 0) {
		return schema.NewCalculationError(key, fmt.Sprintf("result is not a finite number: %v", result.Value))
	}
	for _, name := range slices.Sorted(maps.Keys(result.Factors)) {
		if v := result.Factors[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return schema.NewCalculationError(key, fmt.Sprintf("factor %s is not a finite number: %v", name, v))
		}
	}
	return nil
}

// GetAvailableFormulas lists every registered formula.
func (e *Engine) GetAvailableFormulas() []schema.FormulaDefinition {
	return e.registry.List()
}

// GetFormulaConfig returns the definition registered under variant.
func (e *Engine) GetFormulaConfig(variant string) (schema.FormulaDefinition, bool) {
	return e.registry.Lookup(schema.NormalizeVariant(variant))
}

// GetFormulasByType lists the formulas of one family.
func (e *Engine) GetFormulasByType(family string) []schema.FormulaDefinition {
	return e.registry.ByFamily(schema.NormalizeFamily(family))
}

// evaluate routes def to its calculator. Panics are converted into
// CALCULATION_ERROR so nothing escapes the engine boundary.
func (e *Engine) evaluate(def schema.FormulaDefinition, inputs schema.FormulaInput) (result schema.FormulaResult, ferr *schema.FormulaError) {
	defer func() {
		if r := recover(); r != nil {
			result = schema.FormulaResult{}
			ferr = schema.NewCalculationError(def.Key, fmt.Sprint(r))
		}
	}()

	switch def.Family {
	case schema.DthinFamily:
		return e.thinning(def.Key, inputs)
	case schema.DFExtFamily:
		return e.external(def.Key, inputs)
	case schema.DFSccFamily:
		return e.scc(def.Key, inputs)
	case schema.DFMfatFamily:
		return e.fatigue(def.Key, inputs)
	case schema.DFCuiFamily:
		return e.cui(def.Key, inputs)
	case schema.CofFamily:
		return e.consequence(def.Key, inputs)
	case schema.RiskMatrixFamily:
		return e.riskMatrix(def.Key, inputs)
	}
	return schema.FormulaResult{}, schema.NewUnsupportedError(def.Key)
}

func (e *Engine) thinning(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	mechanism, ok := algo.ThinningMechanismFor(key)
	if !ok {
		return schema.FormulaResult{}, schema.NewUnsupportedError(key)
	}
	in, ferr := decodeInputs(key, thinningDefaults, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	result, err := algo.Thinning(mechanism, in)
	return result, fromCalculatorError(key, err)
}

func (e *Engine) external(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	in, ferr := decodeInputs(key, externalDefaults, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	if ferr := checkCategories(key, e.lenient,
		category{"coatingCondition", string(in.CoatingCondition), in.CoatingCondition.Valid()},
	); ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	return algo.ExternalCorrosion(in), nil
}

func (e *Engine) scc(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	in, ferr := decodeInputs(key, sccDefaults, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	return algo.StressCorrosionCracking(in), nil
}

func (e *Engine) fatigue(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	in, ferr := decodeInputs(key, fatigueDefaults, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	result, err := algo.MechanicalFatigue(in)
	return result, fromCalculatorError(key, err)
}

func (e *Engine) cui(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	in, ferr := decodeInputs(key, cuiDefaults, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	if ferr := checkCategories(key, e.lenient,
		category{"insulationType", string(in.InsulationType), in.InsulationType.Valid()},
		category{"insulationCondition", string(in.InsulationCondition), in.InsulationCondition.Valid()},
		category{"weatherExposure", string(in.WeatherExposure), in.WeatherExposure.Valid()},
		category{"moistureIngress", string(in.MoistureIngress), in.MoistureIngress.Valid()},
		category{"coatingCondition", string(in.CoatingCondition), in.CoatingCondition.Valid()},
		category{"environmentalSeverity", string(in.EnvironmentalSeverity), in.EnvironmentalSeverity.Valid()},
	); ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	switch key {
	case schema.DFCuiBasic:
		return algo.CorrosionUnderInsulation(in, false), nil
	case schema.DFCuiAdvanced:
		return algo.CorrosionUnderInsulation(in, true), nil
	}
	return schema.FormulaResult{}, schema.NewUnsupportedError(key)
}

func (e *Engine) consequence(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	switch key {
	case schema.CofProduction:
		in, ferr := decodeInputs(key, algo.ProductionConsequenceInput{}, inputs)
		if ferr != nil {
			return schema.FormulaResult{}, ferr
		}
		return algo.ProductionConsequence(in), nil
	case schema.CofArea:
		in, ferr := decodeInputs(key, algo.AreaConsequenceInput{}, inputs)
		if ferr != nil {
			return schema.FormulaResult{}, ferr
		}
		return algo.AreaConsequence(in), nil
	}
	return schema.FormulaResult{}, schema.NewUnsupportedError(key)
}

func (e *Engine) riskMatrix(key schema.VariantKey, inputs schema.FormulaInput) (schema.FormulaResult, *schema.FormulaError) {
	in, ferr := decodeInputs(key, algo.RiskInput{}, inputs)
	if ferr != nil {
		return schema.FormulaResult{}, ferr
	}
	return algo.RiskMatrix(in), nil
}

// fromCalculatorError maps calculator errors onto the engine taxonomy.
func fromCalculatorError(key schema.VariantKey, err error) *schema.FormulaError {
	if err == nil {
		return nil
	}
	var inputErr *algo.InputError
	if errors.As(err, &inputErr) {
		return schema.NewInvalidInputError(key, inputErr.Field, inputErr.Reason)
	}
	return schema.NewCalculationError(key, err.Error())
}
