// Package core has the formula registry, input validation and decoding,
// the evaluation engine and the executors behind each CLI command.
package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/internal/outwriter"
	"github.com/huangsam/rbicalc/schema"
)

// ExecutorFunc defines the function signature for executing a CLI command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// newEngineFromConfig builds the engine for one command invocation.
func newEngineFromConfig(cfg *contract.Config) *Engine {
	if cfg.LenientCategories {
		return NewEngine(WithLenientCategories())
	}
	return NewEngine()
}

// newRequest wraps a single command-line calculation as a request with a fresh id.
func newRequest(family, variant string, inputs schema.FormulaInput) schema.BatchRequest {
	requests := []schema.BatchRequest{{Family: family, Variant: variant, Inputs: inputs}}
	AssignRequestIDs(requests)
	return requests[0]
}

// Calculate evaluates one formula with the engine cfg describes and records
// the outcome in the ledger under command.
func Calculate(cfg *contract.Config, mgr contract.StoreManager, command, family, variant string, inputs schema.FormulaInput) (schema.FormulaResult, error) {
	engine := newEngineFromConfig(cfg)
	req := newRequest(family, variant, inputs)

	run := beginLedgerRun(mgr, command, cfg)
	defer run.end()

	result, err := engine.Calculate(req.Family, req.Variant, req.Inputs)
	if err != nil {
		var ferr *schema.FormulaError
		if errors.As(err, &ferr) {
			run.record(req, nil, ferr)
		}
		return schema.FormulaResult{}, err
	}
	run.record(req, &result, nil)
	return result, nil
}

// ExecuteCalc evaluates one formula and prints the result.
// Inputs from --inputs-file are overridden by --input pairs of the same name.
func ExecuteCalc(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if cfg.Target == "" {
		return errors.New("a formula family is required")
	}

	inputs := schema.FormulaInput{}
	if cfg.InputsFile != "" {
		fileInputs, err := LoadInputsFile(cfg.InputsFile)
		if err != nil {
			return err
		}
		maps.Copy(inputs, fileInputs)
	}
	maps.Copy(inputs, cfg.Inputs)

	result, err := Calculate(cfg, mgr, "calc", cfg.Target, cfg.Variant, inputs)
	if err != nil {
		return err
	}

	return outwriter.WriteCalcResult(result, cfg, time.Since(start))
}

// ExecuteBatch evaluates every request of a batch file and prints the results.
// Failed requests are reported next to the successful ones.
func ExecuteBatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	if cfg.Target == "" {
		return errors.New("a batch file is required")
	}
	requests, err := LoadBatchFile(cfg.Target)
	if err != nil {
		return err
	}

	engine := newEngineFromConfig(cfg)
	run := beginLedgerRun(mgr, "batch", cfg)
	defer run.end()

	items, err := EvaluateBatch(ctx, engine, requests, cfg.Workers)
	run.recordItems(items)
	if err != nil {
		return fmt.Errorf("batch evaluation interrupted: %w", err)
	}

	return outwriter.WriteBatchResults(items, cfg, time.Since(start))
}

// ExecuteFormulasList prints the registry, optionally limited to one family.
func ExecuteFormulasList(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	engine := newEngineFromConfig(cfg)
	if cfg.Family == "" {
		return outwriter.WriteCatalog(engine.GetAvailableFormulas(), cfg)
	}
	if _, ok := schema.ValidFamilies[schema.NormalizeFamily(cfg.Family)]; !ok {
		return fmt.Errorf("unknown formula family %q", cfg.Family)
	}
	return outwriter.WriteCatalog(engine.GetFormulasByType(cfg.Family), cfg)
}

// ExecuteFormulaShow prints one definition with the defaults of its optional inputs.
func ExecuteFormulaShow(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	engine := newEngineFromConfig(cfg)
	def, ok := engine.GetFormulaConfig(cfg.Target)
	if !ok {
		return schema.NewNotFoundError(schema.NormalizeVariant(cfg.Target))
	}
	detail := schema.DefinitionDetail{
		FormulaDefinition: def,
		Defaults:          OptionalDefaults(def),
	}
	return outwriter.WriteDefinition(detail, cfg)
}

// ExecuteRisk classifies a probability and consequence of failure on the risk matrix.
// A value the user did not set is reported as a missing input.
func ExecuteRisk(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	inputs := schema.FormulaInput{}
	maps.Copy(inputs, cfg.RiskInputs)
	result, err := Calculate(cfg, mgr, "risk", string(schema.RiskMatrixFamily), "", inputs)
	if err != nil {
		return err
	}
	if result.Risk == nil {
		return schema.NewCalculationError(result.Key, "risk matrix produced no classification")
	}

	return outwriter.WriteRiskResult(schema.RiskMatrixResult{FormulaResult: result, RiskAssessment: *result.Risk}, cfg, time.Since(start))
}
