package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/huangsam/rbicalc/schema"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// EvaluateBatch runs every request through engine on at most workers
// goroutines. Results keep request order and carry their own error, so one
// failing request never hides the others. Cancelling ctx stops scheduling;
// the context error is returned alongside whatever finished.
func EvaluateBatch(ctx context.Context, engine *Engine, requests []schema.BatchRequest, workers int) ([]schema.BatchItemResult, error) {
	results := make([]schema.BatchItemResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, req := range requests {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateOne(engine, i, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// evaluateOne turns a single request into a batch item.
func evaluateOne(engine *Engine, index int, req schema.BatchRequest) schema.BatchItemResult {
	item := schema.BatchItemResult{Index: index, Request: req}
	result, err := engine.Calculate(req.Family, req.Variant, req.Inputs)
	if err != nil {
		var ferr *schema.FormulaError
		if !errors.As(err, &ferr) {
			ferr = schema.NewCalculationError(schema.NormalizeVariant(req.Variant), err.Error())
		}
		item.Error = ferr
		return item
	}
	item.Result = &result
	return item
}

// AssignRequestIDs gives every request without an id a random one.
func AssignRequestIDs(requests []schema.BatchRequest) {
	for i := range requests {
		if strings.TrimSpace(requests[i].ID) == "" {
			requests[i].ID = uuid.NewString()
		}
	}
}

// LoadBatchFile reads a YAML or JSON batch file and assigns missing request ids.
func LoadBatchFile(path string) ([]schema.BatchRequest, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	var file schema.BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}
	if len(file.Requests) == 0 {
		return nil, fmt.Errorf("batch file %s has no requests", path)
	}
	for i, req := range file.Requests {
		if strings.TrimSpace(req.Family) == "" {
			return nil, fmt.Errorf("batch request %d has no family", i)
		}
	}
	AssignRequestIDs(file.Requests)
	return file.Requests, nil
}

// LoadInputsFile reads a flat YAML or JSON mapping of input names to values.
func LoadInputsFile(path string) (schema.FormulaInput, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs file: %w", err)
	}
	inputs := schema.FormulaInput{}
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse inputs file %s: %w", path, err)
	}
	return inputs, nil
}
