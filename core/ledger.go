package core

import (
	"time"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
)

// ledgerRun records one command invocation in the calculation ledger.
// A run without a store does nothing; ledger failures are logged as warnings.
type ledgerRun struct {
	store contract.LedgerStore
	id    string
	count int
}

// beginLedgerRun opens a run for command when the manager has a ledger store.
func beginLedgerRun(mgr contract.StoreManager, command string, cfg *contract.Config) *ledgerRun {
	run := &ledgerRun{}
	if mgr == nil {
		return run
	}
	store := mgr.GetLedgerStore()
	if store == nil {
		return run
	}
	id, err := store.BeginRun(time.Now(), runParams(command, cfg))
	if err != nil {
		contract.LogWarn("Cannot begin ledger run", err)
		return run
	}
	if id == "" {
		return run
	}
	run.store = store
	run.id = id
	return run
}

// runParams captures the settings that shape a run's results.
func runParams(command string, cfg *contract.Config) map[string]any {
	return map[string]any{
		"command":            command,
		"target":             cfg.Target,
		"variant":            cfg.Variant,
		"workers":            cfg.Workers,
		"lenient_categories": cfg.LenientCategories,
	}
}

// record stores one calculation outcome under the run.
func (r *ledgerRun) record(req schema.BatchRequest, result *schema.FormulaResult, ferr *schema.FormulaError) {
	if r.store == nil {
		return
	}
	entry := schema.CalculationEntry{
		Sequence:  r.count,
		RequestID: req.ID,
		Inputs:    req.Inputs,
		Result:    result,
		Err:       ferr,
		CalcTime:  time.Now(),
	}
	switch {
	case result != nil:
		entry.Key, entry.Family = result.Key, result.Family
	case ferr != nil:
		entry.Key, entry.Family = ferr.Key, schema.NormalizeFamily(req.Family)
	}
	r.count++
	if err := r.store.RecordCalculation(r.id, entry); err != nil {
		contract.LogWarn("Cannot record calculation", err)
	}
}

// recordItems stores batch items in request order.
func (r *ledgerRun) recordItems(items []schema.BatchItemResult) {
	for _, item := range items {
		if item.Result == nil && item.Error == nil {
			continue // never scheduled
		}
		r.record(item.Request, item.Result, item.Error)
	}
}

// end closes the run with the number of recorded calculations.
func (r *ledgerRun) end() {
	if r.store == nil {
		return
	}
	if err := r.store.EndRun(r.id, time.Now(), r.count); err != nil {
		contract.LogWarn("Cannot end ledger run", err)
	}
}
