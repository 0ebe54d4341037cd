// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/rbicalc/schema"
)

// StoreManager defines the interface for managing ledger stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetLedgerStore() LedgerStore
}

// LedgerStore defines the interface for recording calculation runs.
type LedgerStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (string, error)

	// RecordCalculation stores one calculation outcome under a run
	RecordCalculation(runID string, entry schema.CalculationEntry) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalCalculations int) error

	// GetStatus returns status information about the ledger store
	GetStatus() (schema.LedgerStatus, error)

	// GetAllRuns returns every run, newest first
	GetAllRuns() ([]schema.LedgerRunRecord, error)

	// GetAllCalculations returns every calculation ordered by run and sequence
	GetAllCalculations() ([]schema.CalculationRecord, error)

	// Close closes the underlying connection
	Close() error
}
