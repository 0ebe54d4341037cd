package iocache

import (
	"time"

	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetLedgerStore implements the StoreManager interface.
func (m *MockStoreManager) GetLedgerStore() contract.LedgerStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.LedgerStore)
	return store
}

// MockLedgerStore is a mock implementation of LedgerStore for testing.
type MockLedgerStore struct {
	mock.Mock
}

var _ contract.LedgerStore = &MockLedgerStore{} // Compile-time check

// BeginRun implements the LedgerStore interface.
func (m *MockLedgerStore) BeginRun(startTime time.Time, configParams map[string]any) (string, error) {
	args := m.Called(startTime, configParams)
	return args.String(0), args.Error(1)
}

// RecordCalculation implements the LedgerStore interface.
func (m *MockLedgerStore) RecordCalculation(runID string, entry schema.CalculationEntry) error {
	args := m.Called(runID, entry)
	return args.Error(0)
}

// EndRun implements the LedgerStore interface.
func (m *MockLedgerStore) EndRun(runID string, endTime time.Time, totalCalculations int) error {
	args := m.Called(runID, endTime, totalCalculations)
	return args.Error(0)
}

// GetStatus implements the LedgerStore interface.
func (m *MockLedgerStore) GetStatus() (schema.LedgerStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.LedgerStatus), args.Error(1)
}

// GetAllRuns implements the LedgerStore interface.
func (m *MockLedgerStore) GetAllRuns() ([]schema.LedgerRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.LedgerRunRecord)
	return runs, args.Error(1)
}

// GetAllCalculations implements the LedgerStore interface.
func (m *MockLedgerStore) GetAllCalculations() ([]schema.CalculationRecord, error) {
	args := m.Called()
	calcs, _ := args.Get(0).([]schema.CalculationRecord)
	return calcs, args.Error(1)
}

// Close implements the LedgerStore interface.
func (m *MockLedgerStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
