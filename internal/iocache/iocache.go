// Package iocache persists calculation runs to the configured ledger backend.
package iocache

import (
	"sync"

	"github.com/huangsam/rbicalc/internal/contract"
)

// LedgerStoreManager manages the LedgerStore instance.
type LedgerStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	ledger       contract.LedgerStore
}

var _ contract.StoreManager = &LedgerStoreManager{} // Compile-time check

// GetLedgerStore returns the LedgerStore, or nil before initialization.
func (mgr *LedgerStoreManager) GetLedgerStore() contract.LedgerStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ledger
}
