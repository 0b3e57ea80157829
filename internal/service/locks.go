package service

import (
	"sync"

	"github.com/google/uuid"
)

// tenantLocks serializes all mutating cash-desk operations per tenant.
// Totals are derived by folding movements, so a read-modify-write race
// between two sales (or a sale and a close) could observe a stale open
// status or stale totals. Locks for different tenants never contend.
type tenantLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *tenantLocks) forTenant(tenantID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[tenantID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tenantID] = m
	}
	return m
}
