// Package services implements the finance engine: category forest,
// transaction ledger, budget evaluation, and trend aggregation on top of
// a storage.Store.
package services

import "sync"

// accountLocks serializes category mutations per account so a concurrent
// reparent/delete pair cannot corrupt the forest. Reads do not lock.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *accountLocks) get(accountID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	return m
}
