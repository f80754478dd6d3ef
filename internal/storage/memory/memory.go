// Package memory implements storage.Store with in-process maps. It is
// the default backend and the fixture for service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/core"
)

type Store struct {
	mu sync.RWMutex

	accounts     map[int64]core.Account
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget

	// Insertion order per table; deletions remove the entry in place.
	accountOrder     []int64
	categoryOrder    []int64
	transactionOrder []int64
	budgetOrder      []int64

	seq int64
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[int64]core.Account),
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func removeID(order []int64, id int64) []int64 {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func (s *Store) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	s.accounts[a.ID] = a
	s.accountOrder = append(s.accountOrder, a.ID)
	return a, nil
}

func (s *Store) GetAccount(_ context.Context, id int64) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.NewNotFoundError("account %d not found", id)
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Account, 0, len(s.accountOrder))
	for _, id := range s.accountOrder {
		out = append(out, s.accounts[id])
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID()
	s.categories[c.ID] = c
	s.categoryOrder = append(s.categoryOrder, c.ID)
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.NewNotFoundError("category %d not found", id)
	}
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return core.NewNotFoundError("category %d not found", c.ID)
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.NewNotFoundError("category %d not found", id)
	}
	delete(s.categories, id)
	s.categoryOrder = removeID(s.categoryOrder, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, 0, len(s.categoryOrder))
	for _, id := range s.categoryOrder {
		out = append(out, s.categories[id])
	}
	return out, nil
}

func (s *Store) ListCategoriesByAccount(_ context.Context, accountID int64) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Category
	for _, id := range s.categoryOrder {
		if c := s.categories[id]; c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID()
	s.transactions[t.ID] = t
	s.transactionOrder = append(s.transactionOrder, t.ID)
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.NewNotFoundError("transaction %d not found", id)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return core.NewNotFoundError("transaction %d not found", t.ID)
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return core.NewNotFoundError("transaction %d not found", id)
	}
	delete(s.transactions, id)
	s.transactionOrder = removeID(s.transactionOrder, id)
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.transactionOrder))
	for _, id := range s.transactionOrder {
		out = append(out, s.transactions[id])
	}
	sortTransactions(out)
	return out, nil
}

func (s *Store) ListTransactionsByAccount(_ context.Context, accountID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, id := range s.transactionOrder {
		if t := s.transactions[id]; t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sortTransactions(out)
	return out, nil
}

// sortTransactions orders by date ascending, then ID ascending so that
// equal dates keep a stable order.
func sortTransactions(ts []core.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.Before(ts[j].Date)
		}
		return ts[i].ID < ts[j].ID
	})
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID()
	s.budgets[b.ID] = b
	s.budgetOrder = append(s.budgetOrder, b.ID)
	return b, nil
}

func (s *Store) ListBudgetsByAccount(_ context.Context, accountID int64) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Budget
	for _, id := range s.budgetOrder {
		if b := s.budgets[id]; b.AccountID == accountID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Budget, 0, len(s.budgetOrder))
	for _, id := range s.budgetOrder {
		out = append(out, s.budgets[id])
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
