// Package storage provides the persistence backends for the finance
// tracker. The Store interface is record-level: all domain rules (cycle
// checks, cross-account checks, aggregation) live in the services layer,
// so every backend behaves identically.
package storage

import (
	"context"

	"fintrack/internal/core"
)

// Store is the persistence contract shared by the SQLite and in-memory
// backends. List methods return records in insertion order (ascending
// ID) unless documented otherwise. Missing records surface as
// core.NotFoundError.
type Store interface {
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)

	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListCategoriesByAccount(ctx context.Context, accountID int64) ([]core.Category, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	// ListTransactions returns all transactions ordered by date ascending,
	// ID ascending for equal dates.
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID int64) ([]core.Transaction, error)

	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	ListBudgetsByAccount(ctx context.Context, accountID int64) ([]core.Budget, error)
	ListBudgets(ctx context.Context) ([]core.Budget, error)

	Close() error
}
