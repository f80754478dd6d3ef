package services

import "fintrack/internal/storage"

// Bundle groups the engine services built over one store.
type Bundle struct {
	Accounts   *AccountService
	Categories *CategoryService
	Ledger     *LedgerService
	Budgets    *BudgetService
	Trends     *TrendService
}

// NewBundle constructs every service over the same store. publisher may
// be nil when no message broker is configured.
func NewBundle(store storage.Store, publisher AlertPublisher, warnPct float64) Bundle {
	return Bundle{
		Accounts:   NewAccountService(store),
		Categories: NewCategoryService(store),
		Ledger:     NewLedgerService(store),
		Budgets:    NewBudgetService(store, publisher, warnPct),
		Trends:     NewTrendService(store),
	}
}
