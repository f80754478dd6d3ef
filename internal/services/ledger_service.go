package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// LedgerService records and queries transactions. Writes never touch the
// account balance; that value is maintained independently.
type LedgerService struct {
	store storage.Store
}

func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", created.ID,
		"account_id", created.AccountID,
		"category_id", created.CategoryID,
		"type", created.Type,
		"amount_cents", created.Amount.Cents)

	return created, nil
}

func (s *LedgerService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if _, err := s.store.GetTransaction(ctx, t.ID); err != nil {
		return core.Transaction{}, fmt.Errorf("resolve transaction: %w", err)
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

// Delete removes a transaction. Deletion is independent of category and
// account lifecycle.
func (s *LedgerService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (s *LedgerService) checkReferences(ctx context.Context, t core.Transaction) error {
	if _, err := s.store.GetAccount(ctx, t.AccountID); err != nil {
		return fmt.Errorf("resolve account: %w", err)
	}
	cat, err := s.store.GetCategory(ctx, t.CategoryID)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	if cat.AccountID != t.AccountID {
		return core.NewCrossAccountError(
			"category %d belongs to account %d, not %d",
			cat.ID, cat.AccountID, t.AccountID)
	}
	return nil
}

// Query returns transactions ordered by date ascending, optionally scoped
// to an account (accountID nonzero) and a date range. Range bounds are
// inclusive; a nil bound is unbounded.
func (s *LedgerService) Query(ctx context.Context, accountID int64, r core.DateRange) ([]core.Transaction, error) {
	txs, err := s.list(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out, nil
}

// SumByCategorySubtree sums expense transactions recorded under the root
// category or any of its descendants, within the date range. Income is
// excluded. The subtree is flattened into an id set once, then
// transactions are filtered against it.
func (s *LedgerService) SumByCategorySubtree(ctx context.Context, accountID, rootCategoryID int64, r core.DateRange) (core.Money, error) {
	root, err := s.store.GetCategory(ctx, rootCategoryID)
	if err != nil {
		return core.Money{}, fmt.Errorf("resolve category: %w", err)
	}
	if root.AccountID != accountID {
		return core.Money{}, core.NewCrossAccountError(
			"category %d belongs to account %d, not %d",
			root.ID, root.AccountID, accountID)
	}

	all, err := s.store.ListCategoriesByAccount(ctx, accountID)
	if err != nil {
		return core.Money{}, fmt.Errorf("list categories: %w", err)
	}
	subtree := subtreeIDs(all, rootCategoryID)

	txs, err := s.store.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return core.Money{}, fmt.Errorf("list transactions: %w", err)
	}

	var total int64
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if !subtree[t.CategoryID] {
			continue
		}
		if !r.Contains(t.Date) {
			continue
		}
		total += t.Amount.Cents
	}
	return core.Money{Cents: total}, nil
}

func (s *LedgerService) list(ctx context.Context, accountID int64) ([]core.Transaction, error) {
	if accountID != 0 {
		txs, err := s.store.ListTransactionsByAccount(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		return txs, nil
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// subtreeIDs flattens the subtree rooted at rootID into an id set,
// walking a parent-to-children index breadth first.
func subtreeIDs(categories []core.Category, rootID int64) map[int64]bool {
	children := make(map[int64][]int64, len(categories))
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := map[int64]bool{rootID: true}
	queue := []int64{rootID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if !ids[child] {
				ids[child] = true
				queue = append(queue, child)
			}
		}
	}
	return ids
}
