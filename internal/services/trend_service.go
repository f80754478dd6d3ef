package services

import (
	"context"
	"fmt"
	"sort"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// TrendService computes the visualization aggregates. Everything here is
// a pure read recomputed per query.
type TrendService struct {
	store storage.Store
}

func NewTrendService(store storage.Store) *TrendService {
	return &TrendService{store: store}
}

// SpendingTrend buckets expense totals by month ("2006-01") or year
// ("2006"), scoped to an account when accountID is nonzero. Buckets are
// sparse: periods without expenses are absent. Chronological order.
func (s *TrendService) SpendingTrend(ctx context.Context, accountID int64, g core.Granularity) ([]core.SpendingPoint, error) {
	if !g.IsValid() {
		return nil, core.NewValidationError(fmt.Sprintf("unknown period %q", g))
	}

	txs, err := s.listTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]int64)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		buckets[core.PeriodLabel(g, t.Date)] += t.Amount.Cents
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	// Labels are zero-padded, so lexicographic order is chronological
	sort.Strings(labels)

	points := make([]core.SpendingPoint, 0, len(labels))
	for _, label := range labels {
		points = append(points, core.SpendingPoint{
			Period: label,
			Amount: core.Money{Cents: buckets[label]},
		})
	}
	return points, nil
}

// CategoryDistribution sums expenses per top-level category inside the
// date range: spend under a nested category rolls up into its root
// ancestor's bucket. Ordered by amount descending, ties by name.
func (s *TrendService) CategoryDistribution(ctx context.Context, r core.DateRange) ([]core.CategoryAmount, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	// Memoized root-ancestor resolution, bounded by the category count
	roots := make(map[int64]int64, len(categories))
	rootOf := func(id int64) (int64, bool) {
		if root, ok := roots[id]; ok {
			return root, true
		}
		cur, ok := byID[id]
		if !ok {
			return 0, false
		}
		for range categories {
			if cur.ParentID == nil {
				roots[id] = cur.ID
				return cur.ID, true
			}
			next, ok := byID[*cur.ParentID]
			if !ok {
				roots[id] = cur.ID
				return cur.ID, true
			}
			cur = next
		}
		return cur.ID, true
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totals := make(map[int64]int64)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if !r.Contains(t.Date) {
			continue
		}
		root, ok := rootOf(t.CategoryID)
		if !ok {
			// Transaction references a deleted category; skip it
			continue
		}
		totals[root] += t.Amount.Cents
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for rootID, cents := range totals {
		out = append(out, core.CategoryAmount{
			Name:   byID[rootID].Name,
			Amount: core.Money{Cents: cents},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *TrendService) listTransactions(ctx context.Context, accountID int64) ([]core.Transaction, error) {
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
