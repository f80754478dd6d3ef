package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AlertPublisher publishes budget alert events for asynchronous dispatch.
// Implemented by amqp.Client.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert core.BudgetAlert) error
}

// BudgetService sets budgets and evaluates them against the ledger.
// Budget state is always derived: nothing here is cached or materialized.
type BudgetService struct {
	store     storage.Store
	publisher AlertPublisher
	warnPct   float64
	now       func() time.Time
}

// NewBudgetService constructs a BudgetService. publisher may be nil, in
// which case alert events are logged and dropped. warnPct is the warning
// threshold in percent (80 means warn at 80% of the limit).
func NewBudgetService(store storage.Store, publisher AlertPublisher, warnPct float64) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
		warnPct:   warnPct,
		now:       time.Now,
	}
}

// Set records a budget over an explicit window. Overlapping budgets are
// kept; Check resolves overlaps at query time.
func (s *BudgetService) Set(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.store.GetAccount(ctx, b.AccountID); err != nil {
		return core.Budget{}, fmt.Errorf("resolve account: %w", err)
	}

	b.CreatedAt = s.now()
	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"id", created.ID,
		"account_id", created.AccountID,
		"limit_cents", created.Limit.Cents,
		"start", created.Start,
		"end", created.End)

	return created, nil
}

// Check evaluates the account's active budget at now. The active budget
// is the one whose window contains now; among overlapping windows the
// most recently created wins (highest ID on equal creation times).
// Returns NotFoundError when no budget window contains now.
func (s *BudgetService) Check(ctx context.Context, accountID int64, now time.Time) (core.BudgetStatus, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return core.BudgetStatus{}, fmt.Errorf("resolve account: %w", err)
	}

	budgets, err := s.store.ListBudgetsByAccount(ctx, accountID)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("list budgets: %w", err)
	}

	var active *core.Budget
	for i := range budgets {
		b := budgets[i]
		if !b.Active(now) {
			continue
		}
		if active == nil ||
			b.CreatedAt.After(active.CreatedAt) ||
			(b.CreatedAt.Equal(active.CreatedAt) && b.ID > active.ID) {
			active = &b
		}
	}
	if active == nil {
		return core.BudgetStatus{}, core.NewNotFoundError("no active budget for account %d", accountID)
	}

	total, err := s.windowExpenses(ctx, accountID, *active)
	if err != nil {
		return core.BudgetStatus{}, err
	}

	status := core.BudgetStatus{
		AccountID:       accountID,
		BudgetLimit:     active.Limit,
		TotalExpenses:   core.Money{Cents: total},
		RemainingBudget: core.Money{Cents: active.Limit.Cents - total},
		IsExceeded:      total > active.Limit.Cents,
	}
	if active.Limit.Cents == 0 {
		// A zero limit is always fully used; no division happens.
		status.PercentageUsed = 100.0
	} else {
		status.PercentageUsed = float64(total) / float64(active.Limit.Cents) * 100.0
	}
	return status, nil
}

// windowExpenses sums expense transactions inside the budget window,
// bounds inclusive. Income never offsets spending.
func (s *BudgetService) windowExpenses(ctx context.Context, accountID int64, b core.Budget) (int64, error) {
	txs, err := s.store.ListTransactionsByAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	window := core.DateRange{Start: &b.Start, End: &b.End}
	var total int64
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if !window.Contains(t.Date) {
			continue
		}
		total += t.Amount.Cents
	}
	return total, nil
}

// Alerts evaluates every account's active budget at now and returns one
// alert per account at or past the warning threshold. Accounts without
// an active budget simply produce no alert.
func (s *BudgetService) Alerts(ctx context.Context, now time.Time) ([]core.BudgetAlert, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var alerts []core.BudgetAlert
	for _, a := range accounts {
		status, err := s.Check(ctx, a.ID, now)
		if err != nil {
			if core.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("check account %d: %w", a.ID, err)
		}
		if alert, ok := s.alertFor(status); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func (s *BudgetService) alertFor(status core.BudgetStatus) (core.BudgetAlert, bool) {
	switch {
	case status.IsExceeded:
		return core.BudgetAlert{
			AccountID: status.AccountID,
			Message: fmt.Sprintf("Budget exceeded: spent %.2f of %.2f",
				status.TotalExpenses.Euros(), status.BudgetLimit.Euros()),
			Severity:  core.SeverityError,
			Threshold: 100.0,
		}, true
	case status.PercentageUsed >= 100.0:
		// Fully used without going over: spend equal to the limit, or a
		// zero-limit budget with no spend.
		return core.BudgetAlert{
			AccountID: status.AccountID,
			Message: fmt.Sprintf("Budget limit of %.2f fully used (spent %.2f)",
				status.BudgetLimit.Euros(), status.TotalExpenses.Euros()),
			Severity:  core.SeverityWarning,
			Threshold: 100.0,
		}, true
	case status.PercentageUsed >= s.warnPct:
		return core.BudgetAlert{
			AccountID: status.AccountID,
			Message: fmt.Sprintf("Approaching budget limit: %.1f%% used (spent %.2f of %.2f)",
				status.PercentageUsed, status.TotalExpenses.Euros(), status.BudgetLimit.Euros()),
			Severity:  core.SeverityWarning,
			Threshold: s.warnPct,
		}, true
	default:
		return core.BudgetAlert{}, false
	}
}

// PublishAlertIfTriggered re-evaluates the account's budget after a
// ledger write and publishes an alert event when the warning or error
// threshold is reached. A missing budget or a missing publisher is not
// an error.
func (s *BudgetService) PublishAlertIfTriggered(ctx context.Context, accountID int64, now time.Time) {
	status, err := s.Check(ctx, accountID, now)
	if err != nil {
		if !core.IsNotFoundError(err) {
			slog.ErrorContext(ctx, "Budget check after write failed",
				"account_id", accountID, "error", err)
		}
		return
	}

	alert, ok := s.alertFor(status)
	if !ok {
		return
	}
	if s.publisher == nil {
		slog.WarnContext(ctx, "Alert publisher not available, dropping budget alert",
			"account_id", alert.AccountID, "severity", alert.Severity)
		return
	}
	if err := s.publisher.PublishBudgetAlert(ctx, alert); err != nil {
		// The write already succeeded; alert delivery is best effort.
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"account_id", alert.AccountID, "error", err)
	}
}
