package services

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

type capturingPublisher struct {
	alerts []core.BudgetAlert
}

func (p *capturingPublisher) PublishBudgetAlert(_ context.Context, a core.BudgetAlert) error {
	p.alerts = append(p.alerts, a)
	return nil
}

func setupBudgetFixture(t *testing.T) (*memory.Store, *LedgerService, *BudgetService, core.Account, core.Category) {
	t.Helper()
	store := memory.NewStore()
	cats := NewCategoryService(store)
	ledger := NewLedgerService(store)
	budgets := NewBudgetService(store, nil, 80)

	acc := newAccount(t, store, "Main")
	cat := mustCreateCategory(t, cats, acc.ID, "Food", nil)
	return store, ledger, budgets, acc, cat
}

func TestBudgetSet(t *testing.T) {
	_, _, budgets, acc, _ := setupBudgetFixture(t)
	ctx := context.Background()
	start := day(2024, time.March, 1)
	end := day(2024, time.March, 31)

	t.Run("valid", func(t *testing.T) {
		b, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 50000}, Start: start, End: end})
		if err != nil {
			t.Fatalf("Set: %v", err)
		}
		if b.ID == 0 || b.CreatedAt.IsZero() {
			t.Errorf("budget not fully populated: %+v", b)
		}
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: -1}, Start: start, End: end})
		if !core.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 100}, Start: end, End: start})
		if !core.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := budgets.Set(ctx, core.Budget{AccountID: 9999, Limit: core.Money{Cents: 100}, Start: start, End: end})
		if !core.IsNotFoundError(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestBudgetCheck(t *testing.T) {
	_, ledger, budgets, acc, cat := setupBudgetFixture(t)
	ctx := context.Background()
	start := day(2024, time.March, 1)
	end := day(2024, time.March, 31)
	now := day(2024, time.March, 15)

	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 50000}, Start: start, End: end}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// 420.00 of expenses inside the window, income and out-of-window noise around it
	mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 30000}, Date: day(2024, time.March, 5)})
	mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 12000}, Date: day(2024, time.March, 31)})
	mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Income, Amount: core.Money{Cents: 99900}, Date: day(2024, time.March, 10)})
	mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 7700}, Date: day(2024, time.April, 1)})

	status, err := budgets.Check(ctx, acc.ID, now)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.TotalExpenses.Cents != 42000 {
		t.Errorf("TotalExpenses = %d, want 42000", status.TotalExpenses.Cents)
	}
	if status.RemainingBudget.Cents != 8000 {
		t.Errorf("RemainingBudget = %d, want 8000", status.RemainingBudget.Cents)
	}
	if status.IsExceeded {
		t.Error("IsExceeded = true, want false")
	}
	if math.Abs(status.PercentageUsed-84.0) > 1e-9 {
		t.Errorf("PercentageUsed = %v, want 84", status.PercentageUsed)
	}
}

func TestBudgetCheckNoActiveBudget(t *testing.T) {
	_, _, budgets, acc, _ := setupBudgetFixture(t)
	ctx := context.Background()

	_, err := budgets.Check(ctx, acc.ID, day(2024, time.March, 15))
	if !core.IsNotFoundError(err) {
		t.Errorf("error = %v, want not found", err)
	}

	// A budget exists but the window has passed
	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 100}, Start: day(2024, time.January, 1), End: day(2024, time.January, 31)}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := budgets.Check(ctx, acc.ID, day(2024, time.March, 15)); !core.IsNotFoundError(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestBudgetCheckOverlapLatestWins(t *testing.T) {
	_, _, budgets, acc, _ := setupBudgetFixture(t)
	ctx := context.Background()

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	budgets.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	start := day(2024, time.March, 1)
	end := day(2024, time.March, 31)
	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 10000}, Start: start, End: end}); err != nil {
		t.Fatalf("Set first: %v", err)
	}
	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 20000}, Start: start, End: end}); err != nil {
		t.Fatalf("Set second: %v", err)
	}

	status, err := budgets.Check(ctx, acc.ID, day(2024, time.March, 15))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.BudgetLimit.Cents != 20000 {
		t.Errorf("BudgetLimit = %d, want the later budget's 20000", status.BudgetLimit.Cents)
	}
}

func TestBudgetCheckZeroLimit(t *testing.T) {
	_, ledger, budgets, acc, cat := setupBudgetFixture(t)
	ctx := context.Background()
	start := day(2024, time.March, 1)
	end := day(2024, time.March, 31)
	now := day(2024, time.March, 15)

	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 0}, Start: start, End: end}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	t.Run("no spend", func(t *testing.T) {
		status, err := budgets.Check(ctx, acc.ID, now)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if status.PercentageUsed != 100.0 {
			t.Errorf("PercentageUsed = %v, want 100", status.PercentageUsed)
		}
		if status.IsExceeded {
			t.Error("IsExceeded = true with zero spend, want false")
		}
	})

	t.Run("any spend exceeds", func(t *testing.T) {
		mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 1}, Date: now})
		status, err := budgets.Check(ctx, acc.ID, now)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !status.IsExceeded {
			t.Error("IsExceeded = false, want true")
		}
		if status.PercentageUsed != 100.0 {
			t.Errorf("PercentageUsed = %v, want 100", status.PercentageUsed)
		}
		if status.RemainingBudget.Cents != -1 {
			t.Errorf("RemainingBudget = %d, want -1", status.RemainingBudget.Cents)
		}
	})
}

func TestBudgetAlerts(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	ledger := NewLedgerService(store)
	budgets := NewBudgetService(store, nil, 80)
	ctx := context.Background()

	start := day(2024, time.March, 1)
	end := day(2024, time.March, 31)
	now := day(2024, time.March, 15)

	spend := func(acc core.Account, cat core.Category, cents int64) {
		mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: cents}, Date: now})
	}
	withBudget := func(name string, limit int64) (core.Account, core.Category) {
		acc := newAccount(t, store, name)
		cat := mustCreateCategory(t, cats, acc.ID, "Spend", nil)
		if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: limit}, Start: start, End: end}); err != nil {
			t.Fatalf("Set: %v", err)
		}
		return acc, cat
	}

	calmAcc, calmCat := withBudget("calm", 10000)
	spend(calmAcc, calmCat, 5000) // 50%, no alert

	warnAcc, warnCat := withBudget("warn", 10000)
	spend(warnAcc, warnCat, 8500) // 85%, warning

	overAcc, overCat := withBudget("over", 10000)
	spend(overAcc, overCat, 12000) // 120%, error

	// Account without any budget contributes nothing
	newAccount(t, store, "no budget")

	alerts, err := budgets.Alerts(ctx, now)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2: %+v", len(alerts), alerts)
	}

	byAccount := map[int64]core.BudgetAlert{}
	for _, a := range alerts {
		byAccount[a.AccountID] = a
	}
	if a, ok := byAccount[warnAcc.ID]; !ok || a.Severity != core.SeverityWarning || a.Threshold != 80 {
		t.Errorf("warn alert = %+v, want warning at threshold 80", a)
	}
	if a, ok := byAccount[overAcc.ID]; !ok || a.Severity != core.SeverityError || a.Threshold != 100 {
		t.Errorf("over alert = %+v, want error at threshold 100", a)
	}
	if _, ok := byAccount[calmAcc.ID]; ok {
		t.Error("calm account produced an alert")
	}
}

func TestBudgetAlertsZeroLimit(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	ledger := NewLedgerService(store)
	budgets := NewBudgetService(store, nil, 80)
	ctx := context.Background()

	now := day(2024, time.March, 15)
	acc := newAccount(t, store, "frozen")
	cat := mustCreateCategory(t, cats, acc.ID, "Spend", nil)
	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 0}, Start: day(2024, time.March, 1), End: day(2024, time.March, 31)}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	t.Run("no spend warns without claiming excess", func(t *testing.T) {
		alerts, err := budgets.Alerts(ctx, now)
		if err != nil {
			t.Fatalf("Alerts: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("alerts = %d, want 1: %+v", len(alerts), alerts)
		}
		a := alerts[0]
		if a.Severity != core.SeverityWarning {
			t.Errorf("Severity = %q, want warning", a.Severity)
		}
		if strings.Contains(a.Message, "exceeded") {
			t.Errorf("Message = %q claims the budget is exceeded with zero spend", a.Message)
		}
	})

	t.Run("any spend escalates to error", func(t *testing.T) {
		mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 1}, Date: now})
		alerts, err := budgets.Alerts(ctx, now)
		if err != nil {
			t.Fatalf("Alerts: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("alerts = %d, want 1: %+v", len(alerts), alerts)
		}
		a := alerts[0]
		if a.Severity != core.SeverityError {
			t.Errorf("Severity = %q, want error", a.Severity)
		}
		if !strings.Contains(a.Message, "Budget exceeded") {
			t.Errorf("Message = %q, want exceeded wording", a.Message)
		}
	})
}

func TestPublishAlertIfTriggered(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	ledger := NewLedgerService(store)
	pub := &capturingPublisher{}
	budgets := NewBudgetService(store, pub, 80)
	ctx := context.Background()

	acc := newAccount(t, store, "Main")
	cat := mustCreateCategory(t, cats, acc.ID, "Spend", nil)
	now := day(2024, time.March, 15)

	// No budget: nothing published, nothing fails
	budgets.PublishAlertIfTriggered(ctx, acc.ID, now)
	if len(pub.alerts) != 0 {
		t.Fatalf("published %d alerts without a budget", len(pub.alerts))
	}

	if _, err := budgets.Set(ctx, core.Budget{AccountID: acc.ID, Limit: core.Money{Cents: 10000}, Start: day(2024, time.March, 1), End: day(2024, time.March, 31)}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 5000}, Date: now})
	budgets.PublishAlertIfTriggered(ctx, acc.ID, now)
	if len(pub.alerts) != 0 {
		t.Fatalf("published below threshold: %+v", pub.alerts)
	}

	mustCreateTx(t, ledger, core.Transaction{AccountID: acc.ID, CategoryID: cat.ID, Type: core.Expense, Amount: core.Money{Cents: 4000}, Date: now})
	budgets.PublishAlertIfTriggered(ctx, acc.ID, now)
	if len(pub.alerts) != 1 || pub.alerts[0].Severity != core.SeverityWarning {
		t.Fatalf("alerts = %+v, want one warning", pub.alerts)
	}
}
