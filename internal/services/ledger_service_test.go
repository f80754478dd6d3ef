package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustCreateTx(t *testing.T, svc *LedgerService, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := svc.Create(context.Background(), tx)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return created
}

func TestLedgerCreate(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	svc := NewLedgerService(store)
	ctx := context.Background()

	acc := newAccount(t, store, "Main")
	other := newAccount(t, store, "Other")
	food := mustCreateCategory(t, cats, acc.ID, "Food", nil)
	otherCat := mustCreateCategory(t, cats, other.ID, "Misc", nil)

	base := core.Transaction{
		AccountID:  acc.ID,
		CategoryID: food.ID,
		Type:       core.Expense,
		Amount:     core.Money{Cents: 1500},
		Date:       day(2024, time.March, 10),
	}

	t.Run("valid", func(t *testing.T) {
		created, err := svc.Create(ctx, base)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == 0 {
			t.Error("no ID assigned")
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		tx := base
		tx.AccountID = 9999
		if _, err := svc.Create(ctx, tx); !core.IsNotFoundError(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		tx := base
		tx.CategoryID = 9999
		if _, err := svc.Create(ctx, tx); !core.IsNotFoundError(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("cross-account category", func(t *testing.T) {
		tx := base
		tx.CategoryID = otherCat.ID
		if _, err := svc.Create(ctx, tx); !core.IsCrossAccountError(err) {
			t.Errorf("error = %v, want cross-account error", err)
		}
	})

	t.Run("zero amount", func(t *testing.T) {
		tx := base
		tx.Amount.Cents = 0
		if _, err := svc.Create(ctx, tx); !core.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})
}

func TestLedgerQuery(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	svc := NewLedgerService(store)
	ctx := context.Background()

	acc := newAccount(t, store, "Main")
	other := newAccount(t, store, "Other")
	food := mustCreateCategory(t, cats, acc.ID, "Food", nil)
	misc := mustCreateCategory(t, cats, other.ID, "Misc", nil)

	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: food.ID, Type: core.Expense, Amount: core.Money{Cents: 100}, Date: day(2024, time.March, 20)})
	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: food.ID, Type: core.Expense, Amount: core.Money{Cents: 200}, Date: day(2024, time.March, 5)})
	mustCreateTx(t, svc, core.Transaction{AccountID: other.ID, CategoryID: misc.ID, Type: core.Expense, Amount: core.Money{Cents: 300}, Date: day(2024, time.March, 10)})

	t.Run("scoped to account, sorted by date", func(t *testing.T) {
		txs, err := svc.Query(ctx, acc.ID, core.DateRange{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(txs) != 2 {
			t.Fatalf("len = %d, want 2", len(txs))
		}
		if txs[0].Amount.Cents != 200 || txs[1].Amount.Cents != 100 {
			t.Errorf("order = [%d, %d], want [200, 100]", txs[0].Amount.Cents, txs[1].Amount.Cents)
		}
	})

	t.Run("all accounts", func(t *testing.T) {
		txs, err := svc.Query(ctx, 0, core.DateRange{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(txs) != 3 {
			t.Errorf("len = %d, want 3", len(txs))
		}
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		start := day(2024, time.March, 5)
		end := day(2024, time.March, 10)
		txs, err := svc.Query(ctx, 0, core.DateRange{Start: &start, End: &end})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(txs) != 2 {
			t.Errorf("len = %d, want 2 (both bounds inclusive)", len(txs))
		}
	})
}

func TestLedgerUpdateDelete(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	svc := NewLedgerService(store)
	ctx := context.Background()

	acc := newAccount(t, store, "Main")
	food := mustCreateCategory(t, cats, acc.ID, "Food", nil)
	tx := mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: food.ID, Type: core.Expense, Amount: core.Money{Cents: 100}, Date: day(2024, time.March, 1)})

	tx.Amount.Cents = 250
	if _, err := svc.Update(ctx, tx); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := store.GetTransaction(ctx, tx.ID)
	if got.Amount.Cents != 250 {
		t.Errorf("Amount = %d, want 250", got.Amount.Cents)
	}

	missing := tx
	missing.ID = 9999
	if _, err := svc.Update(ctx, missing); !core.IsNotFoundError(err) {
		t.Errorf("Update(9999) error = %v, want not found", err)
	}

	if err := svc.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, tx.ID); !core.IsNotFoundError(err) {
		t.Errorf("second delete error = %v, want not found", err)
	}
}

func TestSumByCategorySubtree(t *testing.T) {
	store := memory.NewStore()
	cats := NewCategoryService(store)
	svc := NewLedgerService(store)
	ctx := context.Background()

	acc := newAccount(t, store, "Main")
	other := newAccount(t, store, "Other")

	// food -> {groceries, restaurants -> sushi}; rent is a sibling root
	food := mustCreateCategory(t, cats, acc.ID, "Food", nil)
	groceries := mustCreateCategory(t, cats, acc.ID, "Groceries", &food.ID)
	restaurants := mustCreateCategory(t, cats, acc.ID, "Restaurants", &food.ID)
	sushi := mustCreateCategory(t, cats, acc.ID, "Sushi", &restaurants.ID)
	rent := mustCreateCategory(t, cats, acc.ID, "Rent", nil)
	otherCat := mustCreateCategory(t, cats, other.ID, "Misc", nil)

	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: food.ID, Type: core.Expense, Amount: core.Money{Cents: 100}, Date: day(2024, time.March, 1)})
	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: groceries.ID, Type: core.Expense, Amount: core.Money{Cents: 200}, Date: day(2024, time.March, 2)})
	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: sushi.ID, Type: core.Expense, Amount: core.Money{Cents: 400}, Date: day(2024, time.March, 3)})
	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: rent.ID, Type: core.Expense, Amount: core.Money{Cents: 80000}, Date: day(2024, time.March, 4)})
	// Income under the subtree never counts
	mustCreateTx(t, svc, core.Transaction{AccountID: acc.ID, CategoryID: food.ID, Type: core.Income, Amount: core.Money{Cents: 5000}, Date: day(2024, time.March, 5)})

	t.Run("whole subtree", func(t *testing.T) {
		got, err := svc.SumByCategorySubtree(ctx, acc.ID, food.ID, core.DateRange{})
		if err != nil {
			t.Fatalf("SumByCategorySubtree: %v", err)
		}
		if got.Cents != 700 {
			t.Errorf("sum = %d, want 700", got.Cents)
		}
	})

	t.Run("subtree sums are additive over disjoint child subtrees", func(t *testing.T) {
		g, err := svc.SumByCategorySubtree(ctx, acc.ID, groceries.ID, core.DateRange{})
		if err != nil {
			t.Fatalf("groceries: %v", err)
		}
		r, err := svc.SumByCategorySubtree(ctx, acc.ID, restaurants.ID, core.DateRange{})
		if err != nil {
			t.Fatalf("restaurants: %v", err)
		}
		// food's own spend plus the two child subtrees equals the whole
		if g.Cents+r.Cents+100 != 700 {
			t.Errorf("additivity broken: %d + %d + 100 != 700", g.Cents, r.Cents)
		}
	})

	t.Run("date range filters", func(t *testing.T) {
		start := day(2024, time.March, 2)
		end := day(2024, time.March, 3)
		got, err := svc.SumByCategorySubtree(ctx, acc.ID, food.ID, core.DateRange{Start: &start, End: &end})
		if err != nil {
			t.Fatalf("SumByCategorySubtree: %v", err)
		}
		if got.Cents != 600 {
			t.Errorf("sum = %d, want 600", got.Cents)
		}
	})

	t.Run("leaf subtree is just the leaf", func(t *testing.T) {
		got, err := svc.SumByCategorySubtree(ctx, acc.ID, sushi.ID, core.DateRange{})
		if err != nil {
			t.Fatalf("SumByCategorySubtree: %v", err)
		}
		if got.Cents != 400 {
			t.Errorf("sum = %d, want 400", got.Cents)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.SumByCategorySubtree(ctx, acc.ID, 9999, core.DateRange{})
		if !core.IsNotFoundError(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("cross-account root", func(t *testing.T) {
		_, err := svc.SumByCategorySubtree(ctx, acc.ID, otherCat.ID, core.DateRange{})
		if !core.IsCrossAccountError(err) {
			t.Errorf("error = %v, want cross-account error", err)
		}
	})
}
