package services

import (
	"context"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func newAccount(t *testing.T, store *memory.Store, name string) core.Account {
	t.Helper()
	a, err := store.CreateAccount(context.Background(), core.Account{Name: name})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func mustCreateCategory(t *testing.T, svc *CategoryService, accountID int64, name string, parentID *int64) core.Category {
	t.Helper()
	c, err := svc.Create(context.Background(), core.Category{
		AccountID: accountID,
		Name:      name,
		ParentID:  parentID,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return c
}

func TestCategoryCreate(t *testing.T) {
	store := memory.NewStore()
	svc := NewCategoryService(store)
	ctx := context.Background()
	acc := newAccount(t, store, "Main")
	other := newAccount(t, store, "Other")

	root := mustCreateCategory(t, svc, acc.ID, "Food", nil)
	otherRoot := mustCreateCategory(t, svc, other.ID, "Misc", nil)

	t.Run("child under existing parent", func(t *testing.T) {
		c, err := svc.Create(ctx, core.Category{AccountID: acc.ID, Name: "Groceries", ParentID: &root.ID})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.ParentID == nil || *c.ParentID != root.ID {
			t.Errorf("ParentID = %v, want %d", c.ParentID, root.ID)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, core.Category{AccountID: acc.ID, Name: "   "})
		if !core.IsValidationError(err) {
			t.Errorf("error = %v, want validation error", err)
		}
	})

	t.Run("unknown parent rejected", func(t *testing.T) {
		missing := int64(9999)
		_, err := svc.Create(ctx, core.Category{AccountID: acc.ID, Name: "X", ParentID: &missing})
		if !core.IsNotFoundError(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("cross-account parent rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, core.Category{AccountID: acc.ID, Name: "X", ParentID: &otherRoot.ID})
		if !core.IsCrossAccountError(err) {
			t.Errorf("error = %v, want cross-account error", err)
		}
	})

	t.Run("unknown account rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, core.Category{AccountID: 9999, Name: "X"})
		if !core.IsNotFoundError(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestCategoryReparentCycleRejected(t *testing.T) {
	store := memory.NewStore()
	svc := NewCategoryService(store)
	ctx := context.Background()
	acc := newAccount(t, store, "Main")

	// a -> b -> c
	a := mustCreateCategory(t, svc, acc.ID, "a", nil)
	b := mustCreateCategory(t, svc, acc.ID, "b", &a.ID)
	c := mustCreateCategory(t, svc, acc.ID, "c", &b.ID)

	tests := []struct {
		name      string
		id        int64
		newParent int64
	}{
		{"self parent", a.ID, a.ID},
		{"direct child", a.ID, b.ID},
		{"grandchild", a.ID, c.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, _ := store.GetCategory(ctx, tt.id)
			_, err := svc.Update(ctx, tt.id, 0, CategoryPatch{SetParent: true, ParentID: &tt.newParent})
			if !core.IsCycleError(err) {
				t.Fatalf("error = %v, want cycle error", err)
			}
			// The store must be untouched by the rejected move
			after, getErr := store.GetCategory(ctx, tt.id)
			if getErr != nil {
				t.Fatalf("GetCategory: %v", getErr)
			}
			if (after.ParentID == nil) != (cat.ParentID == nil) {
				t.Errorf("parent changed after rejected reparent: %v -> %v", cat.ParentID, after.ParentID)
			}
		})
	}
}

func TestCategoryReparentValid(t *testing.T) {
	store := memory.NewStore()
	svc := NewCategoryService(store)
	ctx := context.Background()
	acc := newAccount(t, store, "Main")

	a := mustCreateCategory(t, svc, acc.ID, "a", nil)
	b := mustCreateCategory(t, svc, acc.ID, "b", &a.ID)
	other := mustCreateCategory(t, svc, acc.ID, "other", nil)

	// Moving b from under a to under other is legal
	updated, err := svc.Update(ctx, b.ID, 0, CategoryPatch{SetParent: true, ParentID: &other.ID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ParentID == nil || *updated.ParentID != other.ID {
		t.Errorf("ParentID = %v, want %d", updated.ParentID, other.ID)
	}

	// Promoting to root is legal
	name := "b renamed"
	if _, err := svc.Update(ctx, b.ID, 0, CategoryPatch{Name: &name, SetParent: true}); err != nil {
		t.Fatalf("Update to root: %v", err)
	}
	got, _ := store.GetCategory(ctx, b.ID)
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, want nil", got.ParentID)
	}
	if got.Name != "b renamed" {
		t.Errorf("Name = %q, want %q", got.Name, "b renamed")
	}
}

func TestCategoryPartialUpdate(t *testing.T) {
	store := memory.NewStore()
	svc := NewCategoryService(store)
	ctx := context.Background()
	acc := newAccount(t, store, "Main")
	other := newAccount(t, store, "Other")

	parent := mustCreateCategory(t, svc, acc.ID, "Food", nil)
	child := mustCreateCategory(t, svc, acc.ID, "Groceries", &parent.ID)

	t.Run("rename keeps parent", func(t *testing.T) {
		name := "Shopping"
		updated, err := svc.Update(ctx, child.ID, acc.ID, CategoryPatch{Name: &name})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Name != "Shopping" {
			t.Errorf("Name = %q, want %q", updated.Name, "Shopping")
		}
		if updated.ParentID == nil || *updated.ParentID != parent.ID {
			t.Errorf("ParentID = %v, want %d", updated.ParentID, parent.ID)
		}
	})

	t.Run("reparent keeps name", func(t *testing.T) {
		target := mustCreateCategory(t, svc, acc.ID, "Household", nil)
		updated, err := svc.Update(ctx, child.ID, 0, CategoryPatch{SetParent: true, ParentID: &target.ID})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Name != "Shopping" {
			t.Errorf("Name = %q, want %q", updated.Name, "Shopping")
		}
		if updated.ParentID == nil || *updated.ParentID != target.ID {
			t.Errorf("ParentID = %v, want %d", updated.ParentID, target.ID)
		}
	})

	t.Run("empty patch changes nothing", func(t *testing.T) {
		before, _ := store.GetCategory(ctx, child.ID)
		updated, err := svc.Update(ctx, child.ID, 0, CategoryPatch{})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Name != before.Name {
			t.Errorf("Name = %q, want %q", updated.Name, before.Name)
		}
		if (updated.ParentID == nil) != (before.ParentID == nil) {
			t.Errorf("ParentID = %v, want %v", updated.ParentID, before.ParentID)
		}
	})

	t.Run("account mismatch rejected", func(t *testing.T) {
		name := "Hijacked"
		_, err := svc.Update(ctx, child.ID, other.ID, CategoryPatch{Name: &name})
		if !core.IsCrossAccountError(err) {
			t.Errorf("error = %v, want cross-account error", err)
		}
	})
}

func TestCategoryDeletePromotesChildren(t *testing.T) {
	store := memory.NewStore()
	svc := NewCategoryService(store)
	ctx := context.Background()
	acc := newAccount(t, store, "Main")

	// root -> mid -> {leaf1, leaf2}
	root := mustCreateCategory(t, svc, acc.ID, "root", nil)
	mid := mustCreateCategory(t, svc, acc.ID, "mid", &root.ID)
	leaf1 := mustCreateCategory(t, svc, acc.ID, "leaf1", &mid.ID)
	leaf2 := mustCreateCategory(t, svc, acc.ID, "leaf2", &mid.ID)

	if err := svc.Delete(ctx, mid.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, leaf := range []core.Category{leaf1, leaf2} {
		got, err := store.GetCategory(ctx, leaf.ID)
		if err != nil {
			t.Fatalf("GetCategory(%d): %v", leaf.ID, err)
		}
		if got.ParentID == nil || *got.ParentID != root.ID {
			t.Errorf("leaf %d ParentID = %v, want %d", leaf.ID, got.ParentID, root.ID)
		}
	}

	// Deleting a root promotes its children to roots
	if err := svc.Delete(ctx, root.ID); err != nil {
		t.Fatalf("Delete root: %v", err)
	}
	for _, leaf := range []core.Category{leaf1, leaf2} {
		got, _ := store.GetCategory(ctx, leaf.ID)
		if got.ParentID != nil {
			t.Errorf("leaf %d ParentID = %v, want nil after root deletion", leaf.ID, got.ParentID)
		}
	}

	if err := svc.Delete(ctx, 9999); !core.IsNotFoundError(err) {
		t.Errorf("Delete(9999) error = %v, want not found", err)
	}
}

func TestGetHierarchy(t *testing.T) {
	store := memory.NewStore()
	svc := NewCategoryService(store)
	ctx := context.Background()
	acc := newAccount(t, store, "Main")
	other := newAccount(t, store, "Other")

	food := mustCreateCategory(t, svc, acc.ID, "Food", nil)
	groceries := mustCreateCategory(t, svc, acc.ID, "Groceries", &food.ID)
	restaurants := mustCreateCategory(t, svc, acc.ID, "Restaurants", &food.ID)
	sushi := mustCreateCategory(t, svc, acc.ID, "Sushi", &restaurants.ID)
	rent := mustCreateCategory(t, svc, acc.ID, "Rent", nil)
	mustCreateCategory(t, svc, other.ID, "Unrelated", nil)

	forest, err := svc.GetHierarchy(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetHierarchy: %v", err)
	}

	if len(forest) != 2 {
		t.Fatalf("roots = %d, want 2", len(forest))
	}
	if forest[0].ID != food.ID || forest[1].ID != rent.ID {
		t.Errorf("root order = [%d, %d], want [%d, %d]", forest[0].ID, forest[1].ID, food.ID, rent.ID)
	}

	foodNode := forest[0]
	if len(foodNode.Children) != 2 {
		t.Fatalf("food children = %d, want 2", len(foodNode.Children))
	}
	if foodNode.Children[0].ID != groceries.ID || foodNode.Children[1].ID != restaurants.ID {
		t.Errorf("food child order = [%d, %d], want [%d, %d]",
			foodNode.Children[0].ID, foodNode.Children[1].ID, groceries.ID, restaurants.ID)
	}
	restNode := foodNode.Children[1]
	if len(restNode.Children) != 1 || restNode.Children[0].ID != sushi.ID {
		t.Errorf("restaurants children = %+v, want single node %d", restNode.Children, sushi.ID)
	}

	// Every category of the account appears exactly once
	seen := map[int64]int{}
	var walk func(nodes []core.HierarchicalCategory)
	walk = func(nodes []core.HierarchicalCategory) {
		for _, n := range nodes {
			seen[n.ID]++
			walk(n.Children)
		}
	}
	walk(forest)
	for _, id := range []int64{food.ID, groceries.ID, restaurants.ID, sushi.ID, rent.ID} {
		if seen[id] != 1 {
			t.Errorf("category %d appears %d times, want 1", id, seen[id])
		}
	}

	if _, err := svc.GetHierarchy(ctx, 9999); !core.IsNotFoundError(err) {
		t.Errorf("GetHierarchy(9999) error = %v, want not found", err)
	}
}
