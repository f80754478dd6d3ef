package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// CategoryService manages the per-account category forest.
//
// Deletion promotes: children of a deleted category are reparented to the
// deleted node's parent (or become roots). Transactions keep their
// category reference across category deletion.
type CategoryService struct {
	store storage.Store
	locks *accountLocks
}

func NewCategoryService(store storage.Store) *CategoryService {
	return &CategoryService{
		store: store,
		locks: newAccountLocks(),
	}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	lock := s.locks.get(c.AccountID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.store.GetAccount(ctx, c.AccountID); err != nil {
		return core.Category{}, fmt.Errorf("resolve account: %w", err)
	}
	if c.ParentID != nil {
		parent, err := s.store.GetCategory(ctx, *c.ParentID)
		if err != nil {
			return core.Category{}, fmt.Errorf("resolve parent: %w", err)
		}
		if parent.AccountID != c.AccountID {
			return core.Category{}, core.NewCrossAccountError(
				"parent category %d belongs to account %d, not %d",
				parent.ID, parent.AccountID, c.AccountID)
		}
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"id", created.ID,
		"account_id", created.AccountID,
		"name", created.Name)

	return created, nil
}

// CategoryPatch is a partial category update. A nil Name keeps the
// stored name. The parent changes only when SetParent is true; SetParent
// with a nil ParentID promotes the category to a root.
type CategoryPatch struct {
	Name      *string
	SetParent bool
	ParentID  *int64
}

// Update renames and/or reparents a category; fields absent from the
// patch keep their stored values. The owning account is immutable and a
// nonzero accountID must match it. All checks complete before any write.
func (s *CategoryService) Update(ctx context.Context, id, accountID int64, patch CategoryPatch) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("resolve category: %w", err)
	}
	if accountID != 0 && accountID != existing.AccountID {
		return core.Category{}, core.NewCrossAccountError(
			"category %d belongs to account %d", id, existing.AccountID)
	}

	lock := s.locks.get(existing.AccountID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock: a concurrent mutation may have landed
	existing, err = s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("resolve category: %w", err)
	}

	updated := existing
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.SetParent {
		updated.ParentID = patch.ParentID
	}
	if err := updated.Validate(); err != nil {
		return core.Category{}, err
	}

	if patch.SetParent && patch.ParentID != nil {
		if err := s.checkReparent(ctx, existing, *patch.ParentID); err != nil {
			return core.Category{}, err
		}
	}

	if err := s.store.UpdateCategory(ctx, updated); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// checkReparent validates that newParent exists, belongs to the same
// account, and is neither the category itself nor one of its descendants.
// The descendant check walks the proposed parent's ancestor chain; if it
// passes through the category, the move would close a loop.
func (s *CategoryService) checkReparent(ctx context.Context, cat core.Category, newParentID int64) error {
	if newParentID == cat.ID {
		return &core.CycleError{CategoryID: cat.ID, ParentID: newParentID}
	}

	parent, err := s.store.GetCategory(ctx, newParentID)
	if err != nil {
		return fmt.Errorf("resolve parent: %w", err)
	}
	if parent.AccountID != cat.AccountID {
		return core.NewCrossAccountError(
			"parent category %d belongs to account %d, not %d",
			parent.ID, parent.AccountID, cat.AccountID)
	}

	all, err := s.store.ListCategoriesByAccount(ctx, cat.AccountID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[int64]core.Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	// Bounded by the account's category count, so a pre-existing
	// inconsistency cannot loop forever.
	cur := parent
	for range all {
		if cur.ID == cat.ID {
			return &core.CycleError{CategoryID: cat.ID, ParentID: newParentID}
		}
		if cur.ParentID == nil {
			return nil
		}
		next, ok := byID[*cur.ParentID]
		if !ok {
			return nil
		}
		cur = next
	}
	return nil
}

// Delete removes a category, promoting its children to the deleted
// node's parent.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	cat, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}

	lock := s.locks.get(cat.AccountID)
	lock.Lock()
	defer lock.Unlock()

	all, err := s.store.ListCategoriesByAccount(ctx, cat.AccountID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, child := range all {
		if child.ParentID == nil || *child.ParentID != id {
			continue
		}
		child.ParentID = cat.ParentID
		if err := s.store.UpdateCategory(ctx, child); err != nil {
			return fmt.Errorf("promote child %d: %w", child.ID, err)
		}
	}

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted",
		"id", id,
		"account_id", cat.AccountID,
		"promoted_children_to", cat.ParentID)

	return nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// List returns the flat category list, scoped to accountID when nonzero.
func (s *CategoryService) List(ctx context.Context, accountID int64) ([]core.Category, error) {
	if accountID != 0 {
		return s.store.ListCategoriesByAccount(ctx, accountID)
	}
	return s.store.ListCategories(ctx)
}

// GetHierarchy returns the account's category forest: root categories
// with children recursively attached, sibling order preserved from
// insertion order.
func (s *CategoryService) GetHierarchy(ctx context.Context, accountID int64) ([]core.HierarchicalCategory, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	all, err := s.store.ListCategoriesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	children := make(map[int64][]core.Category, len(all))
	var roots []core.Category
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var build func(c core.Category) core.HierarchicalCategory
	build = func(c core.Category) core.HierarchicalCategory {
		node := core.HierarchicalCategory{Category: c}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]core.HierarchicalCategory, 0, len(roots))
	for _, r := range roots {
		forest = append(forest, build(r))
	}
	return forest, nil
}
