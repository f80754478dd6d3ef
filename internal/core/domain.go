package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

const (
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

type (
	// TransactionType discriminates the direction of a transaction. Amounts
	// are stored as non-negative magnitudes; the type carries the sign.
	TransactionType string

	// Granularity selects the bucket size for spending trends.
	Granularity string

	Money struct {
		Cents int64
	}

	// Account balance is an independently maintained value: creating or
	// deleting transactions never adjusts it.
	Account struct {
		ID      int64
		Name    string
		Balance Money
	}

	// Category is a node in a per-account forest. ParentID nil means root.
	Category struct {
		ID        int64
		AccountID int64
		Name      string
		ParentID  *int64
	}

	// HierarchicalCategory is a category with its direct children attached,
	// recursively. Sibling order is storage insertion order.
	HierarchicalCategory struct {
		Category
		Children []HierarchicalCategory
	}

	Transaction struct {
		ID          int64
		AccountID   int64
		CategoryID  int64
		Type        TransactionType
		Amount      Money
		Date        time.Time
		Description string
	}

	// Budget is a spending limit over an explicit [Start, End] window.
	// Period keywords like "monthly" are resolved into windows at the API
	// boundary; the engine never sees calendar semantics.
	Budget struct {
		ID        int64
		AccountID int64
		Limit     Money
		Start     time.Time
		End       time.Time
		CreatedAt time.Time
	}

	// DateRange bounds a query. Nil bounds are unbounded; both bounds are
	// inclusive.
	DateRange struct {
		Start *time.Time
		End   *time.Time
	}
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (g Granularity) IsValid() bool {
	return g == Monthly || g == Yearly
}

// Contains reports whether ts falls inside the range, bounds inclusive.
func (r DateRange) Contains(ts time.Time) bool {
	if r.Start != nil && ts.Before(*r.Start) {
		return false
	}
	if r.End != nil && ts.After(*r.End) {
		return false
	}
	return true
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("account name cannot be empty")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("category name cannot be empty")
	}
	if c.AccountID <= 0 {
		return NewValidationError("category must belong to an account")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return NewValidationError("transaction must belong to an account")
	}
	if t.CategoryID <= 0 {
		return NewValidationError("transaction must reference a category")
	}
	if !t.Type.IsValid() {
		return NewValidationError("transaction type must be Income or Expense")
	}
	if t.Amount.Cents <= 0 {
		return NewValidationError("transaction amount must be positive")
	}
	if t.Date.IsZero() {
		return NewValidationError("transaction date cannot be zero")
	}
	if len(t.Description) > 200 {
		return NewValidationError("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.AccountID <= 0 {
		return NewValidationError("budget must belong to an account")
	}
	if b.Limit.Cents < 0 {
		return NewValidationError("budget limit cannot be negative")
	}
	if b.Start.IsZero() || b.End.IsZero() {
		return NewValidationError("budget window cannot be zero")
	}
	if !b.End.After(b.Start) {
		return NewValidationError("budget window end must be after start")
	}
	return nil
}

// Active reports whether now falls inside the budget window, inclusive.
func (b Budget) Active(now time.Time) bool {
	return !now.Before(b.Start) && !now.After(b.End)
}
