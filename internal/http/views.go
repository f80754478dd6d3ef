package http

import (
	"fintrack/internal/core"
)

// Wire views. Monetary values render as euro floats derived from cents;
// dates render as YYYY-MM-DD.

type accountView struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

func newAccountView(a core.Account) accountView {
	return accountView{ID: a.ID, Name: a.Name, Balance: a.Balance.Euros()}
}

type categoryView struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"accountId"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parentCategoryId"`
}

func newCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, AccountID: c.AccountID, Name: c.Name, ParentID: c.ParentID}
}

type hierarchyView struct {
	categoryView
	Children []hierarchyView `json:"children"`
}

func newHierarchyView(n core.HierarchicalCategory) hierarchyView {
	v := hierarchyView{
		categoryView: newCategoryView(n.Category),
		Children:     make([]hierarchyView, 0, len(n.Children)),
	}
	for _, child := range n.Children {
		v.Children = append(v.Children, newHierarchyView(child))
	}
	return v
}

type transactionView struct {
	ID          int64   `json:"id"`
	AccountID   int64   `json:"accountId"`
	CategoryID  int64   `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Type:        string(t.Type),
		Amount:      t.Amount.Euros(),
		Date:        t.Date.Format(apiDateFormat),
		Description: t.Description,
	}
}

type budgetView struct {
	ID        int64   `json:"id"`
	AccountID int64   `json:"accountId"`
	Limit     float64 `json:"limit"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
}

func newBudgetView(b core.Budget) budgetView {
	return budgetView{
		ID:        b.ID,
		AccountID: b.AccountID,
		Limit:     b.Limit.Euros(),
		StartDate: b.Start.Format(apiDateFormat),
		EndDate:   b.End.Format(apiDateFormat),
	}
}

type budgetStatusView struct {
	AccountID       int64   `json:"accountId"`
	BudgetLimit     float64 `json:"budgetLimit"`
	TotalExpenses   float64 `json:"totalExpenses"`
	RemainingBudget float64 `json:"remainingBudget"`
	IsExceeded      bool    `json:"isExceeded"`
	PercentageUsed  float64 `json:"percentageUsed"`
}

func newBudgetStatusView(s core.BudgetStatus) budgetStatusView {
	return budgetStatusView{
		AccountID:       s.AccountID,
		BudgetLimit:     s.BudgetLimit.Euros(),
		TotalExpenses:   s.TotalExpenses.Euros(),
		RemainingBudget: s.RemainingBudget.Euros(),
		IsExceeded:      s.IsExceeded,
		PercentageUsed:  s.PercentageUsed,
	}
}

type alertView struct {
	AccountID int64   `json:"accountId"`
	Message   string  `json:"message"`
	Severity  string  `json:"severity"`
	Threshold float64 `json:"threshold"`
}

func newAlertView(a core.BudgetAlert) alertView {
	return alertView{
		AccountID: a.AccountID,
		Message:   a.Message,
		Severity:  string(a.Severity),
		Threshold: a.Threshold,
	}
}

type trendPointView struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

func newTrendPointView(p core.SpendingPoint) trendPointView {
	return trendPointView{Month: p.Period, Amount: p.Amount.Euros()}
}

type distributionView struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func newDistributionView(c core.CategoryAmount) distributionView {
	return distributionView{Category: c.Name, Amount: c.Amount.Euros()}
}
