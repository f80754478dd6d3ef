package core

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityError   AlertSeverity = "error"
)

// AlertSeverity grades a budget alert.
type AlertSeverity string

// BudgetStatus is the derived state of an account's active budget.
// It is recomputed on every query, never cached.
type BudgetStatus struct {
	AccountID       int64
	BudgetLimit     Money
	TotalExpenses   Money
	RemainingBudget Money // may be negative once the limit is exceeded
	IsExceeded      bool
	PercentageUsed  float64
}

// BudgetAlert is a derived notification for a budget approaching or past
// its limit. Threshold is the warning percentage that was in force when
// the alert was computed.
type BudgetAlert struct {
	AccountID int64
	Message   string
	Severity  AlertSeverity
	Threshold float64
}

// SpendingPoint is one bucket of a spending trend series. Period is
// "2006-01" for monthly buckets and "2006" for yearly ones.
type SpendingPoint struct {
	Period string
	Amount Money
}

// CategoryAmount represents an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthlyReport is the aggregate exported to external report sinks.
// Period uses the "2006-01" label format.
type MonthlyReport struct {
	Period     string
	Total      Money
	ByCategory []CategoryAmount
}
