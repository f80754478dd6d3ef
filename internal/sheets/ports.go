// Package sheets defines ports for external report sinks.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// ReportWriter appends an aggregated spending report to an external
// sheet or document.
type ReportWriter interface {
	WriteMonthlyReport(ctx context.Context, report core.MonthlyReport) error
}
