// Package worker runs the background side of budget alerting: it sweeps
// budgets on a schedule, publishes triggered alerts to the broker, and
// dispatches consumed alerts as notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
)

// alertConsumer is the broker side the worker reads from. *amqp.Client
// satisfies it.
type alertConsumer interface {
	ConsumeBudgetAlerts(ctx context.Context, handler func(*amqp.BudgetAlertMessage) error) error
}

// AlertWorker consumes budget alert messages and periodically re-evaluates
// every account's budget so alerts fire even without write traffic.
type AlertWorker struct {
	consumer  alertConsumer
	publisher services.AlertPublisher
	budgets   *services.BudgetService
	trends    *services.TrendService
	reports   sheets.ReportWriter // nil disables report export
	logger    *applog.StructuredLogger

	sweepInterval  time.Duration
	reportInterval time.Duration
}

func NewAlertWorker(client *amqp.Client, budgets *services.BudgetService, trends *services.TrendService, reports sheets.ReportWriter, logger *applog.StructuredLogger, sweepInterval time.Duration) *AlertWorker {
	return &AlertWorker{
		consumer:       client,
		publisher:      client,
		budgets:        budgets,
		trends:         trends,
		reports:        reports,
		logger:         logger,
		sweepInterval:  sweepInterval,
		reportInterval: 24 * time.Hour,
	}
}

// Run blocks until ctx is cancelled or one of the loops fails.
func (w *AlertWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.consumer.ConsumeBudgetAlerts(ctx, w.handleAlert)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return w.sweepLoop(ctx)
	})

	if w.reports != nil {
		g.Go(func() error {
			return w.reportLoop(ctx)
		})
	}

	return g.Wait()
}

// handleAlert dispatches one consumed alert. Returning an error requeues
// the message.
func (w *AlertWorker) handleAlert(msg *amqp.BudgetAlertMessage) error {
	w.logger.LogAlertDispatched(context.Background(),
		msg.AccountID, msg.Severity, msg.Threshold, msg.Message)
	return nil
}

func (w *AlertWorker) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.logger.LogError(ctx, "Budget sweep failed", err,
					applog.ComponentWorker, applog.OpSweep, applog.NewFields())
			}
		}
	}
}

// Sweep evaluates every account's active budget and publishes an alert
// message for each one at or past its warning threshold.
func (w *AlertWorker) Sweep(ctx context.Context) error {
	alerts, err := w.budgets.Alerts(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("evaluate budgets: %w", err)
	}

	for _, alert := range alerts {
		if err := w.publisher.PublishBudgetAlert(ctx, alert); err != nil {
			return fmt.Errorf("publish alert for account %d: %w", alert.AccountID, err)
		}
	}
	return nil
}

func (w *AlertWorker) reportLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.ExportMonthlyReport(ctx, time.Now()); err != nil {
				w.logger.LogError(ctx, "Report export failed", err,
					applog.ComponentWorker, applog.OpExport, applog.NewFields())
			}
		}
	}
}

// ExportMonthlyReport writes the current month's spending, aggregated by
// top-level category, to the configured report sink.
func (w *AlertWorker) ExportMonthlyReport(ctx context.Context, now time.Time) error {
	start, end, err := core.ResolveWindow(core.Monthly, now)
	if err != nil {
		return err
	}

	distribution, err := w.trends.CategoryDistribution(ctx, core.DateRange{Start: &start, End: &end})
	if err != nil {
		return fmt.Errorf("aggregate distribution: %w", err)
	}

	var total int64
	for _, entry := range distribution {
		total += entry.Amount.Cents
	}

	report := core.MonthlyReport{
		Period:     core.PeriodLabel(core.Monthly, now),
		Total:      core.Money{Cents: total},
		ByCategory: distribution,
	}
	return w.reports.WriteMonthlyReport(ctx, report)
}
