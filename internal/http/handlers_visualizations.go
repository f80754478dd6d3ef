package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

func (s *Server) handleSpendingTrend(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt64(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = string(core.Monthly)
	}

	points, err := s.svc.Trends.SpendingTrend(r.Context(), accountID, core.Granularity(period))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]trendPointView, 0, len(points))
	for _, p := range points {
		views = append(views, newTrendPointView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.Budgets.Alerts(r.Context(), time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, newAlertView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	dateRange, err := queryDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	distribution, err := s.svc.Trends.CategoryDistribution(r.Context(), dateRange)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]distributionView, 0, len(distribution))
	for _, c := range distribution {
		views = append(views, newDistributionView(c))
	}
	writeJSON(w, http.StatusOK, views)
}
