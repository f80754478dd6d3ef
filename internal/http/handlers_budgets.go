package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type setBudgetRequest struct {
	AccountID int64  `json:"accountId"`
	Limit     Amount `json:"limit"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	// Period is a shorthand for the current month or year; it is ignored
	// when explicit dates are given.
	Period string `json:"period"`
}

func (s *Server) handleBudgetSet(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end := req.StartDate.Time, req.EndDate.Time
	if start.IsZero() && end.IsZero() && req.Period != "" {
		var err error
		start, end, err = core.ResolveWindow(core.Granularity(req.Period), time.Now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	} else if !end.IsZero() {
		// Date-only input; stretch the end bound over its whole day
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	created, err := s.svc.Budgets.Set(r.Context(), core.Budget{
		AccountID: req.AccountID,
		Limit:     core.Money{Cents: req.Limit.Cents},
		Start:     start,
		End:       end,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newBudgetView(created))
}

func (s *Server) handleBudgetCheck(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt64(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if accountID == 0 {
		writeError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	status, err := s.svc.Budgets.Check(r.Context(), accountID, time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newBudgetStatusView(status))
}
