package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type transactionRequest struct {
	AccountID   int64  `json:"accountId"`
	CategoryID  int64  `json:"categoryId"`
	Type        string `json:"type"`
	Amount      Amount `json:"amount"`
	Date        Date   `json:"date"`
	Description string `json:"description"`
}

func (req transactionRequest) toTransaction(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(req.Type),
		Amount:      core.Money{Cents: req.Amount.Cents},
		Date:        req.Date.Time,
		Description: req.Description,
	}
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.Ledger.Create(r.Context(), req.toTransaction(0))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// A new expense may tip the account over its budget line
	s.svc.Budgets.PublishAlertIfTriggered(r.Context(), created.AccountID, time.Now())

	writeJSON(w, http.StatusCreated, newTransactionView(created))
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.Ledger.Update(r.Context(), req.toTransaction(id))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.svc.Budgets.PublishAlertIfTriggered(r.Context(), updated.AccountID, time.Now())

	writeJSON(w, http.StatusOK, newTransactionView(updated))
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Ledger.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTransactionQuery(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt64(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if accountID == 0 {
		writeError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	dateRange, err := queryDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := s.svc.Ledger.Query(r.Context(), accountID, dateRange)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, newTransactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}
