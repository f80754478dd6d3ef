package http

import (
	"net/http"

	"fintrack/internal/core"
)

type createAccountRequest struct {
	Name    string `json:"name"`
	Balance Amount `json:"balance"`
}

func (s *Server) handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.Accounts.Create(r.Context(), core.Account{
		Name:    req.Name,
		Balance: core.Money{Cents: req.Balance.Cents},
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountView(created))
}

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, newAccountView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAccountGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.svc.Accounts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountView(account))
}
