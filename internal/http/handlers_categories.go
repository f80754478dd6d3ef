package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// Category bodies carry the parent as parentCategoryId; the shorter
// parentId spelling is accepted too.
type categoryRequest struct {
	AccountID        int64  `json:"accountId"`
	Name             string `json:"name"`
	ParentID         *int64 `json:"parentId"`
	ParentCategoryID *int64 `json:"parentCategoryId"`
}

func (req categoryRequest) parent() *int64 {
	if req.ParentCategoryID != nil {
		return req.ParentCategoryID
	}
	return req.ParentID
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.Categories.Create(r.Context(), core.Category{
		AccountID: req.AccountID,
		Name:      req.Name,
		ParentID:  req.parent(),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCategoryView(created))
}

type categoryUpdateRequest struct {
	AccountID        int64           `json:"accountId"`
	Name             *string         `json:"name"`
	ParentID         json.RawMessage `json:"parentId"`
	ParentCategoryID json.RawMessage `json:"parentCategoryId"`
}

// patch maps the body onto a partial update. An absent parent key leaves
// the parent alone; an explicit null promotes the category to a root.
func (req categoryUpdateRequest) patch() (services.CategoryPatch, error) {
	p := services.CategoryPatch{Name: req.Name}
	raw := req.ParentCategoryID
	if len(raw) == 0 {
		raw = req.ParentID
	}
	if len(raw) == 0 {
		return p, nil
	}
	p.SetParent = true
	if string(raw) == "null" {
		return p, nil
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return services.CategoryPatch{}, errors.New("parent category id must be a number or null")
	}
	p.ParentID = &id
	return p, nil
}

func (s *Server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req categoryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.Categories.Update(r.Context(), id, req.AccountID, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCategoryView(updated))
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Categories.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt64(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := s.svc.Categories.List(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, newCategoryView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCategoryHierarchy(w http.ResponseWriter, r *http.Request) {
	accountID, err := queryInt64(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if accountID == 0 {
		writeError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	s.writeHierarchy(w, r, accountID)
}

// handleCategoriesByAccount serves the same forest under the path shape
// older clients use.
func (s *Server) handleCategoriesByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeHierarchy(w, r, accountID)
}

func (s *Server) writeHierarchy(w http.ResponseWriter, r *http.Request, accountID int64) {
	forest, err := s.svc.Categories.GetHierarchy(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]hierarchyView, 0, len(forest))
	for _, root := range forest {
		views = append(views, newHierarchyView(root))
	}
	writeJSON(w, http.StatusOK, views)
}
