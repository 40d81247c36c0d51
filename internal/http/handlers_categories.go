package http

import (
	"log/slog"
	"net/http"
	"strings"

	"bilancio/internal/core"
)

type categoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	cats, err := s.store.ListCategories(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	c := core.Category{
		UserID: uid,
		Name:   strings.TrimSpace(req.Name),
		Kind:   core.TransactionKind(req.Kind),
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateCategory(r.Context(), c)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category create failed", "error", err, "user_id", uid, "name", c.Name)
		writeError(w, http.StatusInternalServerError, "could not save category")
		return
	}

	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, Kind: string(created.Kind)})
}
