package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

type profileRequest struct {
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
}

type profileResponse struct {
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	p, err := s.store.GetProfile(r.Context(), uid)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile fetch failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{DisplayName: p.DisplayName, Timezone: p.Timezone})
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	p := core.Profile{
		UserID:      uid,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Timezone:    strings.TrimSpace(req.Timezone),
	}
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "timezone must be a valid IANA name")
		return
	}

	if err := s.store.PutProfile(r.Context(), p); err != nil {
		slog.ErrorContext(r.Context(), "Profile save failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{DisplayName: p.DisplayName, Timezone: p.Timezone})
}
