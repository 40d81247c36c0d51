package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/store"
	"bilancio/internal/summary"
)

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	month := r.URL.Query().Get("month")
	if month != "" && !summary.MonthLabelPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	out, err := s.summaries.GetMonthlySummary(r.Context(), uid, month)
	if err != nil {
		// A stored timezone that no longer resolves is a data problem,
		// not a client one.
		slog.ErrorContext(r.Context(), "Summary computation failed", "error", err, "user_id", uid, "month", month)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

type analysisRequest struct {
	Month string `json:"month"`
}

type analysisResponse struct {
	Month       string `json:"month"`
	Model       string `json:"model"`
	Content     string `json:"content"`
	GeneratedAt string `json:"generatedAt"`
}

func (s *Server) handleRequestAnalysis(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	var req analysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !summary.MonthLabelPattern.MatchString(req.Month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis queue not configured")
		return
	}

	if err := s.publisher.PublishAnalysisRequest(r.Context(), uid, req.Month); err != nil {
		slog.ErrorContext(r.Context(), "Analysis enqueue failed", "error", err, "user_id", uid, "month", req.Month)
		writeError(w, http.StatusBadGateway, "could not enqueue analysis request")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "queued",
		"month":  req.Month,
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	month := r.URL.Query().Get("month")
	if !summary.MonthLabelPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	a, err := s.store.GetAnalysis(r.Context(), uid, month)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no analysis for this month yet")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Analysis fetch failed", "error", err, "user_id", uid, "month", month)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		Month:       a.Month,
		Model:       a.Model,
		Content:     a.Content,
		GeneratedAt: a.GeneratedAt.UTC().Format(time.RFC3339),
	})
}
