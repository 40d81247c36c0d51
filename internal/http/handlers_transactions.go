package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
	"bilancio/internal/summary"
)

type transactionRequest struct {
	CategoryID string `json:"categoryId"`
	Amount     string `json:"amount"`
	Kind       string `json:"kind"`
	Note       string `json:"note"`
	OccurredAt string `json:"occurredAt"` // RFC3339; empty means now
}

type transactionResponse struct {
	ID           string `json:"id"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Amount       string `json:"amount"`
	Kind         string `json:"kind"`
	Note         string `json:"note,omitempty"`
	OccurredAt   string `json:"occurredAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		Amount:       core.FormatCents(t.Amount.Cents),
		Kind:         string(t.Kind),
		Note:         t.Note,
		OccurredAt:   t.OccurredAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "occurredAt must be RFC3339")
			return
		}
		occurredAt = parsed.UTC()
	}

	cat, err := s.store.GetCategory(r.Context(), uid, req.CategoryID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Category lookup failed", "error", err, "category_id", req.CategoryID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if string(cat.Kind) != req.Kind {
		writeError(w, http.StatusBadRequest, "transaction kind does not match category kind")
		return
	}

	t := core.Transaction{
		UserID:       uid,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Amount:       core.Money{Cents: cents},
		Kind:         core.TransactionKind(req.Kind),
		Note:         strings.TrimSpace(req.Note),
		OccurredAt:   occurredAt,
	}
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "user_id", uid)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())

	month := r.URL.Query().Get("month")
	if month != "" && !summary.MonthLabelPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	rng, err := s.summaries.MonthRange(r.Context(), uid, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month range resolution failed", "error", err, "user_id", uid, "month", month)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items, err := s.store.QueryTransactions(r.Context(), uid, rng.Start, rng.End)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction query failed", "error", err, "user_id", uid, "month", rng.Label)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := struct {
		Month        string                `json:"month"`
		Transactions []transactionResponse `json:"transactions"`
	}{
		Month:        rng.Label,
		Transactions: make([]transactionResponse, 0, len(items)),
	}
	for _, t := range items {
		out.Transactions = append(out.Transactions, toTransactionResponse(t))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r.Context())
	id := r.PathValue("id")

	err := s.store.DeleteTransaction(r.Context(), uid, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", "error", err, "user_id", uid, "id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
