package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fincas/internal/core"
	"fincas/internal/events"
	"fincas/internal/store"
)

// transactionRequest covers both create (all required fields present)
// and partial update (nil fields untouched).
type transactionRequest struct {
	Type        *string     `json:"type"`
	Amount      *core.Money `json:"amount"`
	Description *string     `json:"description"`
	CategoryID  *string     `json:"category_id"`
	Date        *core.Date  `json:"transaction_date"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	txs, err := s.store.ListTransactions(r.Context(), userID(r.Context()), filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list transactions failed", "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Type == nil || !core.TransactionType(*req.Type).IsValid() {
		writeError(w, http.StatusUnprocessableEntity, "type must be income or expense")
		return
	}
	if req.Amount == nil || req.Amount.Cents <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
		return
	}
	if req.Date == nil || req.Date.IsEmpty() {
		writeError(w, http.StatusUnprocessableEntity, "transaction_date is required")
		return
	}

	draft := store.TransactionDraft{
		Type:   core.TransactionType(*req.Type),
		Amount: *req.Amount,
		Date:   *req.Date,
	}
	if req.Description != nil {
		draft.Description = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil {
		draft.CategoryID = *req.CategoryID
	}

	tx, err := s.store.CreateTransaction(r.Context(), userID(r.Context()), draft)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publishEvent(r.Context(), events.OpCreated, tx.ID)
	s.logger.InfoContext(r.Context(), "transaction created",
		"transaction_id", tx.ID, "type", string(tx.Type), "amount_cents", tx.Amount.Cents)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := store.TransactionPatch{
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
	}
	if req.Type != nil {
		typ := core.TransactionType(*req.Type)
		if !typ.IsValid() {
			writeError(w, http.StatusUnprocessableEntity, "type must be income or expense")
			return
		}
		patch.Type = &typ
	}
	if req.Amount != nil {
		if req.Amount.Cents <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
			return
		}
		patch.Amount = req.Amount
	}
	if req.Date != nil && req.Date.IsEmpty() {
		writeError(w, http.StatusUnprocessableEntity, "transaction_date must be a valid date")
		return
	}

	tx, err := s.store.UpdateTransaction(r.Context(), userID(r.Context()), id, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.publishEvent(r.Context(), events.OpUpdated, tx.ID)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteTransaction(r.Context(), userID(r.Context()), id); err != nil {
		writeStoreError(w, err)
		return
	}

	s.publishEvent(r.Context(), events.OpDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list categories failed", "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
