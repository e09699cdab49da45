package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"portafoglio/internal/core"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps ledger errors to HTTP statuses and machine-readable codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "expense_not_found", err.Error())
	case errors.Is(err, core.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
	case errors.Is(err, core.ErrEmptyTitle):
		writeError(w, http.StatusUnprocessableEntity, "empty_title", err.Error())
	case errors.Is(err, core.ErrTitleTooLong):
		writeError(w, http.StatusUnprocessableEntity, "title_too_long", err.Error())
	case errors.Is(err, core.ErrInvalidCategory):
		writeError(w, http.StatusUnprocessableEntity, "invalid_category", err.Error())
	case errors.Is(err, core.ErrInvalidDate):
		writeError(w, http.StatusUnprocessableEntity, "invalid_date", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}
