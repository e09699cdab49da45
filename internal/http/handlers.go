package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"portafoglio/internal/core"
	"portafoglio/internal/ledger"
	applog "portafoglio/internal/log"
	"portafoglio/internal/report"
)

type walletResponse struct {
	Balance      string `json:"balance"`
	BalanceCents int64  `json:"balance_cents"`
	Expenses     int    `json:"expenses"`
}

type expenseResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

type expenseRequest struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

type incomeRequest struct {
	Amount string `json:"amount"`
}

type categoryAmountResponse struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      e.Amount.String(),
		AmountCents: e.Amount.Cents,
		Category:    string(e.Category),
		Date:        e.Date.String(),
	}
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, walletResponse{
		Balance:      snap.Balance.String(),
		BalanceCents: snap.Balance.Cents,
		Expenses:     len(snap.Expenses),
	})
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req incomeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
		return
	}

	balance, err := s.ledger.AddIncome(r.Context(), amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Income recorded",
		applog.FieldAmountCents, amount.Cents,
		applog.FieldBalance, balance.Cents,
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, applog.OpIncome)

	writeJSON(w, http.StatusOK, walletResponse{
		Balance:      balance.String(),
		BalanceCents: balance.Cents,
		Expenses:     len(s.ledger.Snapshot().Expenses),
	})
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()

	out := make([]expenseResponse, 0, len(snap.Expenses))
	for _, e := range snap.Expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}

	exp, err := s.ledger.AddExpense(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, exp.ID,
		applog.FieldTitle, exp.Title,
		applog.FieldAmountCents, exp.Amount.Cents,
		applog.FieldCategory, string(exp.Category),
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, applog.OpAdd)

	writeJSON(w, http.StatusCreated, toExpenseResponse(exp))
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "expense_not_found", "no such expense")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateExpense(w, r, id)
	case http.MethodDelete:
		s.deleteExpense(w, r, id)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id string) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}

	exp, err := s.ledger.EditExpense(r.Context(), id, draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense updated",
		applog.FieldExpenseID, exp.ID,
		applog.FieldAmountCents, exp.Amount.Cents,
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, applog.OpEdit)

	writeJSON(w, http.StatusOK, toExpenseResponse(exp))
}

// deleteExpense always succeeds: removing an absent expense is a no-op.
func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, id string) {
	removed := s.ledger.DeleteExpense(r.Context(), id)

	slog.InfoContext(r.Context(), "Expense delete handled",
		applog.FieldExpenseID, id,
		"removed", removed,
		applog.FieldComponent, applog.ComponentHTTP,
		applog.FieldOperation, applog.OpDelete)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	totals := report.CategoryTotals(s.ledger.Snapshot().Expenses)

	out := make(map[string]string, len(totals))
	for cat, amount := range totals {
		out[string(cat)] = amount.String()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	trend := report.CategoryTrend(s.ledger.Snapshot().Expenses)

	out := make([]categoryAmountResponse, 0, len(trend))
	for _, ca := range trend {
		out = append(out, categoryAmountResponse{
			Category:    string(ca.Category),
			Amount:      ca.Amount.String(),
			AmountCents: ca.Amount.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// decodeDraft parses and validates the shared add/edit request body.
// It writes the error response itself and reports success via ok.
func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (ledger.Draft, bool) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return ledger.Draft{}, false
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
		return ledger.Draft{}, false
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_date", "date must be in YYYY-MM-DD format")
		return ledger.Draft{}, false
	}

	return ledger.Draft{
		Title:    sanitizeInput(req.Title),
		Amount:   amount,
		Category: core.Category(strings.TrimSpace(req.Category)),
		Date:     date,
	}, true
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Reject trailing garbage after the JSON document
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
