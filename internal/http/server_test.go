package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portafoglio/internal/core"
	"portafoglio/internal/ledger"
	"portafoglio/internal/service"
)

func newTestServer(t *testing.T, openingCents int64) *Server {
	t.Helper()
	book := ledger.NewBook(core.Money{Cents: openingCents}, nil)
	svc := service.NewLedgerService(book, nil, nil)
	return NewServer(":0", svc)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, 0)
	defer srv.rateLimiter.stop()

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestWalletAndIncome(t *testing.T) {
	srv := newTestServer(t, 5000)
	defer srv.rateLimiter.stop()

	rr := doJSON(t, srv, http.MethodGet, "/api/wallet", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("wallet status=%d", rr.Code)
	}
	var wallet walletResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &wallet); err != nil {
		t.Fatalf("decode wallet: %v", err)
	}
	if wallet.BalanceCents != 5000 || wallet.Balance != "50.00" {
		t.Fatalf("wallet = %+v, want 5000 cents / 50.00", wallet)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/wallet/income", `{"amount":"10.00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("income status=%d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &wallet); err != nil {
		t.Fatalf("decode income response: %v", err)
	}
	if wallet.BalanceCents != 6000 {
		t.Fatalf("balance after income = %d, want 6000", wallet.BalanceCents)
	}

	// Invalid amount is rejected without changing the balance
	rr = doJSON(t, srv, http.MethodPost, "/api/wallet/income", `{"amount":"abc"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid income status=%d", rr.Code)
	}

	// Malformed JSON
	rr = doJSON(t, srv, http.MethodPost, "/api/wallet/income", `{"amount":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed income status=%d", rr.Code)
	}

	// Wrong method
	rr = doJSON(t, srv, http.MethodGet, "/api/wallet/income", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("income GET status=%d", rr.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t, 500000)
	defer srv.rateLimiter.stop()

	rr := doJSON(t, srv, http.MethodPost, "/api/expenses",
		`{"title":"Lunch","amount":"20.00","category":"Food","date":"2026-08-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	var created expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.AmountCents != 2000 || created.Category != "Food" {
		t.Fatalf("created = %+v", created)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("list = %+v", listed)
	}

	rr = doJSON(t, srv, http.MethodPut, "/api/expenses/"+created.ID,
		`{"title":"Team lunch","amount":"35.00","category":"Food","date":"2026-08-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status=%d body=%s", rr.Code, rr.Body.String())
	}
	var edited expenseResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &edited); err != nil {
		t.Fatalf("decode edited: %v", err)
	}
	if edited.ID != created.ID || edited.AmountCents != 3500 || edited.Title != "Team lunch" {
		t.Fatalf("edited = %+v", edited)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}

	// Deleting again is a no-op, still success
	rr = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("second delete status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/wallet", "")
	var wallet walletResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &wallet); err != nil {
		t.Fatalf("decode wallet: %v", err)
	}
	if wallet.BalanceCents != 500000 || wallet.Expenses != 0 {
		t.Fatalf("wallet after delete = %+v, want full refund", wallet)
	}
}

func TestExpenseValidation(t *testing.T) {
	srv := newTestServer(t, 1000)
	defer srv.rateLimiter.stop()

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "invalid amount",
			body:     `{"title":"x","amount":"abc","category":"Food","date":"2026-08-01"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "invalid_amount",
		},
		{
			name:     "empty title",
			body:     `{"title":"  ","amount":"1.00","category":"Food","date":"2026-08-01"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "empty_title",
		},
		{
			name:     "title too long",
			body:     `{"title":"` + strings.Repeat("x", 250) + `","amount":"1.00","category":"Food","date":"2026-08-01"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "title_too_long",
		},
		{
			name:     "unknown category",
			body:     `{"title":"x","amount":"1.00","category":"Pets","date":"2026-08-01"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "invalid_category",
		},
		{
			name:     "bad date",
			body:     `{"title":"x","amount":"1.00","category":"Food","date":"01/08/2026"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "invalid_date",
		},
		{
			name:     "insufficient funds",
			body:     `{"title":"x","amount":"99.00","category":"Food","date":"2026-08-01"}`,
			wantCode: http.StatusUnprocessableEntity,
			wantErr:  "insufficient_funds",
		},
		{
			name:     "malformed body",
			body:     `{`,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/api/expenses", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d (body=%s)", rr.Code, tt.wantCode, rr.Body.String())
			}
			var errResp errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if errResp.Error != tt.wantErr {
				t.Fatalf("error code = %q, want %q", errResp.Error, tt.wantErr)
			}
		})
	}

	// Editing an unknown expense yields 404
	rr := doJSON(t, srv, http.MethodPut, "/api/expenses/nope",
		`{"title":"x","amount":"1.00","category":"Food","date":"2026-08-01"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("edit unknown status=%d", rr.Code)
	}
}

func TestCategorySummaries(t *testing.T) {
	srv := newTestServer(t, 100000)
	defer srv.rateLimiter.stop()

	for _, body := range []string{
		`{"title":"Groceries","amount":"20.00","category":"Food","date":"2026-08-01"}`,
		`{"title":"Dinner","amount":"15.50","category":"Food","date":"2026-08-02"}`,
		`{"title":"Train","amount":"9.90","category":"Travel","date":"2026-08-03"}`,
	} {
		if rr := doJSON(t, srv, http.MethodPost, "/api/expenses", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed expense status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/summary/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("categories status=%d", rr.Code)
	}
	var totals map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode totals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("totals has %d categories, want 2 (zero categories omitted): %v", len(totals), totals)
	}
	if totals["Food"] != "35.50" || totals["Travel"] != "9.90" {
		t.Fatalf("totals = %v", totals)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/summary/trend", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("trend status=%d", rr.Code)
	}
	var trend []categoryAmountResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &trend); err != nil {
		t.Fatalf("decode trend: %v", err)
	}
	if len(trend) != 2 {
		t.Fatalf("trend has %d entries, want 2: %v", len(trend), trend)
	}
	// Enumeration order puts Food before Travel
	if trend[0].Category != "Food" || trend[0].AmountCents != 3550 {
		t.Fatalf("trend[0] = %+v", trend[0])
	}
	if trend[1].Category != "Travel" || trend[1].AmountCents != 990 {
		t.Fatalf("trend[1] = %+v", trend[1])
	}
}
