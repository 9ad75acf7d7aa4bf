package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fincas/internal/core"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(ts.URL, nil, nil, time.Minute)
}

func authedClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	c := newTestClient(t, handler)
	c.session.SetAuth("token-123", User{ID: "u1", Email: "ana@example.com"})
	return c
}

func TestListTransactionsSentinelAxesOmitted(t *testing.T) {
	var gotQuery string
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.Header.Get("Authorization") != "Bearer token-123" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte("[]"))
	}))

	txs, err := c.ListTransactions(context.Background(), core.NewFilterCriteria())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if txs == nil {
		t.Fatal("expected non-nil slice for empty result")
	}
	if gotQuery != "" {
		t.Fatalf("sentinel criteria must produce no query, got %q", gotQuery)
	}

	start, _ := core.ParseDate("2025-01-01")
	criteria := core.FilterCriteria{Type: "expense", CategoryID: "cat-food", StartDate: start}
	if _, err := c.ListTransactions(context.Background(), criteria); err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	want := "category_id=cat-food&start_date=2025-01-01&type=expense"
	if gotQuery != want {
		t.Fatalf("query = %q, want %q", gotQuery, want)
	}
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"validation", http.StatusUnprocessableEntity, `{"message":"amount must be positive"}`, KindValidation, "amount must be positive"},
		{"conflict", http.StatusConflict, `{"message":"email already registered"}`, KindValidation, "email already registered"},
		{"not found", http.StatusNotFound, `{"message":"not found"}`, KindNotFound, "not found"},
		{"internal", http.StatusInternalServerError, ``, KindInternal, FallbackMessage},
		{"internal no message", http.StatusBadGateway, `<html>`, KindInternal, FallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))

			_, err := c.ListTransactions(context.Background(), core.NewFilterCriteria())
			if !IsKind(err, tc.kind) {
				t.Fatalf("expected kind %s, got %v", tc.kind, err)
			}
			se, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if se.UserMessage() != tc.message {
				t.Fatalf("message = %q, want %q", se.UserMessage(), tc.message)
			}
		})
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))

	_, err := c.ListTransactions(context.Background(), core.NewFilterCriteria())
	if !IsKind(err, KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if c.Session().Authenticated() {
		t.Fatal("session must be cleared after a 401")
	}
}

func TestNetworkFailure(t *testing.T) {
	c := New("http://127.0.0.1:1", nil, nil, time.Minute)
	_, err := c.ListTransactions(context.Background(), core.NewFilterCriteria())
	if !IsKind(err, KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestLoginInstallsSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "fresh-token",
			"user":  map[string]string{"id": "u1", "name": "Ana", "email": "ana@example.com"},
		})
	}))

	user, err := c.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Name != "Ana" {
		t.Fatalf("user: %+v", user)
	}
	if c.Session().Token() != "fresh-token" {
		t.Fatalf("token = %q", c.Session().Token())
	}
}

func TestCreateTransactionEncodesAmountAsDecimal(t *testing.T) {
	var gotBody map[string]json.RawMessage
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"t1","type":"expense","amount":40.50,"transaction_date":"2025-05-10"}`))
	}))

	date, _ := core.ParseDate("2025-05-10")
	tx, err := c.CreateTransaction(context.Background(), TransactionDraft{
		Type:   core.Expense,
		Amount: core.Money{Cents: 4050},
		Date:   date,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if string(gotBody["amount"]) != "40.50" {
		t.Fatalf("amount on the wire = %s", gotBody["amount"])
	}
	if tx.Amount.Cents != 4050 {
		t.Fatalf("decoded amount = %d cents", tx.Amount.Cents)
	}
}

func TestListCategoriesCached(t *testing.T) {
	var calls atomic.Int32
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[{"id":"cat-food","name":"Food","color":"#f97316","icon":"🍕","type":"expense"}]`))
	}))

	for range 3 {
		cats, err := c.ListCategories(context.Background())
		if err != nil {
			t.Fatalf("list categories: %v", err)
		}
		if len(cats) != 1 || cats[0].Name != "Food" {
			t.Fatalf("categories: %+v", cats)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("store hit %d times, want 1", got)
	}

	c.Logout()
	if _, err := c.ListCategories(context.Background()); err != nil {
		t.Fatalf("list after logout: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("logout must drop the cache, got %d calls", got)
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	c := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"transaction not found"}`))
	}))

	err := c.DeleteTransaction(context.Background(), "gone")
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
