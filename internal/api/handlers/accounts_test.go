package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/testutil"
)

// emptyProvider is a feed stub for handler tests that never reach processing.
type emptyProvider struct{}

func (emptyProvider) GetMovements(context.Context, string, time.Time, time.Time) ([]model.Movement, error) {
	return nil, nil
}

func newAccountHandler(t *testing.T, db *sql.DB) *AccountHandler {
	t.Helper()
	return NewAccountHandler(
		testutil.NewTestAccountService(t, db),
		testutil.NewTestSyncService(t, db, emptyProvider{}),
	)
}

func TestAccountHandler_Create(t *testing.T) {
	t.Run("registers an investor from a formatted CPF", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)

		body := bytes.NewBufferString(`{"documentId": "123.456.789-01"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/account", body)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var account model.Account
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&account)

		if account.ID == "" {
			t.Error("Expected a generated account ID")
		}
		if account.SyncStatus != model.SyncNotSynced {
			t.Errorf("Expected new account not_synced, got %s", account.SyncStatus)
		}
	})

	t.Run("rejects a CPF without 11 digits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)

		body := bytes.NewBufferString(`{"documentId": "12345"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/account", body)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)

		body := bytes.NewBufferString(`{"documentId":`)
		req := httptest.NewRequest(http.MethodPost, "/api/account", body)
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestAccountHandler_Get(t *testing.T) {
	t.Run("returns the account with a masked document", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)
		account := testutil.NewAccount().WithDocumentID("12345678901").Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/account/"+account.ID,
			map[string]string{"accountId": account.ID})
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var got model.Account
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&got)

		if got.DocumentID != "***.456.789-**" {
			t.Errorf("Expected masked document, got %q", got.DocumentID)
		}
	})

	t.Run("returns 404 for an unknown account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/account/"+id,
			map[string]string{"accountId": id})
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestAccountHandler_Movements(t *testing.T) {
	t.Run("requires a valid date range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)
		account := testutil.NewAccount().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/account/"+account.ID+"/movements",
			map[string]string{"accountId": account.ID})
		w := httptest.NewRecorder()

		handler.Movements(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without dates, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestAccountHandler_BigBang(t *testing.T) {
	t.Run("rejects unparseable backfill lots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)
		account := testutil.NewAccount().Build(t, db)

		body := bytes.NewBufferString(`{"backfillLots": [{"ticker": "PETR4", "quantity": "abc", "averagePrice": "10"}]}`)
		req := httptest.NewRequest(http.MethodPost, "/api/account/"+account.ID+"/sync", body)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("accountId", account.ID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		w := httptest.NewRecorder()
		handler.BigBang(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for an unknown account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := newAccountHandler(t, db)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodPost, "/api/account/"+id+"/sync",
			map[string]string{"accountId": id})
		w := httptest.NewRecorder()

		handler.BigBang(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
