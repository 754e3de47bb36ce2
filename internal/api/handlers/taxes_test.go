package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/testutil"
)

func TestTaxHandler_Month(t *testing.T) {
	t.Run("returns the aggregated month record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTaxHandler(testutil.NewTestAggregationService(t, db))
		account := testutil.NewAccount().Build(t, db)

		testutil.NewSale(account.ID).
			WithGross(decimal.NewFromInt(25000)).
			WithProfit(decimal.NewFromInt(5000)).
			Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/tax/"+account.ID+"/month/2024-03",
			map[string]string{"accountId": account.ID, "month": "2024-03"})
		w := httptest.NewRecorder()

		handler.Month(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var record model.MonthTaxRecord
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&record)

		if !record.TotalTax.Equal(decimal.NewFromInt(750)) {
			t.Errorf("Expected tax 750, got %s", record.TotalTax)
		}
	})

	t.Run("rejects malformed month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTaxHandler(testutil.NewTestAggregationService(t, db))
		account := testutil.NewAccount().Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/tax/"+account.ID+"/month/march",
			map[string]string{"accountId": account.ID, "month": "march"})
		w := httptest.NewRecorder()

		handler.Month(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTaxHandler_MarkPaid(t *testing.T) {
	markPaid := func(t *testing.T, handler *TaxHandler, accountID, month string) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.NewRequestWithURLParams(http.MethodPut, "/api/tax/"+accountID+"/month/"+month+"/paid",
			map[string]string{"accountId": accountID, "month": month})
		w := httptest.NewRecorder()
		handler.MarkPaid(w, req)
		return w
	}

	t.Run("marks an aggregated past month as paid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAggregationService(t, db)
		handler := NewTaxHandler(svc)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewSale(account.ID).Build(t, db)
		if _, err := svc.AggregateMonth(context.Background(), account.ID, "2024-03"); err != nil {
			t.Fatalf("AggregateMonth() failed: %v", err)
		}

		w := markPaid(t, handler, account.ID, "2024-03")
		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("refuses the still-open current month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTaxHandler(testutil.NewTestAggregationService(t, db))
		account := testutil.NewAccount().Build(t, db)

		current := time.Now().UTC().Format("2006-01")
		w := markPaid(t, handler, account.ID, current)
		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for a month with no record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewTaxHandler(testutil.NewTestAggregationService(t, db))
		account := testutil.NewAccount().Build(t, db)

		w := markPaid(t, handler, account.ID, "2024-03")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTaxHandler_BelowMinimum(t *testing.T) {
	t.Run("lists unpaid months under the DARF minimum", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAggregationService(t, db)
		handler := NewTaxHandler(svc)
		account := testutil.NewAccount().Build(t, db)

		testutil.NewSale(account.ID).
			WithTicker("HGLG11").
			WithCategory(model.CategoryFII).
			WithGross(decimal.NewFromInt(200)).
			WithProfit(decimal.NewFromInt(20)).
			Build(t, db)

		if _, err := svc.AggregateMonth(context.Background(), account.ID, "2024-03"); err != nil {
			t.Fatalf("AggregateMonth() failed: %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/tax/"+account.ID+"/darf/carry",
			map[string]string{"accountId": account.ID})
		w := httptest.NewRecorder()
		handler.BelowMinimum(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var months []model.MonthSummary
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&months)

		if len(months) != 1 || months[0].Month != "2024-03" {
			t.Errorf("Expected carry list [2024-03], got %+v", months)
		}
	})
}
