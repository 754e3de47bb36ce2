package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
)

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().
//	    WithDocumentID("98765432100").
//	    Synced().
//	    Build(t, db)
type AccountBuilder struct {
	ID         string
	DocumentID string
	SyncStatus model.SyncStatus
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:         MakeID(),
		DocumentID: "12345678901",
		SyncStatus: model.SyncNotSynced,
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithDocumentID sets a custom CPF.
func (b *AccountBuilder) WithDocumentID(document string) *AccountBuilder {
	b.DocumentID = document
	return b
}

// Synced marks the account's historical backfill as completed.
func (b *AccountBuilder) Synced() *AccountBuilder {
	b.SyncStatus = model.SyncSynced
	return b
}

// Build inserts the account and returns it. The document is stored encrypted
// through the same repository path production uses.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	account := model.Account{
		ID:         b.ID,
		DocumentID: b.DocumentID,
		SyncStatus: b.SyncStatus,
		CreatedAt:  time.Now().UTC(),
	}

	repo := repository.NewAccountRepository(db, NewTestCipher(t))
	if err := repo.Insert(context.Background(), &account); err != nil {
		t.Fatalf("Failed to insert test account: %v", err)
	}

	return account
}

// SaleBuilder provides a fluent interface for inserting persisted sale
// results, the raw material of month aggregation.
type SaleBuilder struct {
	sale model.SaleResult
}

// NewSale creates a SaleBuilder with sensible defaults: a swing-trade stock
// sale of 100 shares at R$10.00 against a R$8.00 average cost.
func NewSale(accountID string) *SaleBuilder {
	return &SaleBuilder{
		sale: model.SaleResult{
			ID:                MakeID(),
			AccountID:         accountID,
			Ticker:            "PETR4",
			AssetCategory:     model.CategoryStock,
			Quantity:          decimal.NewFromInt(100),
			GrossValue:        decimal.NewFromInt(1000),
			AverageCostAtSale: decimal.NewFromInt(8),
			ProfitLoss:        decimal.NewFromInt(200),
			ReferenceDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}
}

// WithTicker sets the traded ticker.
func (b *SaleBuilder) WithTicker(ticker string) *SaleBuilder {
	b.sale.Ticker = ticker
	return b
}

// WithCategory sets the asset category.
func (b *SaleBuilder) WithCategory(category model.AssetCategory) *SaleBuilder {
	b.sale.AssetCategory = category
	return b
}

// DayTrade marks the sale as the matched leg of a day trade.
func (b *SaleBuilder) DayTrade() *SaleBuilder {
	b.sale.DayTrade = true
	return b
}

// WithGross sets the gross sale value.
func (b *SaleBuilder) WithGross(gross decimal.Decimal) *SaleBuilder {
	b.sale.GrossValue = gross
	return b
}

// WithProfit sets the realized profit or loss.
func (b *SaleBuilder) WithProfit(profit decimal.Decimal) *SaleBuilder {
	b.sale.ProfitLoss = profit
	return b
}

// OnDate sets the sale's reference date.
func (b *SaleBuilder) OnDate(date time.Time) *SaleBuilder {
	b.sale.ReferenceDate = date
	return b
}

// Build inserts the sale result and returns it.
func (b *SaleBuilder) Build(t *testing.T, db *sql.DB) model.SaleResult {
	t.Helper()

	repo := repository.NewSaleRepository(db)
	if err := repo.InsertBatch(context.Background(), []model.SaleResult{b.sale}); err != nil {
		t.Fatalf("Failed to insert test sale result: %v", err)
	}

	return b.sale
}

// NewMovement returns a buy movement with sensible defaults for pipeline
// tests. Callers adjust fields directly.
func NewMovement(accountID, ticker string, kind model.MovementKind, quantity, unitPrice int64, date time.Time) model.Movement {
	qty := decimal.NewFromInt(quantity)
	price := decimal.NewFromInt(unitPrice)
	return model.Movement{
		ID:             MakeID(),
		AccountID:      accountID,
		Ticker:         ticker,
		AssetCategory:  model.CategoryStock,
		Kind:           kind,
		Quantity:       qty,
		UnitPrice:      price,
		OperationValue: qty.Mul(price),
		ReferenceDate:  date,
	}
}
