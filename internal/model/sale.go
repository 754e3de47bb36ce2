package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleResult is the write-once outcome of one sell event after day-trade
// matching. Swing sales carry the ledger average cost in effect before the
// sale; day-trade sales carry the same-day average buy price instead.
//
// ProfitLoss = GrossValue − Quantity × AverageCostAtSale.
type SaleResult struct {
	ID                string          `json:"id"`
	AccountID         string          `json:"accountId"`
	Ticker            string          `json:"ticker"`
	AssetCategory     AssetCategory   `json:"assetCategory"`
	DayTrade          bool            `json:"dayTrade"`
	Quantity          decimal.Decimal `json:"quantity"`
	GrossValue        decimal.Decimal `json:"grossValue"`
	AverageCostAtSale decimal.Decimal `json:"averageCostAtSale"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	ReferenceDate     time.Time       `json:"referenceDate"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}

// Month returns the "YYYY-MM" bucket the sale's tax falls in.
func (s SaleResult) Month() string {
	return s.ReferenceDate.Format("2006-01")
}
