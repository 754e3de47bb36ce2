package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxStatus is the payment state of one month's owed tax.
type TaxStatus string

const (
	// TaxStatusPending marks the current, still-accruing month. Tax on the
	// current month's sales can only be paid from the following month on.
	TaxStatusPending TaxStatus = "pending"

	// TaxStatusUnpaid marks a closed month whose DARF has not been settled.
	TaxStatusUnpaid TaxStatus = "unpaid"

	// TaxStatusPaid marks a closed month settled by the user.
	TaxStatusPaid TaxStatus = "paid"
)

// AssetMonthTax is the per-asset-category breakdown inside a month record.
type AssetMonthTax struct {
	AssetCategory       AssetCategory   `json:"assetCategory"`
	TotalSold           decimal.Decimal `json:"totalSold"`
	SwingProfit         decimal.Decimal `json:"swingProfit"`
	DayTradeProfit      decimal.Decimal `json:"dayTradeProfit"`
	SwingTax            decimal.Decimal `json:"swingTax"`
	DayTradeTax         decimal.Decimal `json:"dayTradeTax"`
	WithholdingSwing    decimal.Decimal `json:"withholdingSwing"`
	WithholdingDayTrade decimal.Decimal `json:"withholdingDayTrade"`
}

// TotalTax returns the owed tax for this asset line. Withholding is tracked
// but never netted against the owed total.
func (a AssetMonthTax) TotalTax() decimal.Decimal {
	return a.SwingTax.Add(a.DayTradeTax)
}

// MonthTaxRecord rolls one account's sale results for one calendar month
// ("YYYY-MM") into owed tax, with the per-asset breakdown and the serialized
// per-trade details kept for audit display.
type MonthTaxRecord struct {
	ID                  string          `json:"id"`
	AccountID           string          `json:"accountId"`
	Month               string          `json:"month"`
	TotalTax            decimal.Decimal `json:"totalTax"`
	TotalSold           decimal.Decimal `json:"totalSold"`
	SwingProfit         decimal.Decimal `json:"swingProfit"`
	DayTradeProfit      decimal.Decimal `json:"dayTradeProfit"`
	WithholdingSwing    decimal.Decimal `json:"withholdingSwing"`
	WithholdingDayTrade decimal.Decimal `json:"withholdingDayTrade"`
	Status              TaxStatus       `json:"status"`
	Assets              []AssetMonthTax `json:"assets"`
	Trades              []SaleResult    `json:"trades,omitempty"`
	UpdatedAt           time.Time       `json:"updatedAt,omitempty"`
}

// MonthSummary is the compact per-month view used by the yearly rollup.
type MonthSummary struct {
	Month          string          `json:"month"`
	TotalTax       decimal.Decimal `json:"totalTax"`
	TotalSold      decimal.Decimal `json:"totalSold"`
	SwingProfit    decimal.Decimal `json:"swingProfit"`
	DayTradeProfit decimal.Decimal `json:"dayTradeProfit"`
	Status         TaxStatus       `json:"status"`
	BelowMinimum   bool            `json:"belowMinimum"`
}
