package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the per-ticker cost-basis state of an account: quantity held and
// the running weighted-average acquisition price. TotalInvested is kept equal
// to Quantity × AveragePrice after every mutation.
//
// Rows with Quantity zero are retained for audit history rather than deleted.
type Position struct {
	ID                    string          `json:"id"`
	AccountID             string          `json:"accountId"`
	Ticker                string          `json:"ticker"`
	AssetCategory         AssetCategory   `json:"assetCategory"`
	Quantity              decimal.Decimal `json:"quantity"`
	AveragePrice          decimal.Decimal `json:"averagePrice"`
	TotalInvested         decimal.Decimal `json:"totalInvested"`
	AcquiredBeforeWindow  bool            `json:"acquiredBeforeWindow"`
	UpdatedAt             time.Time       `json:"updatedAt,omitempty"`
}
