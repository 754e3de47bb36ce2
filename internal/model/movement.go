package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind classifies one reported transaction from the clearinghouse feed.
type MovementKind string

const (
	MovementBuy          MovementKind = "buy"
	MovementSell         MovementKind = "sell"
	MovementSplit        MovementKind = "split"
	MovementReverseSplit MovementKind = "reverse_split"
	MovementBonusShare   MovementKind = "bonus_share"
)

// ValidMovementKinds contains the allowed movement kind values.
var ValidMovementKinds = map[MovementKind]bool{
	MovementBuy:          true,
	MovementSell:         true,
	MovementSplit:        true,
	MovementReverseSplit: true,
	MovementBonusShare:   true,
}

// Movement is one transaction reported by the clearinghouse feed, immutable
// once ingested. OperationValue is the total traded value of the movement;
// UnitPrice is OperationValue divided by Quantity for trade kinds, or the
// issuer-declared fair value for bonus shares.
//
// For split and reverse-split movements Quantity carries the ratio
// (2 for a 2-for-1 split) and OperationValue is zero.
type Movement struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"accountId"`
	Ticker         string          `json:"ticker"`
	AssetLabel     string          `json:"assetLabel"`
	AssetCategory  AssetCategory   `json:"assetCategory"`
	Kind           MovementKind    `json:"kind"`
	OperationValue decimal.Decimal `json:"operationValue"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	ReferenceDate  time.Time       `json:"referenceDate"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
}

// IsTrade reports whether the movement moves money (a buy or a sell), as
// opposed to a corporate action that only rearranges the position.
func (m Movement) IsTrade() bool {
	return m.Kind == MovementBuy || m.Kind == MovementSell
}

// BackfillLot is a user-declared holding acquired before the feed's earliest
// queryable date, used to seed the cost-basis ledger ahead of a full replay.
type BackfillLot struct {
	Ticker       string          `json:"ticker"`
	AssetLabel   string          `json:"assetLabel"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
}
