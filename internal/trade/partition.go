// Package trade separates one day's movements for a ticker into the day-trade
// matched portion and the swing-trade remainder.
package trade

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// DayPartition is the outcome of matching one (ticker, calendar day) group.
//
// DayTradeQty = min(bought, sold). The matched portion is priced at the
// day's own volume-weighted buy and sell prices; the ledger's historical
// average cost plays no part in it. Whatever was sold beyond the match is
// swing-trade and must be priced against the ledger, and whatever was bought
// beyond the match stays in the position.
type DayPartition struct {
	Ticker string
	Date   time.Time

	BoughtQty    decimal.Decimal
	SoldQty      decimal.Decimal
	AvgBuyPrice  decimal.Decimal
	AvgSellPrice decimal.Decimal

	DayTradeQty    decimal.Decimal
	DayTradeGross  decimal.Decimal
	DayTradeProfit decimal.Decimal

	SwingSellQty    decimal.Decimal
	SwingSellGross  decimal.Decimal
	RemainingBuyQty decimal.Decimal
}

// Partition matches same-day buys against same-day sells for one ticker.
// All movements must share the same ticker and reference date; kinds other
// than buy and sell are ignored.
func Partition(movements []model.Movement) DayPartition {
	var p DayPartition
	var buyValue, sellValue decimal.Decimal

	for _, m := range movements {
		switch m.Kind {
		case model.MovementBuy:
			p.BoughtQty = p.BoughtQty.Add(m.Quantity)
			buyValue = buyValue.Add(m.OperationValue)
		case model.MovementSell:
			p.SoldQty = p.SoldQty.Add(m.Quantity)
			sellValue = sellValue.Add(m.OperationValue)
		default:
			continue
		}
		if p.Ticker == "" {
			p.Ticker = m.Ticker
			p.Date = m.ReferenceDate
		}
	}

	if p.BoughtQty.IsPositive() {
		p.AvgBuyPrice = buyValue.Div(p.BoughtQty)
	}
	if p.SoldQty.IsPositive() {
		p.AvgSellPrice = sellValue.Div(p.SoldQty)
	}

	p.DayTradeQty = decimal.Min(p.BoughtQty, p.SoldQty)
	p.SwingSellQty = p.SoldQty.Sub(p.DayTradeQty)
	p.RemainingBuyQty = p.BoughtQty.Sub(p.DayTradeQty)

	if p.DayTradeQty.IsPositive() {
		p.DayTradeGross = p.DayTradeQty.Mul(p.AvgSellPrice)
		p.DayTradeProfit = p.AvgSellPrice.Sub(p.AvgBuyPrice).Mul(p.DayTradeQty)
	}
	if p.SwingSellQty.IsPositive() {
		p.SwingSellGross = p.SwingSellQty.Mul(p.AvgSellPrice)
	}

	return p
}

// GroupByTickerDay buckets movements by (ticker, calendar day), preserving
// nothing about order inside a bucket: matching is quantity-based, not
// sequence-based. Keys can be iterated deterministically by the caller.
func GroupByTickerDay(movements []model.Movement) map[Key][]model.Movement {
	grouped := make(map[Key][]model.Movement)
	for _, m := range movements {
		k := Key{Ticker: m.Ticker, Day: m.ReferenceDate.Format("2006-01-02")}
		grouped[k] = append(grouped[k], m)
	}
	return grouped
}

// Key identifies one (ticker, calendar day) bucket.
type Key struct {
	Ticker string
	Day    string
}
