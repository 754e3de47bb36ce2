package service

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/calculadora-ir-stocks/server-sub001/internal/ledger"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/trade"
)

// runPipeline feeds classified, date-sorted movements through the cost-basis
// ledger and the day-trade matcher, emitting one SaleResult per sell portion.
// The ledger is mutated in place; on error it must be discarded, not saved.
//
// Within one (ticker, day) group the order is fixed: corporate actions first
// (they are effective at the open), then the day's unmatched buys, then the
// swing portion of the day's sells. The day-trade-matched portion never
// touches the ledger at all: it is priced purely at same-day prices.
func runPipeline(led *ledger.Ledger, movements []model.Movement) ([]model.SaleResult, error) {
	days, byDay := groupByDay(movements)

	var sales []model.SaleResult
	for _, day := range days {
		tickers, byTicker := groupByTicker(byDay[day])
		for _, ticker := range tickers {
			tickerSales, err := processTickerDay(led, byTicker[ticker])
			if err != nil {
				return nil, err
			}
			sales = append(sales, tickerSales...)
		}
	}

	return sales, nil
}

func processTickerDay(led *ledger.Ledger, movements []model.Movement) ([]model.SaleResult, error) {
	ticker := movements[0].Ticker
	category := movements[0].AssetCategory
	date := movements[0].ReferenceDate
	accountID := movements[0].AccountID

	for _, m := range movements {
		switch m.Kind {
		case model.MovementSplit:
			led.ApplySplit(ticker, m.Quantity)
		case model.MovementReverseSplit:
			led.ApplyReverseSplit(ticker, m.Quantity)
		case model.MovementBonusShare:
			led.ApplyBonusShare(ticker, category, m.Quantity, m.UnitPrice)
		}
	}

	p := trade.Partition(movements)

	if p.RemainingBuyQty.IsPositive() {
		led.ApplyBuy(ticker, category, p.RemainingBuyQty, p.AvgBuyPrice)
	}

	var sales []model.SaleResult

	if p.SwingSellQty.IsPositive() {
		avgBefore, err := led.ApplySell(ticker, p.SwingSellQty)
		if err != nil {
			return nil, err
		}
		sales = append(sales, model.SaleResult{
			ID:                uuid.New().String(),
			AccountID:         accountID,
			Ticker:            ticker,
			AssetCategory:     category,
			DayTrade:          false,
			Quantity:          p.SwingSellQty,
			GrossValue:        p.SwingSellGross,
			AverageCostAtSale: avgBefore,
			ProfitLoss:        p.SwingSellGross.Sub(p.SwingSellQty.Mul(avgBefore)),
			ReferenceDate:     date,
		})
	}

	if p.DayTradeQty.IsPositive() {
		sales = append(sales, model.SaleResult{
			ID:                uuid.New().String(),
			AccountID:         accountID,
			Ticker:            ticker,
			AssetCategory:     category,
			DayTrade:          true,
			Quantity:          p.DayTradeQty,
			GrossValue:        p.DayTradeGross,
			AverageCostAtSale: p.AvgBuyPrice,
			ProfitLoss:        p.DayTradeProfit,
			ReferenceDate:     date,
		})
	}

	return sales, nil
}

func groupByDay(movements []model.Movement) ([]time.Time, map[time.Time][]model.Movement) {
	byDay := make(map[time.Time][]model.Movement)
	var days []time.Time
	for _, m := range movements {
		day := m.ReferenceDate.Truncate(24 * time.Hour)
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], m)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, byDay
}

func groupByTicker(movements []model.Movement) ([]string, map[string][]model.Movement) {
	byTicker := make(map[string][]model.Movement)
	var tickers []string
	for _, m := range movements {
		if _, ok := byTicker[m.Ticker]; !ok {
			tickers = append(tickers, m.Ticker)
		}
		byTicker[m.Ticker] = append(byTicker[m.Ticker], m)
	}
	sort.Strings(tickers)
	return tickers, byTicker
}
