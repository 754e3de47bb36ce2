// Package tax applies Brazilian capital-gains rules to a month of sale
// results: per-category rates, the stock sales-exemption threshold, the
// dedo-duro withholding and the DARF minimum.
package tax

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

var (
	// StockExemptionThreshold is the monthly gross stock-sales volume at or
	// below which swing-trade profit on stocks is exempt. The boundary is
	// inclusive: exactly R$20,000.00 sold is still exempt.
	StockExemptionThreshold = decimal.RequireFromString("20000")

	// DarfMinimum is the smallest payable DARF. Months owing less are carried
	// forward by the filing layer rather than paid.
	DarfMinimum = decimal.RequireFromString("10")

	// DayTradeRate applies to day-trade profit on every asset class, with no
	// exemption.
	DayTradeRate = decimal.RequireFromString("0.20")

	// WithholdingSwingRate is the 0.005% dedo-duro withheld on swing gross.
	WithholdingSwingRate = decimal.RequireFromString("0.00005")

	// WithholdingDayTradeRate is the 1% dedo-duro withheld on day-trade gross.
	WithholdingDayTradeRate = decimal.RequireFromString("0.01")
)

// swingRates holds the swing-trade rate per asset category.
var swingRates = map[model.AssetCategory]decimal.Decimal{
	model.CategoryStock:       decimal.RequireFromString("0.15"),
	model.CategoryUnit:        decimal.RequireFromString("0.15"),
	model.CategoryETF:         decimal.RequireFromString("0.15"),
	model.CategoryGold:        decimal.RequireFromString("0.15"),
	model.CategoryBDR:         decimal.RequireFromString("0.15"),
	model.CategoryFII:         decimal.RequireFromString("0.20"),
	model.CategoryFundOfFunds: decimal.RequireFromString("0.20"),
}

// Calculator computes owed tax for one account-month. It is stateless and
// safe to share.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// ComputeMonth rolls a full month of sale results into per-category tax lines.
//
// Stock taxes cannot be computed per sale in isolation: whether the month's
// stock swing profit is taxable at all depends on the month's total stock
// sales volume, so this is a whole-month pass, not a streaming one. Sales of
// every category must belong to the same account and calendar month.
//
// Losses produce zero tax for their line and are not carried forward.
func (c *Calculator) ComputeMonth(sales []model.SaleResult) []model.AssetMonthTax {
	type bucket struct {
		totalSold   decimal.Decimal
		swingProfit decimal.Decimal
		swingGross  decimal.Decimal
		dayProfit   decimal.Decimal
		dayGross    decimal.Decimal
	}

	buckets := make(map[model.AssetCategory]*bucket)
	stockPoolGross := decimal.Zero

	for _, s := range sales {
		b, ok := buckets[s.AssetCategory]
		if !ok {
			b = &bucket{}
			buckets[s.AssetCategory] = b
		}

		b.totalSold = b.totalSold.Add(s.GrossValue)
		if s.DayTrade {
			b.dayProfit = b.dayProfit.Add(s.ProfitLoss)
			b.dayGross = b.dayGross.Add(s.GrossValue)
		} else {
			b.swingProfit = b.swingProfit.Add(s.ProfitLoss)
			b.swingGross = b.swingGross.Add(s.GrossValue)
		}

		if s.AssetCategory.SharesExemptionPool() {
			stockPoolGross = stockPoolGross.Add(s.GrossValue)
		}
	}

	lines := make([]model.AssetMonthTax, 0, len(buckets))
	for category, b := range buckets {
		line := model.AssetMonthTax{
			AssetCategory:       category,
			TotalSold:           b.totalSold,
			SwingProfit:         b.swingProfit,
			DayTradeProfit:      b.dayProfit,
			SwingTax:            c.swingTax(category, b.swingProfit, stockPoolGross),
			DayTradeTax:         positiveTax(b.dayProfit, DayTradeRate),
			WithholdingSwing:    b.swingGross.Mul(WithholdingSwingRate).Round(2),
			WithholdingDayTrade: b.dayGross.Mul(WithholdingDayTradeRate).Round(2),
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].AssetCategory < lines[j].AssetCategory
	})
	return lines
}

// swingTax applies the category's swing rate, honoring the stock exemption:
// categories in the shares pool owe nothing when the month's pool volume is
// at or below the threshold.
func (c *Calculator) swingTax(category model.AssetCategory, profit, stockPoolGross decimal.Decimal) decimal.Decimal {
	if category.SharesExemptionPool() && stockPoolGross.LessThanOrEqual(StockExemptionThreshold) {
		return decimal.Zero
	}
	return positiveTax(profit, swingRates[category])
}

// BelowMinimum reports whether a month's owed total falls under the smallest
// payable DARF. Zero-tax months are not "below minimum": there is nothing to
// carry.
func BelowMinimum(totalTax decimal.Decimal) bool {
	return totalTax.IsPositive() && totalTax.LessThan(DarfMinimum)
}

// positiveTax taxes a profit at the given rate, contributing zero for losses.
// Rounding to cents happens here, at the reporting boundary, never earlier.
func positiveTax(profit, rate decimal.Decimal) decimal.Decimal {
	if !profit.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(rate).Round(2)
}
