// Package asset maps feed asset labels and B3 ticker symbols to the tax
// category that decides their capital-gains treatment.
package asset

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// Classifier resolves (ticker, declared label) pairs into an AssetCategory.
// The lookup tables are immutable after construction; build one at startup
// and share it freely.
type Classifier struct {
	labels      map[string]model.AssetCategory
	etfTickers  map[string]bool
	unitTickers map[string]bool
}

// NewClassifier creates a Classifier with the built-in B3 lookup tables.
func NewClassifier() *Classifier {
	return &Classifier{
		labels:      feedLabels,
		etfTickers:  etfTickers,
		unitTickers: unitTickers,
	}
}

// Classify determines the tax category for a movement. The declared label is
// matched exactly against the feed's known asset descriptions; an unknown
// label is a hard failure because the tax rate cannot be determined.
//
// Tickers ending in "11" are shared by ETFs, Units and FIIs, which carry
// different tax rates, and the feed labels them inconsistently; for those the
// ticker itself is the authority (see classifyEleven).
func (c *Classifier) Classify(ticker, declaredLabel string) (model.AssetCategory, error) {
	if strings.TrimSpace(declaredLabel) == "" {
		return c.ClassifyTicker(ticker), nil
	}

	category, ok := c.labels[normalizeLabel(declaredLabel)]
	if !ok {
		return "", fmt.Errorf("%w: label %q (ticker %s)", apperrors.ErrUnknownAssetType, declaredLabel, ticker)
	}

	if tickerSuffix(ticker) == 11 && category != model.CategoryBDR && category != model.CategoryGold {
		return c.classifyEleven(ticker), nil
	}

	return category, nil
}

// ClassifyTicker determines the category from the ticker's numeric suffix
// alone, used when the feed supplies no asset description:
// 12–15 → FII, 31–35 and 39 → BDR, 11 → the disambiguation heuristic,
// anything else → common stock.
func (c *Classifier) ClassifyTicker(ticker string) model.AssetCategory {
	switch suffix := tickerSuffix(ticker); {
	case suffix >= 12 && suffix <= 15:
		return model.CategoryFII
	case (suffix >= 31 && suffix <= 35) || suffix == 39:
		return model.CategoryBDR
	case suffix == 11:
		return c.classifyEleven(ticker)
	default:
		return model.CategoryStock
	}
}

// classifyEleven disambiguates the "11" suffix: known ETF tickers, then known
// Unit tickers, defaulting to FII, which is by far the most common holder of
// the suffix.
func (c *Classifier) classifyEleven(ticker string) model.AssetCategory {
	root := tickerRoot(ticker)
	if c.etfTickers[root] {
		return model.CategoryETF
	}
	if c.unitTickers[root] {
		return model.CategoryUnit
	}
	return model.CategoryFII
}

// tickerSuffix extracts the trailing market-type number of a B3 ticker
// (PETR4 → 4, SANB11 → 11, ITUB3F → 3). A single trailing letter marks the
// fractional market and is ignored. Returns -1 when no numeric suffix exists.
func tickerSuffix(ticker string) int {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return -1
	}
	if unicode.IsLetter(rune(t[len(t)-1])) {
		t = t[:len(t)-1]
	}

	start := len(t)
	for start > 0 && t[start-1] >= '0' && t[start-1] <= '9' {
		start--
	}
	if start == len(t) {
		return -1
	}

	digits := t[start:]
	if len(digits) > 2 {
		digits = digits[len(digits)-2:]
	}
	suffix, err := strconv.Atoi(digits)
	if err != nil {
		return -1
	}
	return suffix
}

// tickerRoot returns the ticker without a fractional-market letter, uppercased.
func tickerRoot(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t != "" && unicode.IsLetter(rune(t[len(t)-1])) && len(t) > 1 && t[len(t)-2] >= '0' && t[len(t)-2] <= '9' {
		t = t[:len(t)-1]
	}
	return t
}

// normalizeLabel collapses whitespace and case so that cosmetic differences in
// the feed's free-text descriptions do not break the exact match.
func normalizeLabel(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}
