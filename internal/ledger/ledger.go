// Package ledger maintains the per-account running cost basis: quantity held
// and weighted-average acquisition price per ticker.
//
// All arithmetic is decimal. Average prices are kept unrounded between
// mutations; compounding a binary-float rounding error over years of trades
// would drift the cost basis and with it every downstream tax figure.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// Ledger is the in-memory cost-basis state of one account. It is not safe for
// concurrent use; the processing pipeline serializes all access per account.
type Ledger struct {
	accountID string
	positions map[string]*model.Position
}

// New creates an empty ledger for the given account.
func New(accountID string) *Ledger {
	return &Ledger{
		accountID: accountID,
		positions: make(map[string]*model.Position),
	}
}

// Load creates a ledger pre-populated with persisted positions.
func Load(accountID string, positions []model.Position) *Ledger {
	l := New(accountID)
	for i := range positions {
		p := positions[i]
		l.positions[p.Ticker] = &p
	}
	return l
}

// SeedBackfill enters a user-declared pre-window lot as the opening position
// for its ticker. The lot must have positive quantity and price.
func (l *Ledger) SeedBackfill(lot model.BackfillLot, category model.AssetCategory) error {
	if !lot.Quantity.IsPositive() || !lot.AveragePrice.IsPositive() {
		return fmt.Errorf("%w: ticker %s quantity %s price %s",
			apperrors.ErrInvalidBackfillLot, lot.Ticker, lot.Quantity, lot.AveragePrice)
	}

	p := l.ensure(lot.Ticker, category)
	p.Quantity = p.Quantity.Add(lot.Quantity)
	p.AveragePrice = lot.AveragePrice
	p.TotalInvested = p.Quantity.Mul(p.AveragePrice)
	p.AcquiredBeforeWindow = true
	return nil
}

// ApplyBuy folds a purchase into the weighted average:
// newAvg = (oldQty×oldAvg + qty×price) / (oldQty + qty).
// The first buy for a ticker creates the position with avg = unitPrice.
func (l *Ledger) ApplyBuy(ticker string, category model.AssetCategory, quantity, unitPrice decimal.Decimal) {
	p := l.ensure(ticker, category)

	newQty := p.Quantity.Add(quantity)
	invested := p.Quantity.Mul(p.AveragePrice).Add(quantity.Mul(unitPrice))
	p.AveragePrice = invested.Div(newQty)
	p.Quantity = newQty
	p.TotalInvested = p.Quantity.Mul(p.AveragePrice)
	p.UpdatedAt = time.Now().UTC()
}

// ApplySell reduces the held quantity and returns the average cost in effect
// before the sale, which prices the swing-trade profit. A sell never changes
// the average. Selling more than is held fails with ErrInsufficientPosition
// and leaves the ledger untouched: it means the feed and the ledger have
// diverged, which an operator must see, not a clamp.
func (l *Ledger) ApplySell(ticker string, quantity decimal.Decimal) (decimal.Decimal, error) {
	p, ok := l.positions[ticker]
	if !ok || quantity.GreaterThan(p.Quantity) {
		held := decimal.Zero
		if ok {
			held = p.Quantity
		}
		return decimal.Zero, fmt.Errorf("%w: account %s ticker %s sell %s held %s",
			apperrors.ErrInsufficientPosition, l.accountID, ticker, quantity, held)
	}

	avgBefore := p.AveragePrice
	p.Quantity = p.Quantity.Sub(quantity)
	p.TotalInvested = p.Quantity.Mul(p.AveragePrice)
	p.UpdatedAt = time.Now().UTC()
	return avgBefore, nil
}

// ApplySplit multiplies the quantity and divides the average by the ratio,
// keeping quantity × average constant. A split on an untracked ticker is a
// no-op: there is nothing to adjust.
func (l *Ledger) ApplySplit(ticker string, ratio decimal.Decimal) {
	p, ok := l.positions[ticker]
	if !ok || p.Quantity.IsZero() {
		return
	}
	p.Quantity = p.Quantity.Mul(ratio)
	p.AveragePrice = p.AveragePrice.Div(ratio)
	p.TotalInvested = p.Quantity.Mul(p.AveragePrice)
	p.UpdatedAt = time.Now().UTC()
}

// ApplyReverseSplit divides the quantity and multiplies the average by the
// ratio, the mirror of ApplySplit.
func (l *Ledger) ApplyReverseSplit(ticker string, ratio decimal.Decimal) {
	p, ok := l.positions[ticker]
	if !ok || p.Quantity.IsZero() {
		return
	}
	p.Quantity = p.Quantity.Div(ratio)
	p.AveragePrice = p.AveragePrice.Mul(ratio)
	p.TotalInvested = p.Quantity.Mul(p.AveragePrice)
	p.UpdatedAt = time.Now().UTC()
}

// ApplyBonusShare folds issuer-granted shares in at their declared fair value,
// exactly like a buy at that price.
func (l *Ledger) ApplyBonusShare(ticker string, category model.AssetCategory, quantity, declaredUnitValue decimal.Decimal) {
	l.ApplyBuy(ticker, category, quantity, declaredUnitValue)
}

// Position returns a copy of the ticker's current state.
func (l *Ledger) Position(ticker string) (model.Position, bool) {
	p, ok := l.positions[ticker]
	if !ok {
		return model.Position{}, false
	}
	return *p, true
}

// Positions returns copies of every tracked position, sorted by ticker so the
// persistence order is deterministic across replays.
func (l *Ledger) Positions() []model.Position {
	out := make([]model.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

func (l *Ledger) ensure(ticker string, category model.AssetCategory) *model.Position {
	p, ok := l.positions[ticker]
	if !ok {
		p = &model.Position{
			ID:            uuid.New().String(),
			AccountID:     l.accountID,
			Ticker:        ticker,
			AssetCategory: category,
			Quantity:      decimal.Zero,
			AveragePrice:  decimal.Zero,
			TotalInvested: decimal.Zero,
		}
		l.positions[ticker] = p
	}
	return p
}
