package request

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// CreateAccountRequest represents the request body for registering an investor
type CreateAccountRequest struct {
	DocumentID string `json:"documentId"`
}

// BackfillLotRequest is one manually-entered holding predating the feed's
// earliest queryable date. Quantity and average price travel as strings to
// keep broker-statement precision intact.
type BackfillLotRequest struct {
	Ticker       string `json:"ticker"`
	AssetLabel   string `json:"assetLabel,omitempty"`
	Quantity     string `json:"quantity"`
	AveragePrice string `json:"averagePrice"`
}

// BigBangRequest represents the request body for a full history replay
type BigBangRequest struct {
	BackfillLots []BackfillLotRequest `json:"backfillLots,omitempty"`
}

// Lots converts the request's backfill entries into domain lots, rejecting
// unparseable numbers before any processing starts.
func (r BigBangRequest) Lots() ([]model.BackfillLot, error) {
	lots := make([]model.BackfillLot, 0, len(r.BackfillLots))
	for _, raw := range r.BackfillLots {
		quantity, err := decimal.NewFromString(raw.Quantity)
		if err != nil {
			return nil, fmt.Errorf("backfill lot %s: invalid quantity %q", raw.Ticker, raw.Quantity)
		}
		price, err := decimal.NewFromString(raw.AveragePrice)
		if err != nil {
			return nil, fmt.Errorf("backfill lot %s: invalid average price %q", raw.Ticker, raw.AveragePrice)
		}
		lots = append(lots, model.BackfillLot{
			Ticker:       raw.Ticker,
			AssetLabel:   raw.AssetLabel,
			Quantity:     quantity,
			AveragePrice: price,
		})
	}
	return lots, nil
}
