// Package feed drains the clearinghouse movements endpoint for one investor
// and normalizes its records into model.Movement values.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// Provider supplies the chronologically-queryable movement stream for a
// document ID. The production implementation is Client; tests substitute
// in-memory fakes.
type Provider interface {
	GetMovements(ctx context.Context, documentID string, startDate, endDate time.Time) ([]model.Movement, error)
}

// Client fetches movements from the clearinghouse HTTP API. The endpoint is
// paginated; GetMovements fully drains it before returning, since processing
// must see the complete, sorted stream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

// NewClient creates a feed client for the given API base URL and token.
func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiToken:   apiToken,
	}
}

// GetMovements retrieves every movement for the document in the inclusive
// date range, draining all pages. Records the engine does not consume
// (dividends, subscription rights) are filtered out here.
func (c *Client) GetMovements(ctx context.Context, documentID string, startDate, endDate time.Time) ([]model.Movement, error) {
	var movements []model.Movement

	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, documentID, startDate, endDate, page)
		if err != nil {
			return nil, err
		}

		for _, raw := range resp.Items {
			m, ok, err := normalize(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to normalize movement (%s %s): %w",
					raw.TickerSymbol, raw.ReferenceDate, err)
			}
			if ok {
				movements = append(movements, m)
			}
		}

		if resp.TotalPages == 0 || page >= resp.TotalPages {
			break
		}
	}

	return movements, nil
}

func (c *Client) fetchPage(ctx context.Context, documentID string, startDate, endDate time.Time, page int) (Response, error) {
	endpoint, err := url.Parse(c.baseURL + "/movimentacao/v2/movimentos")
	if err != nil {
		return Response{}, fmt.Errorf("invalid feed URL: %w", err)
	}

	q := endpoint.Query()
	q.Set("documento", documentID)
	q.Set("dataInicio", startDate.Format("2006-01-02"))
	q.Set("dataFim", endDate.Format("2006-01-02"))
	q.Set("pagina", fmt.Sprintf("%d", page))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("feed returned status %d for page %d", resp.StatusCode, page)
	}

	var parsed Response
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("failed to decode feed response: %w", err)
	}

	return parsed, nil
}

// normalize maps one raw feed record into a model.Movement. Settlement
// transfers are the actual trades: credit side is a buy, debit side a sell.
// Returns ok=false for record types the engine does not consume.
func normalize(raw RawMovement) (model.Movement, bool, error) {
	var kind model.MovementKind

	switch raw.MovementType {
	case rawTypeSettlement:
		switch raw.OperationSide {
		case rawSideCredit:
			kind = model.MovementBuy
		case rawSideDebit:
			kind = model.MovementSell
		default:
			return model.Movement{}, false, fmt.Errorf("unknown settlement side %q", raw.OperationSide)
		}
	case rawTypeSplit:
		kind = model.MovementSplit
	case rawTypeReverseSplit:
		kind = model.MovementReverseSplit
	case rawTypeBonusShare:
		kind = model.MovementBonusShare
	default:
		return model.Movement{}, false, nil
	}

	quantity, err := decimal.NewFromString(raw.Quantity.String())
	if err != nil {
		return model.Movement{}, false, fmt.Errorf("bad quantity %q: %w", raw.Quantity, err)
	}
	value, err := decimal.NewFromString(nonEmpty(raw.OperationValue.String()))
	if err != nil {
		return model.Movement{}, false, fmt.Errorf("bad operation value %q: %w", raw.OperationValue, err)
	}
	price, err := decimal.NewFromString(nonEmpty(raw.UnitPrice.String()))
	if err != nil {
		return model.Movement{}, false, fmt.Errorf("bad unit price %q: %w", raw.UnitPrice, err)
	}

	date, err := time.Parse("2006-01-02", raw.ReferenceDate)
	if err != nil {
		return model.Movement{}, false, fmt.Errorf("bad reference date %q: %w", raw.ReferenceDate, err)
	}

	if price.IsZero() && quantity.IsPositive() && value.IsPositive() {
		price = value.Div(quantity)
	}

	return model.Movement{
		ID:             uuid.New().String(),
		Ticker:         raw.TickerSymbol,
		AssetLabel:     raw.ProductType,
		Kind:           kind,
		OperationValue: value,
		Quantity:       quantity,
		UnitPrice:      price,
		ReferenceDate:  date.UTC(),
	}, true, nil
}

func nonEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
