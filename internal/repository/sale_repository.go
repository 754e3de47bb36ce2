package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// SaleRepository provides data access methods for the sale_result table.
// Sale results are write-once: each row is the outcome of one sell event and
// is only ever removed wholesale by a full-history replay.
type SaleRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSaleRepository creates a new SaleRepository with the provided database connection.
func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SaleRepository) WithTx(tx *sql.Tx) *SaleRepository {
	return &SaleRepository{db: r.db, tx: tx}
}

func (r *SaleRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertBatch persists the sale results of one processed batch.
func (r *SaleRepository) InsertBatch(ctx context.Context, sales []model.SaleResult) error {
	query := `
		INSERT INTO sale_result
			(id, account_id, ticker, asset_category, day_trade, quantity,
			 gross_value, average_cost_at_sale, profit_loss, reference_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, s := range sales {
		_, err := r.getQuerier().ExecContext(ctx, query,
			s.ID,
			s.AccountID,
			s.Ticker,
			string(s.AssetCategory),
			s.DayTrade,
			s.Quantity.String(),
			s.GrossValue.String(),
			s.AverageCostAtSale.String(),
			s.ProfitLoss.String(),
			s.ReferenceDate.Format("2006-01-02"),
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert sale result for %s on %s: %w",
				s.Ticker, s.ReferenceDate.Format("2006-01-02"), err)
		}
	}

	return nil
}

// GetByAccountMonth retrieves all sale results falling in one "YYYY-MM"
// bucket, sorted by date then ticker for deterministic aggregation.
func (r *SaleRepository) GetByAccountMonth(ctx context.Context, accountID, month string) ([]model.SaleResult, error) {
	query := `
		SELECT id, account_id, ticker, asset_category, day_trade, quantity,
		       gross_value, average_cost_at_sale, profit_loss, reference_date
		FROM sale_result
		WHERE account_id = ?
		AND strftime('%Y-%m', reference_date) = ?
		ORDER BY reference_date ASC, ticker ASC, id ASC
	`

	return r.querySales(ctx, query, accountID, month)
}

// GetMonths returns the distinct "YYYY-MM" buckets that have at least one
// sale, ascending. This drives which months the aggregation pass recomputes.
func (r *SaleRepository) GetMonths(ctx context.Context, accountID string) ([]string, error) {
	query := `
		SELECT DISTINCT strftime('%Y-%m', reference_date) AS month
		FROM sale_result
		WHERE account_id = ?
		ORDER BY month ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, fmt.Errorf("failed to scan sale month: %w", err)
		}
		months = append(months, month)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale months: %w", err)
	}

	return months, nil
}

// DeleteByAccount removes every sale result for an account, used by the
// full-history replay before recomputation.
func (r *SaleRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM sale_result WHERE account_id = ?`

	if _, err := r.getQuerier().ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete sale results: %w", err)
	}

	return nil
}

func (r *SaleRepository) querySales(ctx context.Context, query string, args ...any) ([]model.SaleResult, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale_result table: %w", err)
	}
	defer rows.Close()

	var sales []model.SaleResult
	for rows.Next() {
		var s model.SaleResult
		var category, qty, gross, avg, profit, dateStr string

		err := rows.Scan(
			&s.ID,
			&s.AccountID,
			&s.Ticker,
			&category,
			&s.DayTrade,
			&qty,
			&gross,
			&avg,
			&profit,
			&dateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale_result table results: %w", err)
		}

		s.AssetCategory = model.AssetCategory(category)
		if s.Quantity, err = ParseDecimal(qty); err != nil {
			return nil, err
		}
		if s.GrossValue, err = ParseDecimal(gross); err != nil {
			return nil, err
		}
		if s.AverageCostAtSale, err = ParseDecimal(avg); err != nil {
			return nil, err
		}
		if s.ProfitLoss, err = ParseDecimal(profit); err != nil {
			return nil, err
		}
		if s.ReferenceDate, err = ParseTime(dateStr); err != nil {
			return nil, err
		}

		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale_result table: %w", err)
	}

	return sales, nil
}
