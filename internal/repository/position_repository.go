package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// PositionRepository provides data access methods for the position table,
// the persisted form of the cost-basis ledger. The processing pipeline is the
// only writer; everything else reads.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{db: r.db, tx: tx}
}

func (r *PositionRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpsertAll writes the ledger snapshot for an account, one row per ticker.
// Quantity-zero rows are written too: they are the audit trail of closed
// positions.
func (r *PositionRepository) UpsertAll(ctx context.Context, positions []model.Position) error {
	query := `
		INSERT INTO position
			(id, account_id, ticker, asset_category, quantity, average_price,
			 total_invested, acquired_before_window, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, ticker) DO UPDATE SET
			asset_category = excluded.asset_category,
			quantity = excluded.quantity,
			average_price = excluded.average_price,
			total_invested = excluded.total_invested,
			acquired_before_window = excluded.acquired_before_window,
			updated_at = excluded.updated_at
	`

	for _, p := range positions {
		_, err := r.getQuerier().ExecContext(ctx, query,
			p.ID,
			p.AccountID,
			p.Ticker,
			string(p.AssetCategory),
			p.Quantity.String(),
			p.AveragePrice.String(),
			p.TotalInvested.String(),
			p.AcquiredBeforeWindow,
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert position %s/%s: %w", p.AccountID, p.Ticker, err)
		}
	}

	return nil
}

// GetByAccount retrieves every position for an account, sorted by ticker.
func (r *PositionRepository) GetByAccount(ctx context.Context, accountID string) ([]model.Position, error) {
	query := `
		SELECT id, account_id, ticker, asset_category, quantity, average_price,
		       total_invested, acquired_before_window, updated_at
		FROM position
		WHERE account_id = ?
		ORDER BY ticker ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		var p model.Position
		var category, qty, avg, invested string
		var updatedAt sql.NullString

		err := rows.Scan(
			&p.ID,
			&p.AccountID,
			&p.Ticker,
			&category,
			&qty,
			&avg,
			&invested,
			&p.AcquiredBeforeWindow,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		p.AssetCategory = model.AssetCategory(category)
		if p.Quantity, err = ParseDecimal(qty); err != nil {
			return nil, err
		}
		if p.AveragePrice, err = ParseDecimal(avg); err != nil {
			return nil, err
		}
		if p.TotalInvested, err = ParseDecimal(invested); err != nil {
			return nil, err
		}
		if updatedAt.Valid && updatedAt.String != "" {
			if p.UpdatedAt, err = ParseTime(updatedAt.String); err != nil {
				return nil, err
			}
		}

		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// DeleteByAccount removes the account's whole ledger snapshot. The full-history
// replay rebuilds from ledger zero-state rather than patching incrementally.
func (r *PositionRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM position WHERE account_id = ?`

	if _, err := r.getQuerier().ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}

	return nil
}
