package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// MovementRepository provides data access methods for the movement table.
// Movements are immutable once ingested; the unique natural key
// (account, date, ticker, kind, quantity, value) makes re-ingestion of the
// same feed page idempotent.
type MovementRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMovementRepository creates a new MovementRepository with the provided database connection.
func NewMovementRepository(db *sql.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *MovementRepository) WithTx(tx *sql.Tx) *MovementRepository {
	return &MovementRepository{db: r.db, tx: tx}
}

func (r *MovementRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertBatch persists a batch of movements, silently skipping exact
// duplicates of already-ingested rows (the idempotence guard for feed
// re-drains). Returns the movements that were actually inserted: a partial
// re-delivery must only feed its genuinely new rows into processing.
func (r *MovementRepository) InsertBatch(ctx context.Context, movements []model.Movement) ([]model.Movement, error) {
	query := `
		INSERT OR IGNORE INTO movement
			(id, account_id, ticker, asset_label, asset_category, kind,
			 operation_value, quantity, unit_price, reference_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var inserted []model.Movement
	for _, m := range movements {
		result, err := r.getQuerier().ExecContext(ctx, query,
			m.ID,
			m.AccountID,
			m.Ticker,
			m.AssetLabel,
			string(m.AssetCategory),
			string(m.Kind),
			m.OperationValue.String(),
			m.Quantity.String(),
			m.UnitPrice.String(),
			m.ReferenceDate.Format("2006-01-02"),
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert movement for %s on %s: %w",
				m.Ticker, m.ReferenceDate.Format("2006-01-02"), err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected > 0 {
			inserted = append(inserted, m)
		}
	}

	return inserted, nil
}

// GetByAccount retrieves all movements for an account within the inclusive
// date range, sorted ascending by reference date. Processing order matters:
// the cost-basis evolution is order-sensitive.
func (r *MovementRepository) GetByAccount(ctx context.Context, accountID string, startDate, endDate time.Time) ([]model.Movement, error) {
	query := `
		SELECT id, account_id, ticker, asset_label, asset_category, kind,
		       operation_value, quantity, unit_price, reference_date
		FROM movement
		WHERE account_id = ?
		AND reference_date >= ?
		AND reference_date <= ?
		ORDER BY reference_date ASC, ticker ASC, kind ASC, id ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query,
		accountID,
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement table: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement table: %w", err)
	}

	return movements, nil
}

// GetOldestMovementDate finds the date of the account's earliest movement.
// Returns time.Time{} when the account has no movements.
func (r *MovementRepository) GetOldestMovementDate(ctx context.Context, accountID string) (time.Time, error) {
	query := `SELECT MIN(reference_date) FROM movement WHERE account_id = ?`

	var oldest sql.NullString
	if err := r.getQuerier().QueryRowContext(ctx, query, accountID).Scan(&oldest); err != nil {
		return time.Time{}, fmt.Errorf("failed to query oldest movement: %w", err)
	}
	if !oldest.Valid || oldest.String == "" {
		return time.Time{}, nil
	}

	return ParseTime(oldest.String)
}

// DeleteByAccount removes every ingested movement for an account. Used by the
// full-history replay before re-draining the feed.
func (r *MovementRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM movement WHERE account_id = ?`

	if _, err := r.getQuerier().ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete movements: %w", err)
	}

	return nil
}

func scanMovement(rows *sql.Rows) (model.Movement, error) {
	var m model.Movement
	var category, kind, value, qty, price, dateStr string

	err := rows.Scan(
		&m.ID,
		&m.AccountID,
		&m.Ticker,
		&m.AssetLabel,
		&category,
		&kind,
		&value,
		&qty,
		&price,
		&dateStr,
	)
	if err != nil {
		return model.Movement{}, fmt.Errorf("failed to scan movement table results: %w", err)
	}

	m.AssetCategory = model.AssetCategory(category)
	m.Kind = model.MovementKind(kind)

	if m.OperationValue, err = ParseDecimal(value); err != nil {
		return model.Movement{}, err
	}
	if m.Quantity, err = ParseDecimal(qty); err != nil {
		return model.Movement{}, err
	}
	if m.UnitPrice, err = ParseDecimal(price); err != nil {
		return model.Movement{}, err
	}
	if m.ReferenceDate, err = ParseTime(dateStr); err != nil {
		return model.Movement{}, err
	}

	return m, nil
}
