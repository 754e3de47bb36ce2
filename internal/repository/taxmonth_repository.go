package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// TaxMonthRepository provides data access methods for the tax_month table.
// The aggregation pass is the only writer of computed fields; the status
// column additionally transitions on user action (mark paid).
type TaxMonthRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTaxMonthRepository creates a new TaxMonthRepository with the provided database connection.
func NewTaxMonthRepository(db *sql.DB) *TaxMonthRepository {
	return &TaxMonthRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TaxMonthRepository) WithTx(tx *sql.Tx) *TaxMonthRepository {
	return &TaxMonthRepository{db: r.db, tx: tx}
}

func (r *TaxMonthRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Upsert writes one month's computed record. The per-asset breakdown and the
// per-trade audit details are serialized to JSON columns.
func (r *TaxMonthRepository) Upsert(ctx context.Context, record model.MonthTaxRecord) error {
	assetsJSON, err := json.Marshal(record.Assets)
	if err != nil {
		return fmt.Errorf("failed to marshal asset breakdown: %w", err)
	}
	tradesJSON, err := json.Marshal(record.Trades)
	if err != nil {
		return fmt.Errorf("failed to marshal trade details: %w", err)
	}

	query := `
		INSERT INTO tax_month
			(id, account_id, month, total_tax, total_sold, swing_profit,
			 day_trade_profit, withholding_swing, withholding_day_trade,
			 status, assets_json, trades_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, month) DO UPDATE SET
			total_tax = excluded.total_tax,
			total_sold = excluded.total_sold,
			swing_profit = excluded.swing_profit,
			day_trade_profit = excluded.day_trade_profit,
			withholding_swing = excluded.withholding_swing,
			withholding_day_trade = excluded.withholding_day_trade,
			status = excluded.status,
			assets_json = excluded.assets_json,
			trades_json = excluded.trades_json,
			updated_at = excluded.updated_at
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		record.ID,
		record.AccountID,
		record.Month,
		record.TotalTax.String(),
		record.TotalSold.String(),
		record.SwingProfit.String(),
		record.DayTradeProfit.String(),
		record.WithholdingSwing.String(),
		record.WithholdingDayTrade.String(),
		string(record.Status),
		string(assetsJSON),
		string(tradesJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tax month %s/%s: %w", record.AccountID, record.Month, err)
	}

	return nil
}

// GetByAccountMonth retrieves one month's record including the per-trade audit
// details.
func (r *TaxMonthRepository) GetByAccountMonth(ctx context.Context, accountID, month string) (model.MonthTaxRecord, error) {
	query := selectTaxMonth + ` WHERE account_id = ? AND month = ?`

	rows, err := r.getQuerier().QueryContext(ctx, query, accountID, month)
	if err != nil {
		return model.MonthTaxRecord{}, fmt.Errorf("failed to query tax_month table: %w", err)
	}
	defer rows.Close()

	records, err := scanTaxMonths(rows)
	if err != nil {
		return model.MonthTaxRecord{}, err
	}
	if len(records) == 0 {
		return model.MonthTaxRecord{}, apperrors.ErrMonthTaxNotFound
	}

	return records[0], nil
}

// ListByAccountYear retrieves all of one year's records, ascending by month.
func (r *TaxMonthRepository) ListByAccountYear(ctx context.Context, accountID, year string) ([]model.MonthTaxRecord, error) {
	query := selectTaxMonth + ` WHERE account_id = ? AND month LIKE ? ORDER BY month ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, accountID, year+"-%")
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_month table: %w", err)
	}
	defer rows.Close()

	return scanTaxMonths(rows)
}

// ListByAccount retrieves every month record of an account, ascending.
func (r *TaxMonthRepository) ListByAccount(ctx context.Context, accountID string) ([]model.MonthTaxRecord, error) {
	query := selectTaxMonth + ` WHERE account_id = ? ORDER BY month ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_month table: %w", err)
	}
	defer rows.Close()

	return scanTaxMonths(rows)
}

// GetStatuses returns month → payment status for an account. The replay uses
// this to carry paid flags across a full rebuild.
func (r *TaxMonthRepository) GetStatuses(ctx context.Context, accountID string) (map[string]model.TaxStatus, error) {
	query := `SELECT month, status FROM tax_month WHERE account_id = ?`

	rows, err := r.getQuerier().QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax statuses: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]model.TaxStatus)
	for rows.Next() {
		var month, status string
		if err := rows.Scan(&month, &status); err != nil {
			return nil, fmt.Errorf("failed to scan tax status: %w", err)
		}
		statuses[month] = model.TaxStatus(status)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax statuses: %w", err)
	}

	return statuses, nil
}

// SetStatus updates one month's payment status.
func (r *TaxMonthRepository) SetStatus(ctx context.Context, accountID, month string, status model.TaxStatus) error {
	query := `UPDATE tax_month SET status = ?, updated_at = ? WHERE account_id = ? AND month = ?`

	result, err := r.getQuerier().ExecContext(ctx, query,
		string(status),
		time.Now().UTC().Format(time.RFC3339),
		accountID,
		month,
	)
	if err != nil {
		return fmt.Errorf("failed to update tax status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrMonthTaxNotFound
	}

	return nil
}

// DeleteByAccount removes every month record for an account, used by the
// full-history replay before recomputation.
func (r *TaxMonthRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	query := `DELETE FROM tax_month WHERE account_id = ?`

	if _, err := r.getQuerier().ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to delete tax months: %w", err)
	}

	return nil
}

const selectTaxMonth = `
	SELECT id, account_id, month, total_tax, total_sold, swing_profit,
	       day_trade_profit, withholding_swing, withholding_day_trade,
	       status, assets_json, trades_json, updated_at
	FROM tax_month
`

func scanTaxMonths(rows *sql.Rows) ([]model.MonthTaxRecord, error) {
	var records []model.MonthTaxRecord
	for rows.Next() {
		var rec model.MonthTaxRecord
		var totalTax, totalSold, swing, day, whSwing, whDay string
		var status, assetsJSON, tradesJSON string
		var updatedAt sql.NullString

		err := rows.Scan(
			&rec.ID,
			&rec.AccountID,
			&rec.Month,
			&totalTax,
			&totalSold,
			&swing,
			&day,
			&whSwing,
			&whDay,
			&status,
			&assetsJSON,
			&tradesJSON,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tax_month table results: %w", err)
		}

		rec.Status = model.TaxStatus(status)
		if rec.TotalTax, err = ParseDecimal(totalTax); err != nil {
			return nil, err
		}
		if rec.TotalSold, err = ParseDecimal(totalSold); err != nil {
			return nil, err
		}
		if rec.SwingProfit, err = ParseDecimal(swing); err != nil {
			return nil, err
		}
		if rec.DayTradeProfit, err = ParseDecimal(day); err != nil {
			return nil, err
		}
		if rec.WithholdingSwing, err = ParseDecimal(whSwing); err != nil {
			return nil, err
		}
		if rec.WithholdingDayTrade, err = ParseDecimal(whDay); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(assetsJSON), &rec.Assets); err != nil {
			return nil, fmt.Errorf("failed to unmarshal asset breakdown: %w", err)
		}
		if err := json.Unmarshal([]byte(tradesJSON), &rec.Trades); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trade details: %w", err)
		}

		if updatedAt.Valid && updatedAt.String != "" {
			if rec.UpdatedAt, err = ParseTime(updatedAt.String); err != nil {
				return nil, err
			}
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_month table: %w", err)
	}

	return records, nil
}
