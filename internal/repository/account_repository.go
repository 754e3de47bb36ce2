package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/crypto"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
)

// AccountRepository provides data access methods for the account table.
// Document IDs (CPF) are encrypted before they touch the database and only
// decrypted on read.
type AccountRepository struct {
	db     *sql.DB
	tx     *sql.Tx
	cipher *crypto.Cipher
}

// NewAccountRepository creates a new AccountRepository with the provided
// database connection and field cipher.
func NewAccountRepository(db *sql.DB, cipher *crypto.Cipher) *AccountRepository {
	return &AccountRepository{db: db, cipher: cipher}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: r.db, tx: tx, cipher: r.cipher}
}

func (r *AccountRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert persists a new account. The account's DocumentID is stored encrypted.
func (r *AccountRepository) Insert(ctx context.Context, account *model.Account) error {
	encrypted, err := r.cipher.Encrypt(account.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to encrypt document id: %w", err)
	}

	query := `
		INSERT INTO account (id, document_id, sync_status, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		account.ID,
		encrypted,
		string(account.SyncStatus),
		account.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetByID retrieves one account with its document ID decrypted.
func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (model.Account, error) {
	query := `
		SELECT id, document_id, sync_status, first_activity, created_at
		FROM account
		WHERE id = ?
	`

	var a model.Account
	var encrypted, status string
	var firstActivity, createdAt sql.NullString

	err := r.getQuerier().QueryRowContext(ctx, query, accountID).Scan(
		&a.ID,
		&encrypted,
		&status,
		&firstActivity,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to query account: %w", err)
	}

	a.SyncStatus = model.SyncStatus(status)
	a.DocumentID, err = r.cipher.Decrypt(encrypted)
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to decrypt document id for account %s: %w", accountID, err)
	}

	if firstActivity.Valid && firstActivity.String != "" {
		a.FirstActivity, err = ParseTime(firstActivity.String)
		if err != nil {
			return model.Account{}, err
		}
	}
	if createdAt.Valid && createdAt.String != "" {
		a.CreatedAt, err = ParseTime(createdAt.String)
		if err != nil {
			return model.Account{}, err
		}
	}

	return a, nil
}

// ListSynced returns the IDs of every account whose historical backfill has
// completed. The nightly incremental job iterates exactly this set.
func (r *AccountRepository) ListSynced(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM account WHERE sync_status = ? ORDER BY id`

	rows, err := r.getQuerier().QueryContext(ctx, query, string(model.SyncSynced))
	if err != nil {
		return nil, fmt.Errorf("failed to query synced accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return ids, nil
}

// SetSyncStatus transitions the account's backfill state machine.
func (r *AccountRepository) SetSyncStatus(ctx context.Context, accountID string, status model.SyncStatus) error {
	query := `UPDATE account SET sync_status = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, string(status), accountID)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}

	return nil
}

// SetFirstActivity records the account's earliest known movement date.
func (r *AccountRepository) SetFirstActivity(ctx context.Context, accountID string, date time.Time) error {
	query := `UPDATE account SET first_activity = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, date.Format("2006-01-02"), accountID)
	if err != nil {
		return fmt.Errorf("failed to update first activity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}

	return nil
}
