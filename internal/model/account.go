package model

import "time"

// SyncStatus is the historical-backfill state of an account.
type SyncStatus string

const (
	// SyncNotSynced means the full history replay has never run.
	SyncNotSynced SyncStatus = "not_synced"

	// SyncSyncing means a full history replay is currently executing.
	SyncSyncing SyncStatus = "syncing"

	// SyncSynced means the historical backfill completed; the nightly
	// incremental job keeps the account current from here on.
	SyncSynced SyncStatus = "synced"
)

// Account is one investor tracked by the system. DocumentID is the investor's
// CPF, stored encrypted at rest; the decrypted value is only materialized when
// querying the movement feed.
type Account struct {
	ID             string     `json:"id"`
	DocumentID     string     `json:"documentId,omitempty"`
	SyncStatus     SyncStatus `json:"syncStatus"`
	FirstActivity  time.Time  `json:"firstActivity,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
}
