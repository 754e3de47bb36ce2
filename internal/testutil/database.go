package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Account table
		CREATE TABLE IF NOT EXISTS account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			document_id TEXT NOT NULL,
			sync_status VARCHAR(10) NOT NULL DEFAULT 'not_synced',
			first_activity DATE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Movement table
		CREATE TABLE IF NOT EXISTS movement (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			asset_label TEXT,
			asset_category VARCHAR(10) NOT NULL,
			kind VARCHAR(15) NOT NULL,
			operation_value TEXT NOT NULL,
			quantity TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			reference_date DATE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE,
			CONSTRAINT unique_movement UNIQUE (account_id, reference_date, ticker, kind, quantity, operation_value)
		);

		CREATE INDEX IF NOT EXISTS idx_movement_account_date ON movement(account_id, reference_date);

		-- Position table
		CREATE TABLE IF NOT EXISTS position (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			asset_category VARCHAR(10) NOT NULL,
			quantity TEXT NOT NULL,
			average_price TEXT NOT NULL,
			total_invested TEXT NOT NULL,
			acquired_before_window BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE,
			CONSTRAINT unique_position UNIQUE (account_id, ticker)
		);

		-- Sale result table
		CREATE TABLE IF NOT EXISTS sale_result (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			asset_category VARCHAR(10) NOT NULL,
			day_trade BOOLEAN NOT NULL DEFAULT FALSE,
			quantity TEXT NOT NULL,
			gross_value TEXT NOT NULL,
			average_cost_at_sale TEXT NOT NULL,
			profit_loss TEXT NOT NULL,
			reference_date DATE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_sale_result_account_date ON sale_result(account_id, reference_date);

		-- Tax month table
		CREATE TABLE IF NOT EXISTS tax_month (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			month VARCHAR(7) NOT NULL,
			total_tax TEXT NOT NULL,
			total_sold TEXT NOT NULL,
			swing_profit TEXT NOT NULL,
			day_trade_profit TEXT NOT NULL,
			withholding_swing TEXT NOT NULL,
			withholding_day_trade TEXT NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			assets_json TEXT NOT NULL,
			trades_json TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE,
			CONSTRAINT unique_tax_month UNIQUE (account_id, month)
		);
	`

	_, err := db.Exec(schema)
	return err
}
