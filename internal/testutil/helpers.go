package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/calculadora-ir-stocks/server-sub001/internal/asset"
	"github.com/calculadora-ir-stocks/server-sub001/internal/crypto"
	"github.com/calculadora-ir-stocks/server-sub001/internal/feed"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
	"github.com/calculadora-ir-stocks/server-sub001/internal/service"
	"github.com/calculadora-ir-stocks/server-sub001/internal/tax"
)

// testFernetKey is a fixed base64url-encoded 32-byte key. Tests must share
// one key so an account inserted by a factory decrypts in the code under test.
const testFernetKey = "dGhpcyBpcyBhIHNlY3JldCBrZXkgZm9yIHRlc3RzISE="

// NewTestCipher returns the deterministic cipher all test fixtures share.
func NewTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()

	cipher, err := crypto.NewCipher(testFernetKey)
	if err != nil {
		t.Fatalf("Failed to create test cipher: %v", err)
	}
	return cipher
}

// MakeID returns a fresh UUID string.
func MakeID() string {
	return uuid.New().String()
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db, NewTestCipher(t))
	positionRepo := repository.NewPositionRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	return service.NewAccountService(
		accountRepo,
		positionRepo,
		movementRepo,
	)
}

func NewTestAggregationService(t *testing.T, db *sql.DB) *service.AggregationService {
	t.Helper()

	saleRepo := repository.NewSaleRepository(db)
	taxRepo := repository.NewTaxMonthRepository(db)

	return service.NewAggregationService(
		saleRepo,
		taxRepo,
		tax.NewCalculator(),
	)
}

func NewTestSyncService(t *testing.T, db *sql.DB, provider feed.Provider) *service.SyncService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db, NewTestCipher(t))
	movementRepo := repository.NewMovementRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	taxRepo := repository.NewTaxMonthRepository(db)
	aggregation := service.NewAggregationService(saleRepo, taxRepo, tax.NewCalculator())

	return service.NewSyncService(
		db,
		provider,
		asset.NewClassifier(),
		accountRepo,
		movementRepo,
		positionRepo,
		saleRepo,
		taxRepo,
		aggregation,
		1,
	)
}
