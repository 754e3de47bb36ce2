package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
)

// AccountService handles account lifecycle and read access to an account's
// positions and movement history.
type AccountService struct {
	accountRepo  *repository.AccountRepository
	positionRepo *repository.PositionRepository
	movementRepo *repository.MovementRepository
}

// NewAccountService creates a new AccountService with the provided repository
// dependencies.
func NewAccountService(
	accountRepo *repository.AccountRepository,
	positionRepo *repository.PositionRepository,
	movementRepo *repository.MovementRepository,
) *AccountService {
	return &AccountService{
		accountRepo:  accountRepo,
		positionRepo: positionRepo,
		movementRepo: movementRepo,
	}
}

// CreateAccount registers a new investor by CPF. The document is stored
// encrypted; the returned account carries it in plaintext once.
func (s *AccountService) CreateAccount(ctx context.Context, documentID string) (*model.Account, error) {
	document := strings.Map(keepDigits, documentID)
	if len(document) != 11 {
		return nil, fmt.Errorf("document must have 11 digits, got %d", len(document))
	}

	account := &model.Account{
		ID:         uuid.New().String(),
		DocumentID: document,
		SyncStatus: model.SyncNotSynced,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.accountRepo.Insert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// GetAccount retrieves one account. The decrypted document ID is masked
// before leaving the service; only the sync pipeline needs it in full.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return model.Account{}, err
	}
	account.DocumentID = maskDocument(account.DocumentID)
	return account, nil
}

// GetPositions returns the account's current holdings, including zeroed
// positions kept for audit.
func (s *AccountService) GetPositions(ctx context.Context, accountID string) ([]model.Position, error) {
	return s.positionRepo.GetByAccount(ctx, accountID)
}

// GetMovements returns the account's ingested movements in the inclusive
// date range, ascending.
func (s *AccountService) GetMovements(ctx context.Context, accountID string, startDate, endDate time.Time) ([]model.Movement, error) {
	return s.movementRepo.GetByAccount(ctx, accountID, startDate, endDate)
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

// maskDocument keeps the middle digits visible the way brokerage statements
// do (***.456.789-**).
func maskDocument(document string) string {
	if len(document) != 11 {
		return document
	}
	return "***." + document[3:6] + "." + document[6:9] + "-**"
}
