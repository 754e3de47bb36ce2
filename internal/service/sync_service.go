package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/asset"
	"github.com/calculadora-ir-stocks/server-sub001/internal/feed"
	"github.com/calculadora-ir-stocks/server-sub001/internal/ledger"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
)

// EarliestQueryableDate is the feed's first queryable day. Holdings acquired
// before it can only enter the system as manual backfill lots.
var EarliestQueryableDate = time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC)

// SyncService drives movement processing: the full-history replay that
// rebuilds an account from scratch, and the nightly incremental run that
// appends one day.
//
// All processing for one account is strictly sequential; reordering movements
// produces a different cost-basis evolution and therefore wrong taxes.
// Different accounts share no mutable state and run in parallel, bounded by
// the configured worker count.
type SyncService struct {
	db           *sql.DB
	provider     feed.Provider
	classifier   *asset.Classifier
	accountRepo  *repository.AccountRepository
	movementRepo *repository.MovementRepository
	positionRepo *repository.PositionRepository
	saleRepo     *repository.SaleRepository
	taxRepo      *repository.TaxMonthRepository
	aggregation  *AggregationService
	workers      int

	mu     sync.Mutex
	active map[string]bool

	now func() time.Time
}

// NewSyncService creates a new SyncService with the provided dependencies.
func NewSyncService(
	db *sql.DB,
	provider feed.Provider,
	classifier *asset.Classifier,
	accountRepo *repository.AccountRepository,
	movementRepo *repository.MovementRepository,
	positionRepo *repository.PositionRepository,
	saleRepo *repository.SaleRepository,
	taxRepo *repository.TaxMonthRepository,
	aggregation *AggregationService,
	workers int,
) *SyncService {
	if workers < 1 {
		workers = 1
	}
	return &SyncService{
		db:           db,
		provider:     provider,
		classifier:   classifier,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		positionRepo: positionRepo,
		saleRepo:     saleRepo,
		taxRepo:      taxRepo,
		aggregation:  aggregation,
		workers:      workers,
		active:       make(map[string]bool),
		now:          time.Now,
	}
}

// tryLock claims the account's processing slot. A replay and the nightly run
// for the same account must never overlap: single writer per account.
func (s *SyncService) tryLock(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[accountID] {
		return false
	}
	s.active[accountID] = true
	return true
}

func (s *SyncService) unlock(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, accountID)
}

// RunBigBang replays the account's full movement history from the feed's
// earliest queryable date through yesterday, rebuilding ledger and tax state
// from zero. Safe to re-run: derived state is wiped first and the same inputs
// rebuild the same outputs. Paid flags are carried over by month key.
//
// Each month commits in its own transaction, so cancelling a long replay
// between months leaves every committed month intact and no month half-done.
func (s *SyncService) RunBigBang(ctx context.Context, accountID string, backfillLots []model.BackfillLot) error {
	if !s.tryLock(accountID) {
		return fmt.Errorf("%w: %s", apperrors.ErrSyncInProgress, accountID)
	}
	defer s.unlock(accountID)

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.validateBackfill(backfillLots); err != nil {
		return err
	}

	if err := s.accountRepo.SetSyncStatus(ctx, accountID, model.SyncSyncing); err != nil {
		return err
	}

	err = s.runBigBang(ctx, account, backfillLots)
	if err != nil {
		// Replay failed or was cancelled partway; the account must not look
		// synced, a re-run will rebuild from scratch.
		if statusErr := s.accountRepo.SetSyncStatus(context.WithoutCancel(ctx), accountID, model.SyncNotSynced); statusErr != nil {
			log.Printf("failed to reset sync status for account %s: %v", accountID, statusErr)
		}
		return err
	}

	return s.accountRepo.SetSyncStatus(ctx, accountID, model.SyncSynced)
}

func (s *SyncService) runBigBang(ctx context.Context, account model.Account, backfillLots []model.BackfillLot) error {
	yesterday := s.now().UTC().AddDate(0, 0, -1)

	movements, err := s.provider.GetMovements(ctx, account.DocumentID, EarliestQueryableDate, yesterday)
	if err != nil {
		return fmt.Errorf("failed to fetch movement history for account %s: %w", account.ID, err)
	}

	if len(movements) == 0 && len(backfillLots) == 0 {
		return apperrors.ErrNoMovementsFound
	}

	for i := range movements {
		movements[i].AccountID = account.ID
	}
	if err := s.classifyAll(movements); err != nil {
		return fmt.Errorf("account %s: %w", account.ID, err)
	}

	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].ReferenceDate.Before(movements[j].ReferenceDate)
	})

	// Paid flags survive the rebuild; everything else derived is wiped.
	paidBefore, err := s.taxRepo.GetStatuses(ctx, account.ID)
	if err != nil {
		return err
	}

	if err := s.resetDerivedState(ctx, account.ID, movements); err != nil {
		return err
	}

	led := ledger.New(account.ID)
	for _, lot := range backfillLots {
		category, err := s.classifier.Classify(lot.Ticker, lot.AssetLabel)
		if err != nil {
			return fmt.Errorf("account %s backfill: %w", account.ID, err)
		}
		if err := led.SeedBackfill(lot, category); err != nil {
			return err
		}
	}

	months, byMonth := groupByMonth(movements)
	for _, month := range months {
		// One month is the unit of atomicity and of cancellation.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replay cancelled before month %s: %w", month, err)
		}
		if err := s.processMonth(ctx, account.ID, led, month, byMonth[month], paidBefore[month]); err != nil {
			return err
		}
	}

	if len(movements) > 0 {
		if err := s.accountRepo.SetFirstActivity(ctx, account.ID, movements[0].ReferenceDate); err != nil {
			return err
		}
	}

	log.Printf("big bang finished for account %s: %d movements over %d months", account.ID, len(movements), len(months))
	return nil
}

// ProcessDaily ingests and processes one day's movements for a synced
// account, the nightly incremental path. Re-running for an already-ingested
// day is a no-op thanks to the movement idempotence guard.
func (s *SyncService) ProcessDaily(ctx context.Context, accountID string, date time.Time) error {
	if !s.tryLock(accountID) {
		return fmt.Errorf("%w: %s", apperrors.ErrSyncInProgress, accountID)
	}
	defer s.unlock(accountID)

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	movements, err := s.provider.GetMovements(ctx, account.DocumentID, date, date)
	if err != nil {
		return fmt.Errorf("failed to fetch movements for account %s on %s: %w",
			accountID, date.Format("2006-01-02"), err)
	}
	if len(movements) == 0 {
		return nil
	}

	for i := range movements {
		movements[i].AccountID = accountID
	}
	if err := s.classifyAll(movements); err != nil {
		return fmt.Errorf("account %s date %s: %w", accountID, date.Format("2006-01-02"), err)
	}

	// A re-drained day can mix already-ingested movements with late-reported
	// new ones. Only the rows that actually inserted may enter the pipeline:
	// the rest already shaped today's positions and sale results.
	inserted, err := s.movementRepo.InsertBatch(ctx, movements)
	if err != nil {
		return err
	}
	if len(inserted) == 0 {
		return nil
	}

	positions, err := s.positionRepo.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	led := ledger.Load(accountID, positions)

	statuses, err := s.taxRepo.GetStatuses(ctx, accountID)
	if err != nil {
		return err
	}

	month := date.Format("2006-01")
	return s.processMonth(ctx, accountID, led, month, inserted, statuses[month])
}

// ProcessAllDaily runs the incremental path for every synced account,
// bounded-parallel across accounts. One failing account does not stop the
// others; the first error is reported after all finish.
func (s *SyncService) ProcessAllDaily(ctx context.Context, date time.Time) error {
	ids, err := s.accountRepo.ListSynced(ctx)
	if err != nil {
		return err
	}

	// Plain group, not WithContext: one account's failure must not cancel the
	// siblings still waiting for their nightly run.
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.ProcessDaily(ctx, id, date); err != nil {
				log.Printf("nightly processing failed for account %s: %v", id, err)
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// processMonth runs one month's movements through the pipeline and commits
// sales, ledger snapshot and the recomputed month record in one transaction.
func (s *SyncService) processMonth(ctx context.Context, accountID string, led *ledger.Ledger, month string, movements []model.Movement, previousStatus model.TaxStatus) error {
	sales, err := runPipeline(led, movements)
	if err != nil {
		return fmt.Errorf("account %s month %s: %w", accountID, month, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin month transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saleRepo.WithTx(tx).InsertBatch(ctx, sales); err != nil {
		return err
	}
	if err := s.positionRepo.WithTx(tx).UpsertAll(ctx, led.Positions()); err != nil {
		return err
	}

	monthSales, err := s.saleRepo.WithTx(tx).GetByAccountMonth(ctx, accountID, month)
	if err != nil {
		return err
	}
	record := s.aggregation.buildMonthRecord(accountID, month, monthSales, previousStatus)
	if err := s.taxRepo.WithTx(tx).Upsert(ctx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit month %s for account %s: %w", month, accountID, err)
	}

	return nil
}

// resetDerivedState wipes everything the replay recomputes and re-ingests the
// freshly drained movement history, atomically.
func (s *SyncService) resetDerivedState(ctx context.Context, accountID string, movements []model.Movement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.taxRepo.WithTx(tx).DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.saleRepo.WithTx(tx).DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.positionRepo.WithTx(tx).DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if err := s.movementRepo.WithTx(tx).DeleteByAccount(ctx, accountID); err != nil {
		return err
	}
	if _, err := s.movementRepo.WithTx(tx).InsertBatch(ctx, movements); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset for account %s: %w", accountID, err)
	}

	return nil
}

// classifyAll resolves the asset category of every movement. Any unknown
// label aborts the whole batch: processing with a guessed tax rate would be
// worse than not processing at all.
func (s *SyncService) classifyAll(movements []model.Movement) error {
	for i := range movements {
		category, err := s.classifier.Classify(movements[i].Ticker, movements[i].AssetLabel)
		if err != nil {
			return err
		}
		movements[i].AssetCategory = category
	}
	return nil
}

func (s *SyncService) validateBackfill(lots []model.BackfillLot) error {
	for _, lot := range lots {
		if lot.Ticker == "" || !lot.Quantity.IsPositive() || !lot.AveragePrice.IsPositive() {
			return fmt.Errorf("%w: ticker %q quantity %s price %s",
				apperrors.ErrInvalidBackfillLot, lot.Ticker, lot.Quantity, lot.AveragePrice)
		}
	}
	return nil
}

// groupByMonth buckets sorted movements into "YYYY-MM" groups, returning the
// months in ascending order.
func groupByMonth(movements []model.Movement) ([]string, map[string][]model.Movement) {
	byMonth := make(map[string][]model.Movement)
	var months []string
	for _, m := range movements {
		month := m.ReferenceDate.Format("2006-01")
		if _, ok := byMonth[month]; !ok {
			months = append(months, month)
		}
		byMonth[month] = append(byMonth[month], m)
	}
	sort.Strings(months)
	return months, byMonth
}
