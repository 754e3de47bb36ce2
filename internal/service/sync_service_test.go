package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
	"github.com/calculadora-ir-stocks/server-sub001/internal/testutil"
)

// fakeProvider serves a fixed movement history, filtered by the requested
// date range the way the real feed endpoint does.
type fakeProvider struct {
	movements []model.Movement
	err       error
}

func (f *fakeProvider) GetMovements(_ context.Context, _ string, startDate, endDate time.Time) ([]model.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []model.Movement
	for _, m := range f.movements {
		if m.ReferenceDate.Before(startDate) || m.ReferenceDate.After(endDate) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// perAccountProvider serves a distinct history per document ID, with optional
// per-document failures, for tests spanning multiple accounts.
type perAccountProvider struct {
	movements map[string][]model.Movement
	errs      map[string]error
}

func (p *perAccountProvider) GetMovements(_ context.Context, documentID string, startDate, endDate time.Time) ([]model.Movement, error) {
	if err := p.errs[documentID]; err != nil {
		return nil, err
	}

	var out []model.Movement
	for _, m := range p.movements[documentID] {
		if m.ReferenceDate.Before(startDate) || m.ReferenceDate.After(endDate) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// blockingProvider parks the first GetMovements call until released, holding
// the account's processing lock open for overlap tests. Later calls return
// immediately.
type blockingProvider struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (p *blockingProvider) GetMovements(context.Context, string, time.Time, time.Time) ([]model.Movement, error) {
	p.once.Do(func() {
		close(p.started)
		<-p.release
	})
	return nil, nil
}

// cancellingProvider cancels the replay's context while the fetch is in
// flight, the way an HTTP client disconnect or shutdown would.
type cancellingProvider struct {
	cancel    context.CancelFunc
	movements []model.Movement
}

func (p *cancellingProvider) GetMovements(context.Context, string, time.Time, time.Time) ([]model.Movement, error) {
	p.cancel()
	return p.movements, nil
}

// TestSyncService_RunBigBang tests the full-history replay.
//
// WHY: The replay is the single source of all derived state. It must build
// correct positions and month records from raw feed movements, survive
// re-runs without duplicating anything, and leave the account in a state an
// operator can reason about when it fails.
func TestSyncService_RunBigBang(t *testing.T) {
	ctx := context.Background()
	buyDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	sellDate := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	t.Run("builds positions and month records from history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 40, 15, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("RunBigBang() returned unexpected error: %v", err)
		}

		accountRepo := repository.NewAccountRepository(db, testutil.NewTestCipher(t))
		got, err := accountRepo.GetByID(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.SyncStatus != model.SyncSynced {
			t.Errorf("Expected account synced, got %s", got.SyncStatus)
		}

		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 {
			t.Fatalf("Expected 1 position, got %d", len(positions))
		}
		if !positions[0].Quantity.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected 60 shares left, got %s", positions[0].Quantity)
		}
		if !positions[0].AveragePrice.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected average price 10, got %s", positions[0].AveragePrice)
		}

		taxRepo := repository.NewTaxMonthRepository(db)
		record, err := taxRepo.GetByAccountMonth(ctx, account.ID, "2024-02")
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if !record.SwingProfit.Equal(decimal.NewFromInt(200)) {
			t.Errorf("Expected swing profit 200, got %s", record.SwingProfit)
		}
		// R$600 sold is far under the stock exemption threshold.
		if !record.TotalTax.IsZero() {
			t.Errorf("Expected exempt month, got tax %s", record.TotalTax)
		}
	})

	t.Run("re-running produces identical state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 40, 15, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("First RunBigBang() failed: %v", err)
		}
		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("Second RunBigBang() failed: %v", err)
		}

		saleRepo := repository.NewSaleRepository(db)
		sales, err := saleRepo.GetByAccountMonth(ctx, account.ID, "2024-02")
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if len(sales) != 1 {
			t.Errorf("Expected 1 sale after rebuild, got %d", len(sales))
		}

		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected single position of 60 shares after rebuild, got %+v", positions)
		}
	})

	t.Run("carries paid flags across rebuild", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 40, 15, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)
		aggregation := testutil.NewTestAggregationService(t, db)

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("RunBigBang() failed: %v", err)
		}
		if err := aggregation.SetPaidStatus(ctx, account.ID, "2024-02"); err != nil {
			t.Fatalf("SetPaidStatus() failed: %v", err)
		}

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("RunBigBang() after payment failed: %v", err)
		}

		record, err := repository.NewTaxMonthRepository(db).GetByAccountMonth(ctx, account.ID, "2024-02")
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if record.Status != model.TaxStatusPaid {
			t.Errorf("Expected paid flag to survive rebuild, got %s", record.Status)
		}
	})

	t.Run("seeds the ledger from backfill lots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 50, 20, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		lots := []model.BackfillLot{{
			Ticker:       "PETR4",
			Quantity:     decimal.NewFromInt(100),
			AveragePrice: decimal.NewFromInt(10),
		}}
		if err := svc.RunBigBang(ctx, account.ID, lots); err != nil {
			t.Fatalf("RunBigBang() with backfill failed: %v", err)
		}

		record, err := repository.NewTaxMonthRepository(db).GetByAccountMonth(ctx, account.ID, "2024-02")
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if !record.SwingProfit.Equal(decimal.NewFromInt(500)) {
			t.Errorf("Expected profit 500 against backfilled cost, got %s", record.SwingProfit)
		}
	})

	t.Run("rejects invalid backfill lots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		svc := testutil.NewTestSyncService(t, db, &fakeProvider{})

		lots := []model.BackfillLot{{
			Ticker:       "PETR4",
			Quantity:     decimal.NewFromInt(-5),
			AveragePrice: decimal.NewFromInt(10),
		}}
		if err := svc.RunBigBang(ctx, account.ID, lots); !errors.Is(err, apperrors.ErrInvalidBackfillLot) {
			t.Errorf("Expected ErrInvalidBackfillLot, got %v", err)
		}
	})

	t.Run("fails when history is empty and no lots are given", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		svc := testutil.NewTestSyncService(t, db, &fakeProvider{})

		if err := svc.RunBigBang(ctx, account.ID, nil); !errors.Is(err, apperrors.ErrNoMovementsFound) {
			t.Errorf("Expected ErrNoMovementsFound, got %v", err)
		}

		got, err := repository.NewAccountRepository(db, testutil.NewTestCipher(t)).GetByID(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.SyncStatus != model.SyncNotSynced {
			t.Errorf("Expected account back to not_synced after failure, got %s", got.SyncStatus)
		}
	})

	t.Run("aborts on a sale exceeding the tracked position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 10, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 500, 15, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); !errors.Is(err, apperrors.ErrInsufficientPosition) {
			t.Errorf("Expected ErrInsufficientPosition, got %v", err)
		}

		got, err := repository.NewAccountRepository(db, testutil.NewTestCipher(t)).GetByID(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.SyncStatus != model.SyncNotSynced {
			t.Errorf("Expected account back to not_synced after failure, got %s", got.SyncStatus)
		}
	})

	t.Run("a failure in a later month keeps earlier committed months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		// January is clean; February oversells and aborts the replay.
		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 500, 15, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); !errors.Is(err, apperrors.ErrInsufficientPosition) {
			t.Fatalf("Expected ErrInsufficientPosition, got %v", err)
		}

		// January committed in its own transaction and must survive the abort.
		if _, err := repository.NewTaxMonthRepository(db).GetByAccountMonth(ctx, account.ID, "2024-01"); err != nil {
			t.Errorf("Expected January's record to survive the aborted replay, got %v", err)
		}
		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected January's 100-share position to survive, got %+v", positions)
		}

		got, err := repository.NewAccountRepository(db, testutil.NewTestCipher(t)).GetByID(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.SyncStatus != model.SyncNotSynced {
			t.Errorf("Expected account back to not_synced, got %s", got.SyncStatus)
		}
	})

	t.Run("cancellation mid-replay leaves committed months intact", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		history := []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 40, 15, sellDate),
		}
		svc := testutil.NewTestSyncService(t, db, &fakeProvider{movements: history})

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("Initial RunBigBang() failed: %v", err)
		}

		// A second replay whose context is cancelled while the fetch is in
		// flight must fail without touching the committed state.
		cancelCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		retry := testutil.NewTestSyncService(t, db, &cancellingProvider{cancel: cancel, movements: history})

		if err := retry.RunBigBang(cancelCtx, account.ID, nil); err == nil {
			t.Fatal("Expected cancelled replay to fail")
		}

		for _, month := range []string{"2024-01", "2024-02"} {
			if _, err := repository.NewTaxMonthRepository(db).GetByAccountMonth(ctx, account.ID, month); err != nil {
				t.Errorf("Expected %s record to survive cancellation, got %v", month, err)
			}
		}
		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected committed 60-share position to survive, got %+v", positions)
		}

		got, err := repository.NewAccountRepository(db, testutil.NewTestCipher(t)).GetByID(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.SyncStatus != model.SyncNotSynced {
			t.Errorf("Expected cancelled account back to not_synced, got %s", got.SyncStatus)
		}
	})

	t.Run("overlapping runs on one account are rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &blockingProvider{
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		svc := testutil.NewTestSyncService(t, db, provider)

		done := make(chan error, 1)
		go func() {
			done <- svc.RunBigBang(ctx, account.ID, nil)
		}()
		<-provider.started

		if err := svc.ProcessDaily(ctx, account.ID, sellDate); !errors.Is(err, apperrors.ErrSyncInProgress) {
			t.Errorf("Expected ErrSyncInProgress for overlapping daily run, got %v", err)
		}
		if err := svc.RunBigBang(ctx, account.ID, nil); !errors.Is(err, apperrors.ErrSyncInProgress) {
			t.Errorf("Expected ErrSyncInProgress for overlapping replay, got %v", err)
		}

		close(provider.release)
		if err := <-done; !errors.Is(err, apperrors.ErrNoMovementsFound) {
			t.Errorf("Expected blocked replay to finish with ErrNoMovementsFound, got %v", err)
		}

		// The lock is released; a fresh run may claim it again.
		if err := svc.ProcessDaily(ctx, account.ID, sellDate); err != nil {
			t.Errorf("Expected daily run after release to proceed, got %v", err)
		}
	})

	t.Run("unknown account fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSyncService(t, db, &fakeProvider{})

		err := svc.RunBigBang(ctx, testutil.MakeID(), nil)
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("Expected ErrAccountNotFound, got %v", err)
		}
	})
}

// TestSyncService_ProcessDaily tests the nightly incremental path.
//
// WHY: The nightly job re-fetches a whole day; if a day is retried the
// movement idempotence guard must keep sales and taxes from doubling.
func TestSyncService_ProcessDaily(t *testing.T) {
	ctx := context.Background()
	buyDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	sellDate := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	t.Run("processes a new day on top of existing positions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("RunBigBang() failed: %v", err)
		}

		// The next day's feed brings a sale.
		provider.movements = append(provider.movements,
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 30, 12, sellDate))

		if err := svc.ProcessDaily(ctx, account.ID, sellDate); err != nil {
			t.Fatalf("ProcessDaily() failed: %v", err)
		}

		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(70)) {
			t.Errorf("Expected 70 shares after daily sale, got %+v", positions)
		}

		record, err := repository.NewTaxMonthRepository(db).GetByAccountMonth(ctx, account.ID, "2024-03")
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if !record.SwingProfit.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected swing profit 60, got %s", record.SwingProfit)
		}
	})

	t.Run("retrying an ingested day is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		provider := &fakeProvider{movements: []model.Movement{
			testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate),
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 30, 12, sellDate),
		}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("RunBigBang() failed: %v", err)
		}
		if err := svc.ProcessDaily(ctx, account.ID, sellDate); err != nil {
			t.Fatalf("ProcessDaily() retry failed: %v", err)
		}

		sales, err := repository.NewSaleRepository(db).GetByAccountMonth(ctx, account.ID, "2024-03")
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if len(sales) != 1 {
			t.Errorf("Expected 1 sale after retry, got %d", len(sales))
		}

		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(70)) {
			t.Errorf("Expected position unchanged at 70 shares, got %+v", positions)
		}
	})

	t.Run("late-reported movement on an ingested day only processes the new row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)

		buy := testutil.NewMovement(account.ID, "PETR4", model.MovementBuy, 100, 10, buyDate)
		provider := &fakeProvider{movements: []model.Movement{buy}}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.RunBigBang(ctx, account.ID, nil); err != nil {
			t.Fatalf("RunBigBang() failed: %v", err)
		}

		// The feed re-delivers the whole day: the ingested buy plus a sale it
		// reported late. Only the sale is new.
		provider.movements = append(provider.movements,
			testutil.NewMovement(account.ID, "PETR4", model.MovementSell, 40, 15, buyDate))

		if err := svc.ProcessDaily(ctx, account.ID, buyDate); err != nil {
			t.Fatalf("ProcessDaily() failed: %v", err)
		}

		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(60)) {
			t.Errorf("Expected 60 shares (100 bought once, 40 sold), got %+v", positions)
		}

		sales, err := repository.NewSaleRepository(db).GetByAccountMonth(ctx, account.ID, buyDate.Format("2006-01"))
		if err != nil {
			t.Fatalf("GetByAccountMonth() failed: %v", err)
		}
		if len(sales) != 1 {
			t.Fatalf("Expected 1 sale from the late report, got %d", len(sales))
		}
		if !sales[0].ProfitLoss.Equal(decimal.NewFromInt(200)) {
			t.Errorf("Expected profit 200 against the 10.00 average, got %s", sales[0].ProfitLoss)
		}
	})

	t.Run("day with no movements is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Synced().Build(t, db)
		svc := testutil.NewTestSyncService(t, db, &fakeProvider{})

		if err := svc.ProcessDaily(ctx, account.ID, sellDate); err != nil {
			t.Fatalf("ProcessDaily() on empty day failed: %v", err)
		}
	})
}

// TestSyncService_ProcessAllDaily tests the nightly fan-out across accounts.
//
// WHY: Accounts are independent; a broken feed for one investor must not
// swallow the nightly run of everyone else, or healthy accounts silently
// miss a day until a manual catch-up.
func TestSyncService_ProcessAllDaily(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	t.Run("one failing account does not stop the others", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		broken := testutil.NewAccount().WithDocumentID("11111111111").Synced().Build(t, db)
		healthy := testutil.NewAccount().WithDocumentID("22222222222").Synced().Build(t, db)

		provider := &perAccountProvider{
			movements: map[string][]model.Movement{
				healthy.DocumentID: {
					testutil.NewMovement(healthy.ID, "PETR4", model.MovementBuy, 100, 10, date),
				},
			},
			errs: map[string]error{
				broken.DocumentID: errors.New("feed unavailable"),
			},
		}
		svc := testutil.NewTestSyncService(t, db, provider)

		if err := svc.ProcessAllDaily(ctx, date); err == nil {
			t.Error("Expected the broken account's error to be reported")
		}

		positions, err := repository.NewPositionRepository(db).GetByAccount(ctx, healthy.ID)
		if err != nil {
			t.Fatalf("GetByAccount() failed: %v", err)
		}
		if len(positions) != 1 || !positions[0].Quantity.Equal(decimal.NewFromInt(100)) {
			t.Errorf("Expected the healthy account to finish its day, got %+v", positions)
		}
	})
}
