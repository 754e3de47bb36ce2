package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
	"github.com/calculadora-ir-stocks/server-sub001/internal/tax"
)

// AggregationService rolls persisted sale results into month and year views
// and owns MonthTaxRecord persistence. Aggregation is a pull model: records
// are recomputed from the sale rows, never incrementally patched, which keeps
// any re-run idempotent.
type AggregationService struct {
	saleRepo *repository.SaleRepository
	taxRepo  *repository.TaxMonthRepository
	calc     *tax.Calculator

	now func() time.Time
}

// NewAggregationService creates a new AggregationService with the provided
// repository dependencies.
func NewAggregationService(
	saleRepo *repository.SaleRepository,
	taxRepo *repository.TaxMonthRepository,
	calc *tax.Calculator,
) *AggregationService {
	return &AggregationService{
		saleRepo: saleRepo,
		taxRepo:  taxRepo,
		calc:     calc,
		now:      time.Now,
	}
}

// AggregateMonth recomputes one month's record from its persisted sale
// results, stores it and returns it. A month with no sales yields an empty
// record rather than an error: a month of pure buying owes nothing.
func (s *AggregationService) AggregateMonth(ctx context.Context, accountID, month string) (model.MonthTaxRecord, error) {
	if err := validateMonth(month); err != nil {
		return model.MonthTaxRecord{}, err
	}

	sales, err := s.saleRepo.GetByAccountMonth(ctx, accountID, month)
	if err != nil {
		return model.MonthTaxRecord{}, err
	}

	previous := model.TaxStatus("")
	if existing, err := s.taxRepo.GetByAccountMonth(ctx, accountID, month); err == nil {
		previous = existing.Status
	} else if !errors.Is(err, apperrors.ErrMonthTaxNotFound) {
		return model.MonthTaxRecord{}, err
	}

	record := s.buildMonthRecord(accountID, month, sales, previous)
	if err := s.taxRepo.Upsert(ctx, record); err != nil {
		return model.MonthTaxRecord{}, err
	}

	return record, nil
}

// AggregateYear returns the per-month summaries of one calendar year,
// ascending, including the below-minimum flag the DARF layer consumes.
func (s *AggregationService) AggregateYear(ctx context.Context, accountID, year string) ([]model.MonthSummary, error) {
	records, err := s.taxRepo.ListByAccountYear(ctx, accountID, year)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.MonthSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, summarize(rec))
	}
	return summaries, nil
}

// BelowMinimumMonths returns the unpaid months whose owed tax sits under the
// minimum payable DARF (R$10.00). The filing layer accumulates these until
// the carried total crosses the minimum.
func (s *AggregationService) BelowMinimumMonths(ctx context.Context, accountID string) ([]model.MonthSummary, error) {
	records, err := s.taxRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var carry []model.MonthSummary
	for _, rec := range records {
		if rec.Status == model.TaxStatusUnpaid && tax.BelowMinimum(rec.TotalTax) {
			carry = append(carry, summarize(rec))
		}
	}
	return carry, nil
}

// SetPaidStatus marks a month's DARF as settled. Only months strictly before
// the current one can be paid: the current month is still accruing sales and
// its tax is only due from the following month on.
func (s *AggregationService) SetPaidStatus(ctx context.Context, accountID, month string) error {
	if err := validateMonth(month); err != nil {
		return err
	}

	if month >= s.now().UTC().Format("2006-01") {
		return fmt.Errorf("%w: %s", apperrors.ErrMonthStillOpen, month)
	}

	return s.taxRepo.SetStatus(ctx, accountID, month, model.TaxStatusPaid)
}

// buildMonthRecord computes a month record from its sales. previousStatus
// carries a paid flag across recomputation; pending always wins for the
// still-open current month.
func (s *AggregationService) buildMonthRecord(accountID, month string, sales []model.SaleResult, previousStatus model.TaxStatus) model.MonthTaxRecord {
	lines := s.calc.ComputeMonth(sales)

	record := model.MonthTaxRecord{
		ID:                  uuid.New().String(),
		AccountID:           accountID,
		Month:               month,
		TotalTax:            decimal.Zero,
		TotalSold:           decimal.Zero,
		SwingProfit:         decimal.Zero,
		DayTradeProfit:      decimal.Zero,
		WithholdingSwing:    decimal.Zero,
		WithholdingDayTrade: decimal.Zero,
		Assets:              lines,
		Trades:              sales,
	}

	for _, line := range lines {
		record.TotalTax = record.TotalTax.Add(line.TotalTax())
		record.TotalSold = record.TotalSold.Add(line.TotalSold)
		record.SwingProfit = record.SwingProfit.Add(line.SwingProfit)
		record.DayTradeProfit = record.DayTradeProfit.Add(line.DayTradeProfit)
		record.WithholdingSwing = record.WithholdingSwing.Add(line.WithholdingSwing)
		record.WithholdingDayTrade = record.WithholdingDayTrade.Add(line.WithholdingDayTrade)
	}

	record.Status = s.statusFor(month, previousStatus)
	return record
}

func (s *AggregationService) statusFor(month string, previous model.TaxStatus) model.TaxStatus {
	if month >= s.now().UTC().Format("2006-01") {
		return model.TaxStatusPending
	}
	if previous == model.TaxStatusPaid {
		return model.TaxStatusPaid
	}
	return model.TaxStatusUnpaid
}

func summarize(rec model.MonthTaxRecord) model.MonthSummary {
	return model.MonthSummary{
		Month:          rec.Month,
		TotalTax:       rec.TotalTax,
		TotalSold:      rec.TotalSold,
		SwingProfit:    rec.SwingProfit,
		DayTradeProfit: rec.DayTradeProfit,
		Status:         rec.Status,
		BelowMinimum:   tax.BelowMinimum(rec.TotalTax),
	}
}

func validateMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("%w: month %q", apperrors.ErrInvalidDateRange, month)
	}
	return nil
}
