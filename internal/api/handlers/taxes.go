package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calculadora-ir-stocks/server-sub001/internal/api/response"
	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/service"
	"github.com/calculadora-ir-stocks/server-sub001/internal/validation"
)

// TaxHandler handles tax-related HTTP requests
type TaxHandler struct {
	aggregationService *service.AggregationService
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(aggregationService *service.AggregationService) *TaxHandler {
	return &TaxHandler{
		aggregationService: aggregationService,
	}
}

// Month returns the full tax record of one month, recomputed on read from
// the persisted sale results.
//
// Endpoint: GET /api/tax/{accountId}/month/{month}
func (h *TaxHandler) Month(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	month := chi.URLParam(r, "month")

	record, err := h.aggregationService.AggregateMonth(r.Context(), accountID, month)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, "invalid month", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTaxes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// Year returns the per-month summaries of one calendar year.
//
// Endpoint: GET /api/tax/{accountId}/year/{year}
func (h *TaxHandler) Year(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	year := chi.URLParam(r, "year")

	if err := validation.ValidateYear(year); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
		return
	}

	summaries, err := h.aggregationService.AggregateYear(r.Context(), accountID, year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTaxes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summaries)
}

// BelowMinimum returns the unpaid months whose owed tax sits under the
// minimum payable DARF, oldest first.
//
// Endpoint: GET /api/tax/{accountId}/darf/carry
func (h *TaxHandler) BelowMinimum(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	months, err := h.aggregationService.BelowMinimumMonths(r.Context(), accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTaxes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, months)
}

// MarkPaid marks a past month's DARF as settled.
//
// Endpoint: PUT /api/tax/{accountId}/month/{month}/paid
func (h *TaxHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	month := chi.URLParam(r, "month")

	if err := h.aggregationService.SetPaidStatus(r.Context(), accountID, month); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidDateRange):
			response.RespondError(w, http.StatusBadRequest, "invalid month", err.Error())
		case errors.Is(err, apperrors.ErrMonthStillOpen):
			response.RespondError(w, http.StatusConflict, apperrors.ErrMonthStillOpen.Error(), err.Error())
		case errors.Is(err, apperrors.ErrMonthTaxNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrMonthTaxNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to update tax status", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
