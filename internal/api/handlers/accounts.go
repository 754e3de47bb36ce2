package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/calculadora-ir-stocks/server-sub001/internal/api/request"
	"github.com/calculadora-ir-stocks/server-sub001/internal/api/response"
	"github.com/calculadora-ir-stocks/server-sub001/internal/apperrors"
	"github.com/calculadora-ir-stocks/server-sub001/internal/model"
	"github.com/calculadora-ir-stocks/server-sub001/internal/service"
	"github.com/calculadora-ir-stocks/server-sub001/internal/validation"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
	syncService    *service.SyncService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, syncService *service.SyncService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		syncService:    syncService,
	}
}

// Create registers a new investor account from a CPF.
//
// Endpoint: POST /api/account
// Response: 201 Created with the new account
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(r.Context(), req.DocumentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusBadRequest, "failed to create account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// Get returns one account with its sync status. The document ID comes back
// masked.
//
// Endpoint: GET /api/account/{accountId}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	account, err := h.accountService.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccount.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// Positions returns the account's current holdings.
//
// Endpoint: GET /api/account/{accountId}/positions
func (h *AccountHandler) Positions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	positions, err := h.accountService.GetPositions(r.Context(), accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePositions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// Movements returns the account's ingested movements within a date range.
//
// Endpoint: GET /api/account/{accountId}/movements?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *AccountHandler) Movements(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	startDate, endDate, err := validation.ValidateDateRange(
		r.URL.Query().Get("start_date"),
		r.URL.Query().Get("end_date"),
	)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	movements, err := h.accountService.GetMovements(r.Context(), accountID, startDate, endDate)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveMovements.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, movements)
}

// BigBang starts a full-history replay for the account. The replay runs in
// the background; progress is observable through the account's sync status.
//
// Endpoint: POST /api/account/{accountId}/sync
// Response: 202 Accepted once the replay has been started
func (h *AccountHandler) BigBang(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	var req request.BigBangRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	lots, err := req.Lots()
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidBackfillLot.Error(), err.Error())
		return
	}

	account, err := h.accountService.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAccount.Error(), err.Error())
		return
	}
	if account.SyncStatus == model.SyncSyncing {
		response.RespondError(w, http.StatusConflict, apperrors.ErrSyncInProgress.Error(), "")
		return
	}

	// The replay outlives the request; it runs against the background context
	// and reports through the account's sync status.
	go func() {
		if err := h.syncService.RunBigBang(context.Background(), accountID, lots); err != nil {
			log.Printf("history replay failed for account %s: %v", accountID, err)
		}
	}()

	response.RespondJSON(w, http.StatusAccepted, map[string]string{
		"status": string(model.SyncSyncing),
	})
}

// SyncDaily runs one incremental day of processing for the account,
// synchronously. Used to catch up a day the nightly job missed.
//
// Endpoint: POST /api/account/{accountId}/sync/daily?date=YYYY-MM-DD
func (h *AccountHandler) SyncDaily(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	if err := h.syncService.ProcessDaily(r.Context(), accountID, date); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrSyncInProgress):
			response.RespondError(w, http.StatusConflict, apperrors.ErrSyncInProgress.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "daily sync failed", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"date": date.Format("2006-01-02")})
}
