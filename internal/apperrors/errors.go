package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPositionNotFound indicates that no position exists for the given account and ticker.
	ErrPositionNotFound = errors.New("position not found")

	// ErrMonthTaxNotFound indicates that no tax record exists for the given account and month.
	ErrMonthTaxNotFound = errors.New("month tax record not found")

	// ErrMovementNotFound indicates that a movement with the given ID does not exist.
	ErrMovementNotFound = errors.New("movement not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrUnknownAssetType indicates that the feed's asset label matched nothing in the
	// classification table. Fatal for the whole batch: without a category the tax rate
	// cannot be determined, and guessing silently would change the owed tax.
	ErrUnknownAssetType = errors.New("unknown asset type")

	// ErrInsufficientPosition indicates a sell larger than the tracked holding, i.e. the
	// ledger and the upstream feed have diverged. Surfaced to an operator, never clamped.
	ErrInsufficientPosition = errors.New("insufficient position for sale")

	// ErrNoMovementsFound indicates a full-history replay was requested but the feed
	// returned zero movements and no backfill lots were supplied.
	ErrNoMovementsFound = errors.New("no movements found")

	// ErrInvalidBackfillLot indicates a manual backfill lot with non-positive quantity
	// or price; rejected before any ledger seeding happens.
	ErrInvalidBackfillLot = errors.New("invalid backfill lot")

	// ErrMonthStillOpen indicates an attempt to mark the current, still-accruing month
	// as paid. Only months strictly in the past can transition to paid.
	ErrMonthStillOpen = errors.New("month is still open")

	// ErrSyncInProgress indicates a replay or incremental run was requested while
	// another run holds the account's processing lock.
	ErrSyncInProgress = errors.New("sync already in progress for account")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")
)

// HTTP-facing retrieval errors used by handlers when wrapping lower-level failures.
var (
	ErrFailedToRetrieveTaxes     = errors.New("failed to retrieve tax records")
	ErrFailedToRetrievePositions = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveMovements = errors.New("failed to retrieve movements")
	ErrFailedToRetrieveAccount   = errors.New("failed to retrieve account")
)
