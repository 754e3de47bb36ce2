// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/calculadora-ir-stocks/server-sub001/internal/api/response"
	"github.com/calculadora-ir-stocks/server-sub001/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ValidateAccountIDMiddleware validates that the accountId URL parameter is present and is a valid UUID.
// Returns 400 Bad Request if the account ID is missing or invalid.
// This middleware should be applied to routes that require a valid account ID in the URL path.
//
// Example usage in router:
//
//	r.Route("/{accountId}", func(r chi.Router) {
//	    r.Use(middleware.ValidateAccountIDMiddleware)
//	    r.Get("/", handler.GetAccount)
//	})
func ValidateAccountIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := chi.URLParam(r, "accountId")

		if accountID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid account ID is required", "")
			return
		}

		if err := validation.ValidateUUID(accountID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid account ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
