package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calculadora-ir-stocks/server-sub001/internal/api/handlers"
	custommiddleware "github.com/calculadora-ir-stocks/server-sub001/internal/api/middleware"
	"github.com/calculadora-ir-stocks/server-sub001/internal/config"
	"github.com/calculadora-ir-stocks/server-sub001/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	accountService *service.AccountService,
	syncService *service.SyncService,
	aggregationService *service.AggregationService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(accountService, syncService)
			r.Post("/", accountHandler.Create)

			r.Route("/{accountId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAccountIDMiddleware)
				r.Get("/", accountHandler.Get)
				r.Get("/positions", accountHandler.Positions)
				r.Get("/movements", accountHandler.Movements)
				r.Post("/sync", accountHandler.BigBang)
				r.Post("/sync/daily", accountHandler.SyncDaily)
			})
		})

		r.Route("/tax", func(r chi.Router) {
			taxHandler := handlers.NewTaxHandler(aggregationService)

			r.Route("/{accountId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAccountIDMiddleware)
				r.Get("/month/{month}", taxHandler.Month)
				r.Put("/month/{month}/paid", taxHandler.MarkPaid)
				r.Get("/year/{year}", taxHandler.Year)
				r.Get("/darf/carry", taxHandler.BelowMinimum)
			})
		})
	})

	return r
}
