package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calculadora-ir-stocks/server-sub001/internal/api"
	"github.com/calculadora-ir-stocks/server-sub001/internal/asset"
	"github.com/calculadora-ir-stocks/server-sub001/internal/config"
	"github.com/calculadora-ir-stocks/server-sub001/internal/crypto"
	"github.com/calculadora-ir-stocks/server-sub001/internal/database"
	"github.com/calculadora-ir-stocks/server-sub001/internal/feed"
	"github.com/calculadora-ir-stocks/server-sub001/internal/repository"
	"github.com/calculadora-ir-stocks/server-sub001/internal/scheduler"
	"github.com/calculadora-ir-stocks/server-sub001/internal/service"
	"github.com/calculadora-ir-stocks/server-sub001/internal/tax"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Document IDs are encrypted at rest
	cipher, err := crypto.NewCipher(cfg.Sync.FernetKey)
	if err != nil {
		log.Fatalf("Failed to initialize document cipher: %v", err)
	}

	// Create repositories
	accountRepo := repository.NewAccountRepository(db, cipher)
	movementRepo := repository.NewMovementRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	taxRepo := repository.NewTaxMonthRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	accountService := service.NewAccountService(accountRepo, positionRepo, movementRepo)
	aggregationService := service.NewAggregationService(saleRepo, taxRepo, tax.NewCalculator())
	feedClient := feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.APIToken)
	syncService := service.NewSyncService(
		db,
		feedClient,
		asset.NewClassifier(),
		accountRepo,
		movementRepo,
		positionRepo,
		saleRepo,
		taxRepo,
		aggregationService,
		cfg.Sync.Workers,
	)

	// Nightly incremental processing
	nightly, err := scheduler.New(cfg.Sync.CronSpec, syncService)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	nightly.Start()
	defer nightly.Stop()

	// Create router
	router := api.NewRouter(systemService, accountService, syncService, aggregationService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
