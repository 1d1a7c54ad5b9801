// Package main is the entry point for the ledgercore API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgercore/internal/config"
	"ledgercore/internal/domain/auth"
	"ledgercore/internal/domain/coa"
	"ledgercore/internal/domain/docflow"
	"ledgercore/internal/domain/journal"
	"ledgercore/internal/domain/series"
	v1 "ledgercore/internal/infrastructure/http/v1"
	"ledgercore/internal/infrastructure/storage/postgres"
	"ledgercore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting ledgercore server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}
	log.Info("migrations applied")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	accountRepo := postgres.NewAccountRepo(txManager)
	seriesRepo := postgres.NewSeriesRepo(txManager)
	journalRepo := postgres.NewJournalRepo(txManager)
	docRepo := postgres.NewDocumentRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager, cfg.Audit.CompressThreshold)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Domain services ---
	accountService := coa.NewService(accountRepo, txManager)
	seriesService := series.NewService(seriesRepo)
	allocator := series.NewAllocator(seriesRepo)

	validator := journal.NewValidator(accountService)
	engine := journal.NewEngine(journalRepo, accountRepo, allocator, validator, auditService, txManager)
	reverser := journal.NewReverser(journalRepo, engine)
	workflow := docflow.NewWorkflow(docRepo, reverser, txManager)

	// --- JWT ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		TxManager:    txManager,
		Logger:       log,
		JWTValidator: jwtService,
		Accounts:     accountService,
		Series:       seriesService,
		Allocator:    allocator,
		Engine:       engine,
		Reverser:     reverser,
		Workflow:     workflow,
		DocRepo:      docRepo,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
