// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"ledgercore/internal/domain/coa"
	"ledgercore/internal/domain/docflow"
	"ledgercore/internal/domain/journal"
	"ledgercore/internal/domain/series"
	"ledgercore/internal/infrastructure/http/v1/handlers"
	"ledgercore/internal/infrastructure/http/v1/middleware"
	"ledgercore/internal/infrastructure/storage/postgres"
	"ledgercore/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager

	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	Accounts  *coa.Service
	Series    *series.Service
	Allocator *series.Allocator
	Engine    *journal.Engine
	Reverser  *journal.Reverser
	Workflow  *docflow.Workflow
	DocRepo   *postgres.DocumentRepo

	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	accountHandler := handlers.NewAccountHandler(cfg.Accounts)
	seriesHandler := handlers.NewSeriesHandler(cfg.Series, cfg.Allocator)
	journalHandler := handlers.NewJournalHandler(cfg.Engine, cfg.Reverser)
	documentHandler := handlers.NewDocumentHandler(cfg.Workflow, cfg.DocRepo)

	ttl := cfg.IdempotencyTTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	idempotencyStore := postgres.NewIdempotencyStore(cfg.TxManager, ttl)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	v1.Use(middleware.Idempotency(idempotencyStore))

	company := v1.Group("/companies/:companyId")
	{
		accounts := company.Group("/accounts")
		{
			accounts.POST("", middleware.RequireRole("manager", "admin"), accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/tree", accountHandler.Tree)
			accounts.GET("/:accountId", accountHandler.Get)
			accounts.PUT("/:accountId", middleware.RequireRole("manager", "admin"), accountHandler.Update)
			accounts.DELETE("/:accountId", middleware.RequireRole("admin"), accountHandler.Deactivate)
		}

		seriesGroup := company.Group("/series")
		{
			seriesGroup.POST("", middleware.RequireRole("admin"), seriesHandler.Create)
			seriesGroup.GET("", seriesHandler.List)
			seriesGroup.GET("/:documentType", seriesHandler.Get)
			seriesGroup.POST("/:documentType/allocate", seriesHandler.Allocate)
			seriesGroup.PUT("/:documentType/next-value", middleware.RequireRole("admin"), seriesHandler.SetNextValue)
			seriesGroup.DELETE("/:documentType", middleware.RequireRole("admin"), seriesHandler.Deactivate)
		}

		journals := company.Group("/journals")
		{
			journals.POST("", journalHandler.Post)
			journals.GET("", journalHandler.List)
			journals.GET("/:journalId", journalHandler.Get)
			journals.POST("/:journalId/reverse", middleware.RequireRole("manager", "admin"), journalHandler.Reverse)
		}

		documents := company.Group("/documents")
		{
			documents.POST("", documentHandler.Create)
			documents.GET("/:documentId", documentHandler.Get)
			documents.GET("/:documentId/transitions", documentHandler.AllowedTransitions)
			documents.POST("/:documentId/transition", documentHandler.Transition)
		}
	}

	return router
}
