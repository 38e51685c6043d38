package main

import (
	"context"
	"net/http"

	"tajeer-server/internal/handler"
	mid "tajeer-server/internal/middleware"
	"tajeer-server/internal/report"
	"tajeer-server/internal/repository"
	"tajeer-server/internal/storage"
	"tajeer-server/internal/wizard"
	"tajeer-server/pkg/config"
	"tajeer-server/pkg/database"
	"tajeer-server/pkg/jwtutil"
	"tajeer-server/pkg/logger"
	"tajeer-server/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting tajeer-server",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	repos := repository.New(database.GetDB())

	// Object storage and the attachment flow
	ctx := context.Background()
	store, err := storage.NewS3Store(ctx, &appConfig.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	files := storage.NewService(store, appConfig.Storage.PublicBaseURL,
		appConfig.Upload.MaxDocumentSize, appConfig.Upload.MaxImageSize)
	log.Info("Object storage initialized", zap.String("bucket", appConfig.Storage.Bucket))

	// Background sweep for staged uploads that were never promoted
	sweeper := storage.NewSweeper(store, repos.Attachments, appConfig.Upload.StagingTTL, log)
	go sweeper.Run(ctx, appConfig.Upload.SweepInterval)
	log.Info("Staging sweep started",
		zap.Duration("ttl", appConfig.Upload.StagingTTL),
		zap.Duration("interval", appConfig.Upload.SweepInterval))

	// Wizard sessions live in memory and expire with the staging TTL
	sessions := wizard.NewStore(appConfig.Upload.StagingTTL)

	reports := report.NewReporter(repos.Contracts, repos.Finance, repos.Lookups)

	h := handler.New(repos, files, sessions, reports, appConfig)

	// Initialize Echo instance
	e := echo.New()
	e.Validator = handler.NewValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Token issuance for local and test use
	e.POST("/api/auth/login", h.Login)

	// Vehicle API routes
	vehicleAPI := e.Group("/api/vehicles", mid.AuthMiddleware)
	vehicleAPI.GET("", h.ListVehicles)
	vehicleAPI.GET("/:id", h.GetVehicle)
	vehicleAPI.POST("", h.CreateVehicle)
	vehicleAPI.PUT("/:id", h.UpdateVehicle)
	vehicleAPI.DELETE("/:id", h.DeleteVehicle)

	// Customer API routes
	customerAPI := e.Group("/api/customers", mid.AuthMiddleware)
	customerAPI.GET("", h.ListCustomers)
	customerAPI.GET("/:id", h.GetCustomer)
	customerAPI.GET("/:id/summary", h.CustomerSummary)
	customerAPI.POST("", h.CreateCustomer)
	customerAPI.PUT("/:id", h.UpdateCustomer)
	customerAPI.DELETE("/:id", h.DeleteCustomer)

	// Contract API routes
	contractAPI := e.Group("/api/contracts", mid.AuthMiddleware)
	contractAPI.GET("", h.ListContracts)
	contractAPI.GET("/:id", h.GetContract)
	contractAPI.POST("", h.CreateContract)
	contractAPI.PUT("/:id", h.UpdateContract)
	contractAPI.DELETE("/:id", h.DeleteContract)

	// Branch API routes
	branchAPI := e.Group("/api/branches", mid.AuthMiddleware)
	branchAPI.GET("", h.ListBranches)
	branchAPI.GET("/:id", h.GetBranch)
	branchAPI.POST("", h.CreateBranch)
	branchAPI.PUT("/:id", h.UpdateBranch)
	branchAPI.DELETE("/:id", h.DeleteBranch)

	// Finance API routes
	financeAPI := e.Group("/api/finance", mid.AuthMiddleware)
	financeAPI.GET("/summary", h.FinanceSummary)
	financeAPI.GET("/transactions", h.ListTransactions)
	financeAPI.GET("/transactions/:id", h.GetTransaction)
	financeAPI.POST("/transactions", h.CreateTransaction)
	financeAPI.PUT("/transactions/:id", h.UpdateTransaction)
	financeAPI.DELETE("/transactions/:id", h.DeleteTransaction)

	// Lookup API routes
	lookupAPI := e.Group("/api/lookups/:kind", mid.AuthMiddleware)
	lookupAPI.GET("", h.ListLookups)
	lookupAPI.GET("/:id", h.GetLookup)
	lookupAPI.POST("", h.CreateLookup)
	lookupAPI.PUT("/:id", h.UpdateLookup)
	lookupAPI.DELETE("/:id", h.DeleteLookup)

	// Attachment API routes
	attachmentAPI := e.Group("/api/attachments", mid.AuthMiddleware)
	attachmentAPI.GET("", h.ListAttachments)
	attachmentAPI.GET("/:id", h.GetAttachment)
	attachmentAPI.POST("", h.UploadAttachment)
	attachmentAPI.POST("/:id/attach", h.AttachAttachment)
	attachmentAPI.DELETE("/:id", h.DeleteAttachment)

	// Wizard API routes
	wizardAPI := e.Group("/api/wizard", mid.AuthMiddleware)
	wizardAPI.POST("/:kind/start", h.StartWizard)
	wizardAPI.GET("/:id", h.GetWizard)
	wizardAPI.POST("/:id/advance", h.AdvanceWizard)
	wizardAPI.POST("/:id/retreat", h.RetreatWizard)
	wizardAPI.POST("/:id/cancel", h.CancelWizard)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
