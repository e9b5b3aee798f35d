package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulse-platform/production-service/pkg/errors"
	"github.com/pulse-platform/production-service/pkg/events"
	"github.com/pulse-platform/production-service/pkg/kafka"
	"github.com/pulse-platform/production-service/pkg/logging"
	"github.com/pulse-platform/production-service/pkg/metrics"
	"github.com/pulse-platform/production-service/pkg/middleware"

	"github.com/pulse-platform/production-service/internal/application"
	kafkaAdapter "github.com/pulse-platform/production-service/internal/infrastructure/kafka"
	"github.com/pulse-platform/production-service/internal/infrastructure/recordstore"
)

const serviceName = "production-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting production-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	// Initialize record store client
	storeClient := recordstore.NewClient(config.RecordStore, m, logger)
	logger.Info("Record store client initialized", "baseUrl", config.RecordStore.BaseURL, "docId", config.RecordStore.DocID)

	// Initialize Kafka producer with circuit breaker
	producer := kafka.NewResilientProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Initialize event factory
	eventFactory := events.NewEventFactory(events.SourceProduction)

	// Initialize repositories
	batchRepo := recordstore.NewBatchRepository(storeClient)
	itemRepo := recordstore.NewWorkItemRepository(storeClient)
	historyRepo := recordstore.NewHistoryRepository(storeClient)
	catalogRepo := recordstore.NewCatalogRepository(storeClient)

	// Initialize event publisher
	eventPublisher := kafkaAdapter.NewEventPublisher(producer, eventFactory)

	// Initialize application services
	aggregator := application.NewStatusAggregator(batchRepo, itemRepo, historyRepo, eventPublisher, logger)
	batchService := application.NewBatchApplicationService(batchRepo, itemRepo, historyRepo, catalogRepo, eventPublisher, m, logger)
	progressionService := application.NewProgressionApplicationService(batchRepo, itemRepo, historyRepo, catalogRepo, eventPublisher, aggregator, m, logger)

	// Initialize reminder service if enabled
	var reminderService *application.ReminderService
	if config.Reminder.Enabled {
		reminderConfig := application.ReminderConfig{
			SweepInterval: config.Reminder.SweepInterval,
			ThresholdDays: config.Reminder.ThresholdDays,
		}
		reminderService = application.NewReminderService(batchRepo, catalogRepo, eventPublisher, reminderConfig, m, logger)
		if err := reminderService.Start(ctx); err != nil {
			logger.WithError(err).Error("Failed to start reminder service")
		} else {
			logger.Info("Reminder service started",
				"sweepInterval", config.Reminder.SweepInterval,
				"thresholdDays", config.Reminder.ThresholdDays)
		}
	}

	// Setup Gin router
	gin.SetMode(getEnv("GIN_MODE", gin.ReleaseMode))
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		_, err := catalogRepo.Config(ctx)
		return err
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// Production API routes
	api := router.Group("/api/v1")
	{
		batches := api.Group("/batches")
		{
			batches.POST("", createBatchHandler(batchService, logger))
			batches.GET("/pending-approval", listPendingApprovalHandler(batchService, logger))
			batches.GET("/number/:batchNumber", getBatchByNumberHandler(batchService, logger))
			batches.GET("/:batchId", getBatchHandler(batchService, logger))
			batches.GET("/:batchId/work-items", listWorkItemsHandler(batchService, logger))

			// Batch operations
			batches.POST("/:batchId/approve", approveBatchHandler(batchService, logger))
			batches.POST("/:batchId/reject", rejectBatchHandler(batchService, logger))
			batches.POST("/:batchId/schedule", scheduleBatchHandler(batchService, logger))
		}

		items := api.Group("/work-items")
		{
			items.POST("/:itemId/advance", advanceStageHandler(progressionService, logger))
		}

		// Reminder sweep endpoints
		reminders := api.Group("/reminders")
		{
			reminders.GET("/status", reminderStatusHandler(reminderService))
			reminders.POST("/start", reminderStartHandler(reminderService, logger))
			reminders.POST("/stop", reminderStopHandler(reminderService, logger))
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop reminder service if running
	if reminderService != nil && reminderService.IsRunning() {
		reminderService.Stop()
		logger.Info("Reminder service stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Reminder sweep handlers
func reminderStatusHandler(service *application.ReminderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if service == nil {
			c.JSON(http.StatusOK, gin.H{
				"enabled": false,
				"running": false,
				"message": "Reminder service not configured",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"enabled": true,
			"running": service.IsRunning(),
		})
	}
}

func reminderStartHandler(service *application.ReminderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if service == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reminder service not configured"})
			return
		}
		if service.IsRunning() {
			c.JSON(http.StatusOK, gin.H{"message": "Reminder sweep already running"})
			return
		}
		if err := service.Start(c.Request.Context()); err != nil {
			logger.WithError(err).Error("Failed to start reminder sweep")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		logger.Info("Reminder sweep started via API")
		c.JSON(http.StatusOK, gin.H{"message": "Reminder sweep started"})
	}
}

func reminderStopHandler(service *application.ReminderService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if service == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reminder service not configured"})
			return
		}
		if !service.IsRunning() {
			c.JSON(http.StatusOK, gin.H{"message": "Reminder sweep already stopped"})
			return
		}
		service.Stop()
		logger.Info("Reminder sweep stopped via API")
		c.JSON(http.StatusOK, gin.H{"message": "Reminder sweep stopped"})
	}
}

// Config holds application configuration
type Config struct {
	ServerAddr  string
	RecordStore recordstore.Config
	Kafka       *kafka.Config
	Reminder    *ReminderConfig
}

// ReminderConfig holds configuration for the not-scheduled reminder sweep
type ReminderConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	ThresholdDays int
}

func loadConfig() *Config {
	recordStore := recordstore.DefaultConfig()
	recordStore.BaseURL = getEnv("RECORD_STORE_URL", "http://localhost:8484")
	recordStore.DocID = getEnv("RECORD_STORE_DOC_ID", "")
	recordStore.APIKey = getEnv("RECORD_STORE_API_KEY", "")

	return &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":8003"),
		RecordStore: recordStore,
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		Reminder: &ReminderConfig{
			Enabled:       getEnv("REMINDER_SWEEP_ENABLED", "false") == "true",
			SweepInterval: parseDuration(getEnv("REMINDER_SWEEP_INTERVAL", "1h")),
			ThresholdDays: parseInt(getEnv("REMINDER_THRESHOLD_DAYS", "2")),
		},
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Hour
	}
	return d
}

func parseInt(s string) int {
	var i int
	fmt.Sscanf(s, "%d", &i)
	return i
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers
func createBatchHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ModelCode     string   `json:"modelCode" binding:"required"`
			Quantity      int      `json:"quantity" binding:"required"`
			IncludeMS     bool     `json:"includeMs"`
			IncludeCNC    bool     `json:"includeCnc"`
			IncludeStore  bool     `json:"includeStore"`
			SelectedParts []string `json:"selectedParts"`
			CreatedBy     string   `json:"createdBy"`
		}

		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateBatchCommand{
			ModelCode:     req.ModelCode,
			Quantity:      req.Quantity,
			IncludeMS:     req.IncludeMS,
			IncludeCNC:    req.IncludeCNC,
			IncludeStore:  req.IncludeStore,
			SelectedParts: req.SelectedParts,
			CreatedBy:     req.CreatedBy,
		}

		batch, err := service.CreateBatch(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusCreated, batch)
	}
}

func listPendingApprovalHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		batches, err := service.ListPendingApproval(c.Request.Context())
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, batches)
	}
}

func getBatchHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetBatchQuery{BatchID: c.Param("batchId")}

		batch, err := service.GetBatch(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, batch)
	}
}

func getBatchByNumberHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.GetBatchByNumberQuery{BatchNumber: c.Param("batchNumber")}

		batch, err := service.GetBatchByNumber(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, batch)
	}
}

func listWorkItemsHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		query := application.ListWorkItemsQuery{BatchID: c.Param("batchId")}

		items, err := service.ListWorkItems(c.Request.Context(), query)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func approveBatchHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Actor string `json:"actor"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				responder.RespondBadRequest("invalid request body: " + err.Error())
				return
			}
		}

		cmd := application.ApproveBatchCommand{
			BatchID: c.Param("batchId"),
			Actor:   req.Actor,
		}

		result, err := service.ApproveBatch(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func rejectBatchHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Actor  string `json:"actor"`
			Reason string `json:"reason"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				responder.RespondBadRequest("invalid request body: " + err.Error())
				return
			}
		}

		cmd := application.RejectBatchCommand{
			BatchID: c.Param("batchId"),
			Actor:   req.Actor,
			Reason:  req.Reason,
		}

		result, err := service.RejectBatch(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func scheduleBatchHandler(service *application.BatchApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
			Actor         string    `json:"actor"`
		}
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.ScheduleBatchCommand{
			BatchID:       c.Param("batchId"),
			ScheduledDate: req.ScheduledDate,
			Actor:         req.Actor,
		}

		batch, err := service.ScheduleBatch(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, batch)
	}
}

func advanceStageHandler(service *application.ProgressionApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Actor string `json:"actor"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				responder.RespondBadRequest("invalid request body: " + err.Error())
				return
			}
		}

		cmd := application.AdvanceStageCommand{
			ItemID: c.Param("itemId"),
			Actor:  req.Actor,
		}

		result, err := service.AdvanceStage(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func respondError(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	if appErr, ok := errors.AsAppError(err); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}
