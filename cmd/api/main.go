package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmacy-platform/stock-service/internal/application"
	"github.com/pharmacy-platform/stock-service/internal/gateway"
	mongoRepo "github.com/pharmacy-platform/stock-service/internal/infrastructure/mongodb"
	"github.com/pharmacy-platform/stock-service/pkg/kafka"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
	"github.com/pharmacy-platform/stock-service/pkg/metrics"
	"github.com/pharmacy-platform/stock-service/pkg/middleware"
	"github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"github.com/pharmacy-platform/stock-service/pkg/resilience"
)

const serviceName = "stock-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting stock-service API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	medicineRepo := mongoRepo.NewMedicineRepository(instrumentedMongo)
	inventoryRepo := mongoRepo.NewInventoryRepository(instrumentedMongo)
	prescriptionRepo := mongoRepo.NewPrescriptionRepository(instrumentedMongo)
	orderRepo := mongoRepo.NewOrderRepository(instrumentedMongo)
	txManager := mongoRepo.NewTransactionManager(instrumentedMongo)

	statusPublisher := gateway.NewStatusPublisher(producer, logger)
	medicineLocks := resilience.NewKeyedLock(resilience.DefaultLockMaxWait)

	reconService := application.NewReconciliationService(
		inventoryRepo, prescriptionRepo, orderRepo, medicineRepo,
		statusPublisher, txManager, medicineLocks, m, logger,
	)
	catalogService := application.NewCatalogService(medicineRepo, logger)
	inventoryService := application.NewInventoryService(
		inventoryRepo, prescriptionRepo, orderRepo, medicineRepo, reconService, logger,
	)
	orderService := application.NewOrderService(orderRepo, reconService, logger)
	prescriptionService := application.NewPrescriptionService(prescriptionRepo, reconService, logger)

	gin.SetMode(getEnv("GIN_MODE", gin.ReleaseMode))
	router := gin.New()

	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return instrumentedMongo.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		medicines := api.Group("/medicines")
		{
			medicines.POST("", createMedicineHandler(catalogService, logger))
			medicines.GET("", listMedicinesHandler(catalogService, logger))
			medicines.GET("/code/:code", getMedicineByCodeHandler(catalogService, logger))
			medicines.GET("/:id", getMedicineHandler(catalogService, logger))
		}

		inventory := api.Group("/inventory")
		{
			inventory.POST("", createInventoryHandler(inventoryService, logger))
			inventory.GET("", listInventoryHandler(inventoryService, logger))
			inventory.GET("/:medicineId", getInventoryHandler(inventoryService, logger))
			inventory.POST("/:medicineId/adjust", adjustStockHandler(inventoryService, logger))
		}

		orders := api.Group("/orders")
		{
			orders.POST("", createOrderHandler(orderService, logger))
			orders.POST("/batch", createOrderBatchHandler(orderService, logger))
			orders.GET("", listOrdersHandler(orderService, logger))
			orders.GET("/delivery-dates/:medicineId", deliveryDatesHandler(orderService, logger))
			orders.GET("/:id", getOrderHandler(orderService, logger))
			orders.PUT("/:id/received", receiveOrderHandler(orderService, logger))
		}

		prescriptions := api.Group("/prescriptions")
		{
			prescriptions.POST("", createPrescriptionHandler(prescriptionService, logger))
			prescriptions.GET("", listPrescriptionsHandler(prescriptionService, logger))
			prescriptions.GET("/:id", getPrescriptionHandler(prescriptionService, logger))
			prescriptions.PUT("/:id/status", updatePrescriptionStatusHandler(prescriptionService, logger))
			prescriptions.DELETE("/:id", cancelPrescriptionHandler(prescriptionService, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", mongoConfig.Database)

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB:    mongoConfig,
		Kafka:      kafkaConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
